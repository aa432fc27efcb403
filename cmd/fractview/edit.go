package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/wippyai/fractview"
	"github.com/wippyai/fractview/param"
	"github.com/wippyai/fractview/provider"
)

type editOptions struct {
	session   string
	exclusive []string
	sets      []string
}

func newEditCmd(a *app) *cobra.Command {
	var opts editOptions

	cmd := &cobra.Command{
		Use:   "edit [FILE...]",
		Short: "Edit parameters interactively",
		Long: `Open an interactive editor for the parameter table of the given
fractals. Without files the saved session is resumed.

Keys:
  up/down   select a parameter
  enter     edit the value (empty text resets it)
  r         reset to the default
  x         toggle exclusive editing of the key
  h         make the selected fractal the head
  u/ctrl+r  undo/redo on the selected fractal
  s         save the session
  q         quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.session
			if path == "" {
				path = a.cfg.Session.Path
			}

			var p *provider.Provider
			var err error
			if len(args) == 0 {
				p, err = fractview.LoadSession(path)
			} else {
				p, err = a.loadProvider(args, opts.exclusive, opts.sets)
			}
			if err != nil {
				return err
			}

			m := newEditModel(p, path)
			defer m.close()

			prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = prog.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&opts.session, "session", "", "session file to resume and save (default from config)")
	cmd.Flags().StringSliceVarP(&opts.exclusive, "exclusive", "x", nil, "keys edited per fractal")
	cmd.Flags().StringArrayVarP(&opts.sets, "set", "s", nil, "assign key=value or key@id=value at start")
	return cmd
}

type editState int

const (
	stateBrowse editState = iota
	stateEditValue
)

type editModel struct {
	err      error
	provider *provider.Provider
	cancel   func()
	input    textinput.Model
	session  string
	status   string
	entries  []provider.Entry
	rows     []tableRow
	selected int
	state    editState
	dirty    bool
}

func newEditModel(p *provider.Provider, session string) *editModel {
	m := &editModel{
		provider: p,
		session:  session,
		state:    stateBrowse,
	}
	m.cancel = p.Subscribe(func(*provider.Provider) {
		m.dirty = true
	})
	m.refresh()
	return m
}

func (m *editModel) close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// refresh reloads the table and keeps the selection in range.
func (m *editModel) refresh() {
	m.entries = m.provider.Table().Entries()
	m.rows = tableRows(m.provider)
	m.selected = max(0, min(m.selected, len(m.entries)-1))
}

func (m *editModel) current() (provider.Entry, bool) {
	if m.selected < 0 || m.selected >= len(m.entries) {
		return provider.Entry{}, false
	}
	return m.entries[m.selected], true
}

func (m *editModel) Init() tea.Cmd {
	return nil
}

func (m *editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.state == stateEditValue {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if key.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.state == stateEditValue {
		return m.updateInput(key)
	}

	m.err = nil
	switch key.String() {
	case "q":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.entries)-1 {
			m.selected++
		}

	case "enter":
		e, ok := m.current()
		if !ok {
			break
		}
		ti := textinput.New()
		ti.Prompt = e.Key + ": "
		ti.Placeholder = e.Parameter.Type.String()
		ti.Width = 60
		ti.SetValue(param.Text(e.Parameter.Type, e.Parameter.Value))
		m.input = ti
		m.state = stateEditValue
		return m, m.input.Focus()

	case "r":
		if e, ok := m.current(); ok {
			m.apply(m.provider.SetValue(e.Key, e.Owner, nil))
		}

	case "x":
		if e, ok := m.current(); ok {
			if m.provider.IsShared(e.Key) {
				m.provider.AddExclusive(e.Key)
				m.status = e.Key + " is now exclusive"
			} else {
				m.provider.RemoveExclusive(e.Key)
				m.status = e.Key + " is now shared"
			}
		}

	case "h":
		if e, ok := m.current(); ok {
			m.err = m.provider.SetHead(e.Owner)
		}

	case "u":
		if e, ok := m.current(); ok {
			m.apply(m.provider.HistoryBack(e.Owner))
		}

	case "ctrl+r":
		if e, ok := m.current(); ok {
			m.apply(m.provider.HistoryForward(e.Owner))
		}

	case "s":
		if err := fractview.SaveSession(m.session, m.provider); err != nil {
			m.err = err
			break
		}
		m.dirty = false
		m.status = "saved " + m.session
	}

	m.refresh()
	return m, nil
}

func (m *editModel) updateInput(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "enter":
		if e, ok := m.current(); ok {
			m.apply(fractview.SetText(m.provider, e.Key, e.Owner, m.input.Value()))
		}
		m.input.Blur()
		m.state = stateBrowse
		m.refresh()
		return m, nil

	case "esc":
		m.input.Blur()
		m.state = stateBrowse
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

// apply records the outcome of an edit in the status line.
func (m *editModel) apply(changed bool, err error) {
	switch {
	case err != nil:
		m.err = err
	case !changed:
		m.status = "unchanged"
	default:
		m.status = ""
	}
}

func (m *editModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("fractview"))
	b.WriteString(" ")
	b.WriteString(m.session)
	if m.dirty {
		b.WriteString(" (modified)")
	}
	b.WriteString("\n\n")

	for i, r := range m.rows {
		line := fmt.Sprintf("%-12s %3s  %-7s %s", r.key, r.owner, r.typ, r.value)
		switch {
		case i == m.selected:
			b.WriteString(selectedStyle.Render("> " + line))
		case r.isDefault:
			b.WriteString("  " + helpStyle.Render(line))
		default:
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.state == stateEditValue {
		b.WriteString(m.input.View())
		b.WriteString(" ")
		b.WriteString(typeStyle.Render(m.input.Placeholder))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter apply • esc back"))
		return b.String()
	}

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	case m.status != "":
		b.WriteString(resultStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ select • enter edit • r reset • x exclusive • h head • u/ctrl+r undo/redo • s save • q quit"))
	return b.String()
}
