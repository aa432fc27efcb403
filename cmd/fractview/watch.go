package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/fractview"
	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/provider"
)

type watchOptions struct {
	exclusive []string
	sets      []string
	debounce  time.Duration
}

func newWatchCmd(a *app) *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch FILE...",
		Short: "Recompile fractals whenever their files change",
		Long: `Print the parameter table, then watch the files and print it again after
every change. A change that fails to compile is reported and the last
good state is kept. Overrides survive edits of script files.

Examples:
  fractview watch mandelbrot.fv
  fractview watch --debounce 500ms a.fv b.fv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProvider(args, opts.exclusive, opts.sets)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			styled := isTerminal(out)
			if err := writeTable(out, p, styled); err != nil {
				return err
			}

			debounce := opts.debounce
			if debounce == 0 {
				debounce = a.cfg.Watch.Debounce
			}

			return watchFiles(cmd.Context(), a.log, args, debounce, onChange(a.log, out, p, args, styled))
		},
	}

	cmd.Flags().StringSliceVarP(&opts.exclusive, "exclusive", "x", nil, "keys edited per fractal")
	cmd.Flags().StringArrayVarP(&opts.sets, "set", "s", nil, "assign key=value or key@id=value at start")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 0, "quiet period before reloading (default from config)")
	return cmd
}

// onChange returns the watch callback for paths: it reloads the changed
// file and prints the table again. Failures are logged and the watch goes on.
func onChange(log *zap.Logger, out io.Writer, p *provider.Provider, paths []string, styled bool) func(i int) {
	ids := p.IDs()
	return func(i int) {
		if err := reload(p, ids[i], paths[i]); err != nil {
			log.Warn("reload failed", zap.String("path", paths[i]), zap.Error(err))
			msg := fmt.Sprintf("%s: %v", paths[i], err)
			if styled {
				msg = errorStyle.Render(msg)
			}
			fmt.Fprintln(out, msg)
			return
		}
		if err := writeTable(out, p, styled); err != nil {
			log.Warn("write table failed", zap.String("path", paths[i]), zap.Error(err))
		}
	}
}

func reload(p *provider.Provider, id provider.ID, path string) error {
	f, ok := p.Fractal(id)
	if !ok {
		return fverrors.NotFound(fverrors.PhaseProvider, "fractal", path)
	}
	data, err := fractview.ReloadData(path, f.Data())
	if err != nil {
		return err
	}
	return p.SetData(id, data)
}

// watchFiles calls onChange with the index of every file in paths that was
// written or recreated. Events are collected until no new event arrives for
// debounce, then each changed file is reported once, in paths order. It
// returns when ctx is done.
func watchFiles(ctx context.Context, log *zap.Logger, paths []string, debounce time.Duration, onChange func(i int)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fverrors.Wrap(fverrors.PhaseConfig, fverrors.KindInvalidInput, err, "create watcher")
	}
	defer watcher.Close()

	index := make(map[string]int, len(paths))
	var dirs []string
	for i, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		index[abs] = i
		// Watch the directory; editors often save by replacing the file.
		if dir := filepath.Dir(abs); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fverrors.Wrap(fverrors.PhaseConfig, fverrors.KindInvalidInput, err, "watch "+dir)
		}
		log.Debug("watching directory", zap.String("dir", dir))
	}

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = make(map[int]bool)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			i, ok := index[filepath.Clean(event.Name)]
			if !ok || !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			log.Debug("file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))

			pending[i] = true
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			for i := range paths {
				if pending[i] {
					onChange(i)
				}
			}
			clear(pending)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("file watcher error", zap.Error(err))

		case <-ctx.Done():
			return nil
		}
	}
}
