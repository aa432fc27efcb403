package main

import (
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/fractview"
	"github.com/wippyai/fractview/config"
	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/favorites"
	"github.com/wippyai/fractview/fractal"
	"github.com/wippyai/fractview/provider"
)

// app carries state shared by all commands of one invocation.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	cfgPath  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "fractview",
		Short: "Inspect and edit the parameters of fractal programs",
		Long: `fractview compiles fractal scripts, merges the parameters of several
fractals into one table and lets you edit them, keep favorites and save
editing sessions.

Files ending in .json hold a persisted document; any other file is read
as script text.`,
		Version:           fractview.Version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.sync() },
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", config.DefaultPath, "configuration file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		newTableCmd(a),
		newCompileCmd(a),
		newFavoritesCmd(a),
		newWatchCmd(a),
		newEditCmd(a),
		newSessionCmd(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadWithFallback(a.cfgPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	l, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, l

	fractal.SetLogger(l.Named("fractal"))
	provider.SetLogger(l.Named("provider"))
	favorites.SetLogger(l.Named("favorites"))

	l.Debug("configured", zap.String("command", cmd.CommandPath()), zap.String("config", a.cfgPath))
	return nil
}

func (a *app) sync() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// exclusive merges the configured exclusive keys with extra.
func (a *app) exclusive(extra []string) []string {
	keys := slices.Clone(a.cfg.Exclusive)
	for _, k := range extra {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// loadProvider reads the files and applies the assignments in order.
func (a *app) loadProvider(paths, exclusive, sets []string) (*provider.Provider, error) {
	p, err := fractview.LoadProvider(a.exclusive(exclusive), paths...)
	if err != nil {
		return nil, err
	}
	if err := applyAssignments(p, sets); err != nil {
		return nil, err
	}
	return p, nil
}

// applyAssignments applies "key=value" or "key@id=value" to p. Without an
// id the head is the owner.
func applyAssignments(p *provider.Provider, sets []string) error {
	for _, s := range sets {
		key, value, err := fractview.ParseAssignment(s)
		if err != nil {
			return err
		}

		owner, _ := p.Head()
		if k, id, ok := strings.Cut(key, "@"); ok {
			n, err := strconv.ParseUint(id, 10, 32)
			if err != nil {
				return fverrors.InvalidInput(fverrors.PhaseProvider, "bad fractal id in "+s)
			}
			key, owner = k, provider.ID(n)
		}

		if _, err := fractview.SetText(p, key, owner, value); err != nil {
			return err
		}
	}
	return nil
}
