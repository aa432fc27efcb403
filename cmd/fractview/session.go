package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/fractview"
)

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Save and inspect editing sessions",
		Long: `A session is a binary snapshot of a set of fractals with their overrides
and exclusive keys. "fractview edit" resumes from it.`,
	}

	cmd.AddCommand(newSessionSaveCmd(a), newSessionShowCmd(a))
	return cmd
}

func newSessionSaveCmd(a *app) *cobra.Command {
	var (
		output    string
		exclusive []string
		sets      []string
	)

	cmd := &cobra.Command{
		Use:   "save FILE...",
		Short: "Write a session built from fractal files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProvider(args, exclusive, sets)
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = a.cfg.Session.Path
			}
			if err := fractview.SaveSession(path, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d fractals to %s\n", p.Len(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "session file (default from config)")
	cmd.Flags().StringSliceVarP(&exclusive, "exclusive", "x", nil, "keys edited per fractal")
	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "assign key=value or key@id=value before saving")
	return cmd
}

func newSessionShowCmd(a *app) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "show [FILE]",
		Short: "Print the parameter table of a session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Session.Path
			if len(args) == 1 {
				path = args[0]
			}
			p, err := fractview.LoadSession(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return writeTable(out, p, !plain && isTerminal(out))
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "tab separated output even on a terminal")
	return cmd
}
