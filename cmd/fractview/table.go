package main

import (
	"github.com/spf13/cobra"
)

type tableOptions struct {
	exclusive []string
	sets      []string
	plain     bool
}

func newTableCmd(a *app) *cobra.Command {
	var opts tableOptions

	cmd := &cobra.Command{
		Use:   "table FILE...",
		Short: "Print the merged parameter table of one or more fractals",
		Long: `Print the parameters of all given fractals as one table.

Shared keys appear once with owner "*". Exclusive keys appear once per
fractal that uses them, with that fractal's id as owner. The first file
is the head; its parameters come first.

Examples:
  fractview table mandelbrot.fv julia.fv
  fractview table --exclusive Source --set maxdepth=500 a.fv b.fv
  fractview table --set "c@2=0.3:0.5" a.fv b.fv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProvider(args, opts.exclusive, opts.sets)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return writeTable(out, p, !opts.plain && isTerminal(out))
		},
	}

	cmd.Flags().StringSliceVarP(&opts.exclusive, "exclusive", "x", nil, "keys edited per fractal")
	cmd.Flags().StringArrayVarP(&opts.sets, "set", "s", nil, "assign key=value or key@id=value before printing")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "tab separated output even on a terminal")
	return cmd
}
