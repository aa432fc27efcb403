package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/fractview/codec"
	"github.com/wippyai/fractview/fractal"
	"github.com/wippyai/fractview/param"
)

// wordsPerLine is the number of bytecode words printed per line.
const wordsPerLine = 8

type compileOptions struct {
	sets     []string
	document bool
}

func newCompileCmd(a *app) *cobra.Command {
	var opts compileOptions

	cmd := &cobra.Command{
		Use:   "compile FILE",
		Short: "Compile a fractal and print its bytecode, palettes and scale",
		Long: `Compile a fractal with its overrides and print the result.

With --document the persisted JSON form is printed instead, which turns a
script file into a document that keeps its overrides.

Examples:
  fractview compile mandelbrot.fv
  fractview compile --set maxdepth=200 --document mandelbrot.fv > m.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProvider(args, nil, opts.sets)
			if err != nil {
				return err
			}
			head, _ := p.Head()
			f, _ := p.Fractal(head)

			if opts.document {
				return writeDocument(cmd.OutOrStdout(), f.Data())
			}
			return writeCompiled(cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.sets, "set", "s", nil, "assign key=value before compiling")
	cmd.Flags().BoolVar(&opts.document, "document", false, "print the persisted JSON document")
	return cmd
}

func writeCompiled(w io.Writer, f *fractal.Fractal) error {
	var b strings.Builder

	code := f.Code()
	fmt.Fprintf(&b, "code: %d words\n", len(code))
	for i := 0; i < len(code); i += wordsPerLine {
		end := min(i+wordsPerLine, len(code))
		fmt.Fprintf(&b, "  %4d:", i)
		for _, word := range code[i:end] {
			fmt.Fprintf(&b, " %d", word)
		}
		b.WriteByte('\n')
	}

	palettes := f.Palettes()
	fmt.Fprintf(&b, "palettes: %d\n", len(palettes))
	for i, p := range palettes {
		fmt.Fprintf(&b, "  %d: %s\n", i, param.Text(param.TypePalette, p))
	}
	fmt.Fprintf(&b, "scale: %s\n", param.Text(param.TypeScale, f.Scale()))

	_, err := io.WriteString(w, b.String())
	return err
}

func writeDocument(w io.Writer, d *fractal.Data) error {
	doc, err := codec.MarshalData(d)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, doc, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(w)
	return err
}
