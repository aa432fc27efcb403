// Package fractview manages the parameters of fractal programs: it compiles
// a script against user overrides, keeps an undo history per fractal and
// merges the parameters of several fractals into one editable table.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	fractview/           Root package with file and session helpers
//	├── errors/          Structured error types (phase + kind)
//	├── script/          Parser, constant folding and bytecode compiler
//	├── param/           Parameter types, palettes, scales and text forms
//	├── fractal/         Overrides, identifier resolution, compile and history
//	├── provider/        Collection of fractals and the merged parameter table
//	├── codec/           Persisted JSON documents and CBOR sessions
//	├── favorites/       SQLite store of saved fractals
//	├── config/          YAML configuration and logger construction
//	└── cmd/fractview/   Command line interface
//
// # Quick Start
//
// Compile a script and change a parameter:
//
//	f, err := fractal.FromSource("extern a int = 0; var z = a + 1;")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := f.UpdateValue("a", 5); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(f.Code())
//
// Several fractals share their parameters through a provider:
//
//	p, err := fractview.LoadProvider(nil, "mandelbrot.fv", "julia.fv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, e := range p.Table().Entries() {
//	    fmt.Println(e.Key, e.Owner, e.Parameter.Value)
//	}
//
// # Parameters
//
// Every fractal has a Source and a Scale parameter. Extern declarations add
// typed parameters; identifiers that are neither declared nor builtin become
// implicit expr parameters when the fractal allows it. Values have one of
// nine types:
//
//   - Scalars: int, real, cplx, bool, color
//   - Text: expr, source
//   - Structured: palette (a grid of colors), scale (an affine transform)
//
// # Failure Model
//
// An edit that fails to compile leaves the fractal exactly as it was and
// the error is returned. A value of the wrong type is ignored. A provider
// applies an edit to all its fractals or to none of them.
//
// # Thread Safety
//
// Fractal, Provider and Collection are not safe for concurrent use; callers
// serialize access, usually from a single UI goroutine. The favorites Store
// is safe for concurrent use.
package fractview
