// Package script parses and compiles fractal scripts.
//
// A script is a sequence of statements separated by semicolons. Extern
// statements declare typed, defaulted parameters; everything else is the
// program body:
//
//	extern maxdepth "Maximum depth" int = 120;
//	extern bailout real = 64;
//	var z = 0:0;
//	z = z^2 + c;
//
// Parse returns the body together with the extern declarations. Compile
// turns the body into Bytecode, asking a Resolver for every identifier that
// is not a local variable:
//
//	unit, err := script.Parse(src)
//	code, err := script.Compile(unit.Program, script.Instructions, resolver)
//
// Supported expression forms: int, real, bool and string literals, colors
// (#rgb, #argb, #rrggbb, #aarrggbb), vectors, the operators + - * / % ^ and
// the complex constructor a:b, and function application f(x, y) including
// application of partially applied builtins.
package script
