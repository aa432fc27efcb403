// Package param defines the closed set of parameter types a fractal script
// can declare and the conversions between their values and literal trees.
//
// Every Type converts a literal to a value (ToValue), a value back to the
// tree inlined into a program (ToLiteral), and checks whether an arbitrary
// Go value is acceptable (IsInstance). Palette and Scale values are never
// inlined; Source is never used inside a program at all.
package param
