// Package fractal holds a single fractal document: its immutable Data
// (source text plus overrides), the compiled bytecode and the parameters
// the program references.
//
// Every change compiles before it is committed. A change that fails to
// compile leaves the Fractal exactly as it was and returns the compiler's
// error:
//
//	f, err := fractal.FromData(data)
//	changed, err := f.UpdateValue("maxdepth", 250)
//
// Committed changes are recorded in a linear history. A new change made
// after HistoryBack discards the entries ahead of the cursor.
//
// Besides the declared parameters every Fractal exposes Source (the script
// text) and Scale (the view transform). With implicit parameters enabled,
// identifiers that appear only inside expr values become expr parameters
// of their own, labelled after the declared parameter they were found in.
package fractal
