// Package provider combines several fractals into one editable parameter
// set.
//
// Fractals live in a Collection under IDs that are never reused. A key is
// shared by default: the Table lists it once and SetValue applies the value
// to every fractal whose type for that key accepts it. Keys marked with
// AddExclusive are listed and set per fractal.
//
// The Table orders keys by the merged declaration order of all fractals,
// starting with the head. Parameters that are only referenced inside expr
// values stay next to the declared parameter they were found in.
package provider
