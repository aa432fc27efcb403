// Package codec reads and writes the persisted forms of fractals.
//
// A document is stored as JSON:
//
//	{"code": "extern a int = 1; ...", "data": {"a": 2, "Scale": [2, 0, 0, 2, 0, 0]}}
//
// Values keep their JSON shape: numbers, booleans and strings as is,
// complex numbers as [re, im], scales as six numbers and palettes as
// {"width", "height", "colors"}. Older files that kept the source as an
// array of lines and the overrides in per-type maps decode into the same
// data.
//
// Providers and favorites wrap documents in JSON as well. Sessions use
// canonical CBOR and keep the exact Go type of every override.
package codec
