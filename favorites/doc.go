// Package favorites stores saved fractals in SQLite.
//
// Each favorite has a unique title, a generated ID, an optional icon and
// description, and the fractal in its JSON document form. Collections can
// be exchanged with the JSON favorites format of the codec package through
// Import and Export.
package favorites
