// Package library persists extracted vibes in a local SQLite database.
//
// Each import is assigned a batch ID; bundle members share it and keep their
// bundle position so a bundle can be rebuilt in its original order. Imports
// are all-or-nothing. Writers take a file lock beside the database so two
// processes never interleave imports.
package library
