// Package filesystem provides concrete implementations of the types.FS
// interface: one backed by the operating system and one backed by an
// afero filesystem for use in tests and sandboxed runs.
package filesystem
