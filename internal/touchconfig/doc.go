// Package touchconfig is the configuration boundary: it is the only place
// in the repository that parses an on-disk file and hands out the typed,
// validated values every other layer trusts without re-checking.
package touchconfig
