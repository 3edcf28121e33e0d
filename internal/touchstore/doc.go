// Package touchstore is the persistence boundary: it is the only place in
// the repository that issues SQL, and its exported methods return plain
// Go values (l2background.Model state, l7track.TouchEvent rows) rather than
// leaking *sql.Rows or database-specific types to callers.
package touchstore
