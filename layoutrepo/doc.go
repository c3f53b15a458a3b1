// Package layoutrepo persists the layout registry.
//
// Layout indices are assigned by creation order, so a process that
// wants stable indices across restarts must replay registrations in the
// original order. The repository stores one record per layout in a
// bolt bucket keyed by the layout index, which is monotonic in creation
// order, and restores them with a single ordered scan.
package layoutrepo
