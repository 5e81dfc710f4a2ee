// Package farm implements the linkfarm synchronization core: sanitizing
// catalog names into path segments, snapshotting the on-disk link state,
// planning create/replace/no-op operations against it, executing plans
// with an optional dry-run, and scanning for dangling links.
//
// The planner and scanner never mutate the filesystem; the executor is
// the single mutation point. Re-running a build against an unchanged
// catalog converges to a plan of no-ops.
package farm
