// Package watch provides live reload for blendkey. It monitors a rig file
// and its clip files for changes, debounces rapid events, and re-runs the
// load-edit-report cycle automatically, reporting how the set of selected
// blend shapes changed between runs.
package watch
