// Package filter derives the two read-only views an editor shows over a
// blend-shape registry: every parameter matching a search keyword, and the
// selected parameters matching a second, independent keyword.
//
// The package is built around the [Filter] interface and [Chain] type, which
// allow composable predicates. [Apply] recomputes both views in full on every
// call; nothing is cached or diffed.
package filter
