// Package types contains the core types and interfaces shared across the
// huddle library.
//
// The root huddle package re-exports the public subset of this package via
// type aliases. Internal packages import types directly, which keeps them
// free of import cycles with the root package.
package types
