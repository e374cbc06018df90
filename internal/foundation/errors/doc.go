// Package errors provides the classified error primitives used across pageinject.
//
// Every failure the injector can produce is one of a small set of kinds:
//
//   - CategoryManifest: the page manifest is unreadable or structurally invalid.
//     Initialization aborts and the injector degrades to pass-through.
//   - CategoryDocument: a single document could not be split into regions.
//     That document passes through unmodified with a diagnostic.
//   - CategoryRewrite: part synthesis or assembly failed for one document.
//     That document passes through unmodified with a diagnostic.
//
// A document without a manifest entry is not an error; callers treat it as a
// normal pass-through.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryManifest, "failed to parse manifest").
//		WithContext("path", manifestPath).
//		Build()
package errors
