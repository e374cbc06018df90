// Package manifest loads the page manifest (pages.json) and resolves which
// fragments each page receives.
//
// The manifest is JSON with comments and trailing commas tolerated:
//
//	{
//	  // main package
//	  "pages": [{"path": "pages/index/index"}],
//	  "subPackages": [
//	    {"root": "pkgA", "pages": [{"path": "detail/index"}]},
//	  ],
//	}
//
// Entries without a path (pages) or without a root and pages list
// (sub-packages) are skipped. Routes are normalized to a leading slash with no
// empty segments and no trailing slash; sub-package routes are prefixed with
// the sub-package root.
package manifest
