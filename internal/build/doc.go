// Package build runs the injector over a source tree and writes the
// transformed documents to an output directory. The CLI build and watch
// commands both route through BuildService.
package build
