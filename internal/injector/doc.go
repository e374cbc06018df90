// Package injector wires manifest loading to the host build lifecycle and
// dispatches documents through route matching and rewriting.
//
// The resolved state is an immutable Snapshot swapped atomically. A nil
// snapshot means the orchestrator is uninitialized or reinitializing, and every
// transform passes its document through unchanged. Initialization failures
// never escape as panics: they reset the state and are returned to the caller.
package injector
