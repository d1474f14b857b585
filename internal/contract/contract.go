// Package contract declares the per-operation contract surface: what fields
// an operation reads, sets, and deletes, what model capability (if any) it
// requires, and how it behaves on timeout/error/count-change. Declarations
// are queried with a "prefix schema" so an operation can compute its schema
// from what is known to be present ahead of it in the pipe.
package contract

import (
	"time"

	"github.com/alexisbeaulieu97/flowctl/internal/model"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
)

// ErrorHandlerMode selects how an executor reacts to an operation error.
type ErrorHandlerMode int

const (
	// ErrorHandlerNone re-raises the error; the executor does not suppress it.
	ErrorHandlerNone ErrorHandlerMode = iota
	// ErrorHandlerAlwaysIgnore suppresses every error, yielding an empty
	// output list.
	ErrorHandlerAlwaysIgnore
	// ErrorHandlerPredicate suppresses an error only when Predicate(err)
	// returns true.
	ErrorHandlerPredicate
)

// ErrorHandler describes an operation's declared error-handling policy.
type ErrorHandler struct {
	Mode      ErrorHandlerMode
	Predicate func(error) bool
}

// Handles reports whether this handler suppresses err (causing the executor
// to return an empty output list instead of propagating it).
func (h ErrorHandler) Handles(err error) bool {
	switch h.Mode {
	case ErrorHandlerAlwaysIgnore:
		return true
	case ErrorHandlerPredicate:
		return h.Predicate != nil && h.Predicate(err)
	default:
		return false
	}
}

// Contract is the per-operation declaration surface queried by the schema
// propagator and enforced by the executor. Every query is parameterized by
// the prefix schema known at the operation's stage boundary and must be
// pure and idempotent.
type Contract interface {
	DeclaredReads(prefix schema.FieldSet) schema.FieldSet
	DeclaredSets(prefix schema.FieldSet) schema.FieldSet
	DeclaredDeletes(prefix schema.FieldSet) []string
	RequiredCapability() *model.Capability
	ErrorHandler() ErrorHandler
	Timeout() *time.Duration
	AllowsCountChange() bool
}
