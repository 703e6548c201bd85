// Package pl0err defines the single tagged error kind used across the
// compiler and interpreter, per spec.md §9's "Exceptions vs. explicit
// errors" design note: the source this module is grounded on mixes
// exceptions (symbol-table errors) with abort-on-stderr (parser
// errors). pl0err unifies both into one propagated error type; the
// only place that prints a diagnostic and exits is cmd/pl0c.
package pl0err

import (
	"fmt"

	"github.com/go-pl0/pl0c/token"
)

// Kind is the error taxonomy tier from spec.md §7.
type Kind int

const (
	Lexical Kind = iota
	Syntactic
	Semantic
	Runtime
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntactic:
		return "syntax error"
	case Semantic:
		return "semantic error"
	case Runtime:
		return "runtime error"
	default:
		return "error"
	}
}

// Error is the one error type every pl0c component returns. Exactly
// one of Pos (compile-time, row/column from the offending token) or PC
// (runtime, the instruction pointer at the time of failure) is
// meaningful, selected by Kind.
type Error struct {
	Kind Kind
	Msg  string
	Pos  token.Pos // meaningful for Lexical/Syntactic/Semantic
	PC   int       // meaningful for Runtime
	hasPC bool
}

func (e *Error) Error() string {
	if e.hasPC {
		return fmt.Sprintf("%s at pc=%d: %s", e.Kind, e.PC, e.Msg)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Msg)
}

// AtPos builds a compile-time error (lexical, syntactic, or semantic)
// carrying the source position of the offending token.
func AtPos(kind Kind, pos token.Pos, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// AtPC builds a runtime error carrying the instruction pointer active
// when the failure was detected.
func AtPC(pc int, format string, args ...interface{}) *Error {
	return &Error{Kind: Runtime, Msg: fmt.Sprintf(format, args...), PC: pc, hasPC: true}
}
