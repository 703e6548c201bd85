// Package parser implements the LL(1) predictive parser and its
// interleaved semantic actions described in spec.md §4.D. Parsing is
// driven by an explicit stack of pending grammar symbols rather than
// by recursive descent: Parse pops the front symbol each iteration and
// either consumes a terminal, expands a nonterminal's production in
// place, or runs a semantic action (a symbol whose name starts with
// "_"). This mirrors the symbol-stack technique
// original_source/Parser.h uses for pure grammar recognition, extended
// here to also drive code generation, following the "one struct owns
// scanner, symbol table and code generator as its fields" shape
// org.Generator and orp.Parser share in the teacher package.
package parser

import (
	"fmt"

	"github.com/go-pl0/pl0c/firstset"
	"github.com/go-pl0/pl0c/pcode"
	"github.com/go-pl0/pl0c/pl0err"
	"github.com/go-pl0/pl0c/symtab"
	"github.com/go-pl0/pl0c/token"
)

// Parser owns every piece of mutable state a compile run needs: the
// token source, one token of lookahead, the symbol table, the P-code
// buffer under construction, the explicit symbol stack, and the
// scratch queues spec.md §4.D's semantic-action contract names.
//
// Per spec.md §9's "Globals" design note, none of this lives at
// package scope; every action reaches it through the receiver.
type Parser struct {
	stream *token.Stream
	cur    token.Token
	sym    *symtab.Table
	code   *pcode.Buffer
	stack  []gsym

	pendingNames  []string
	pendingValues []string
	pendingAop    []string
	pendingMop    []string
	pendingLop    []int32
	callArgCount  int32

	whileCondPC []int32 // LIFO: PC of each enclosing loop's condition start

	// pendingEntrySym runs parallel to the P-code buffer's own
	// pending-jump stack: each push_pending_jump (at _prog and _proc)
	// pushes here too, nil for the program's own entry jump. Whichever
	// _begin_body consumes the jump also consumes this, so a Proc
	// symbol's EntryAddress is set to the address the jump was
	// patched to — the body's first real instruction, not the
	// skip-over jump itself.
	pendingEntrySym []*symtab.Symbol
}

// New builds a Parser reading tokens from stream, emitting into a
// freshly allocated symbol table and P-code buffer.
func New(stream *token.Stream) *Parser {
	return &Parser{
		stream: stream,
		sym:    symtab.New(),
		code:   pcode.New(),
		stack:  []gsym{N("<prog>")},
	}
}

// Symtab returns the symbol table built during Parse, for callers that
// want to dump it (spec.md §6 supplement) once parsing succeeds.
func (p *Parser) Symtab() *symtab.Table { return p.sym }

// Code returns the P-code buffer built during Parse.
func (p *Parser) Code() *pcode.Buffer { return p.code }

// Parse runs the predictive parser to completion, driving semantic
// actions as it goes. It returns the first error encountered,
// propagated rather than printed — per spec.md §9's unified error
// design, only the top-level driver (cmd/pl0c) prints and exits.
func (p *Parser) Parse() error {
	p.cur = p.stream.Next()
	p.sym.SetLine(p.cur.Pos.Row)

	for len(p.stack) > 0 {
		s := p.stack[0]
		p.stack = p.stack[1:]

		switch s.kind {
		case symTerminal:
			if err := p.match(s); err != nil {
				return err
			}
		case symAction:
			if err := p.dispatch(s.name); err != nil {
				return err
			}
		case symNonterm:
			if s.name == "<proc_tail>" {
				if err := p.expandProcTail(); err != nil {
					return err
				}
				continue
			}
			rhs, ok := expand(s.name, p.cur)
			if !ok {
				return p.syntaxError(s.name)
			}
			p.stack = append(rhs, p.stack...)
		}
	}
	return nil
}

// expandProcTail implements <proc_tail> → ";" <proc> | ε with the
// eager-consume reading spec.md's own worked example (and the
// identical shape in original_source/Parser.h) requires: a lone ";"
// terminating the last sibling procedure's declaration is consumed
// unconditionally once seen, and only *then* do we check whether
// another "procedure" follows. A plain "peek before consuming" LL(1)
// reading of this production can never parse that trailing ";", since
// nothing else in <block> consumes it. See DESIGN.md.
func (p *Parser) expandProcTail() error {
	if p.cur.Kind != token.SEMI {
		return nil // ε
	}
	if err := p.match(T(token.SEMI)); err != nil {
		return err
	}
	if p.cur.Kind != token.PROCEDURE {
		return nil // the ";" just terminated the last procedure
	}
	p.stack = append([]gsym{N("<proc>")}, p.stack...)
	return nil
}

// match consumes the current lookahead, which must be of kind
// s.term, advances to the next token, and performs the bookkeeping
// terminal occurrences need: recording identifiers/integers onto their
// pending queues, pushing an operator onto its role's pending stack,
// and resetting call_arg_count at the start of a call or write
// argument list (spec.md §4.D's scratch-queue contract).
func (p *Parser) match(s gsym) error {
	if p.cur.Kind != s.term {
		return p.mismatchError(s.term)
	}
	tok := p.cur

	switch tok.Kind {
	case token.IDENT:
		p.pendingNames = append(p.pendingNames, tok.Lexeme)
	case token.INTEGER:
		p.pendingValues = append(p.pendingValues, tok.Lexeme)
	case token.AOP:
		switch s.role {
		case roleAopTail:
			p.pendingAop = append(p.pendingAop, tok.Lexeme)
		case roleSign:
			// Consumed and discarded: spec.md's action contract names
			// no consumer for a unary sign, so it is parsed but never
			// compiled: "-5" evaluates to 5.
		}
	case token.MOP:
		if s.role == roleMopTail {
			p.pendingMop = append(p.pendingMop, tok.Lexeme)
		}
	case token.LOP:
		if s.role == roleLopCmp {
			sel, ok := token.LopSelector[tok.Lexeme]
			if !ok {
				return pl0err.AtPos(pl0err.Lexical, tok.Pos, "unknown relational operator %q", tok.Lexeme)
			}
			p.pendingLop = append(p.pendingLop, sel)
		}
	case token.CALL, token.WRITE:
		p.callArgCount = 0
	case token.WHILE:
		p.whileCondPC = append(p.whileCondPC, p.code.PC())
	case token.ERROR:
		return pl0err.AtPos(pl0err.Lexical, tok.Pos, "malformed token %q", tok.Lexeme)
	}

	p.cur = p.stream.Next()
	p.sym.SetLine(p.cur.Pos.Row)
	return nil
}

func (p *Parser) mismatchError(want token.Kind) error {
	return pl0err.AtPos(pl0err.Syntactic, p.cur.Pos, "expected %s, got %s %q", want, p.cur.Kind, p.cur.Lexeme)
}

func (p *Parser) syntaxError(nonterm string) error {
	first, ok := firstset.Table[nonterm]
	if !ok {
		return pl0err.AtPos(pl0err.Syntactic, p.cur.Pos, "unexpected %s %q", p.cur.Kind, p.cur.Lexeme)
	}
	return pl0err.AtPos(pl0err.Syntactic, p.cur.Pos, "expected one of %s for %s, got %s %q",
		formatFirst(first), nonterm, p.cur.Kind, p.cur.Lexeme)
}

func formatFirst(set firstset.Set) string {
	s := fmt.Sprint(set.Kinds)
	if set.Epsilon {
		s += " or ε"
	}
	return s
}

// dispatch runs the named semantic action.
func (p *Parser) dispatch(name string) error {
	switch name {
	case "_prog":
		return p.actProg()
	case "_end_prog":
		return p.actEndProg()
	case "_const":
		return p.actConst()
	case "_var":
		return p.actVar()
	case "_proc":
		return p.actProc()
	case "_out_proc":
		return p.actOutProc()
	case "_begin_body":
		return p.actBeginBody()
	case "_assignment":
		return p.actAssignment()
	case "_if":
		return p.actIf()
	case "_else_if":
		return p.actElseIf()
	case "_end_else":
		return p.actEndElse()
	case "_while":
		return p.actWhile()
	case "_end_while":
		return p.actEndWhile()
	case "_call":
		return p.actCall()
	case "_read":
		return p.actRead()
	case "_write":
		return p.actWrite()
	case "_exp_explist":
		return p.actExpExplist()
	case "_oddlexp":
		return p.actOddlexp()
	case "_cmplexp":
		return p.actCmplexp()
	case "_aop_exp":
		return p.actAopExp()
	case "_mop_term":
		return p.actMopTerm()
	case "_integer_factor":
		return p.actIntegerFactor()
	case "_id_factor":
		return p.actIdFactor()
	}
	return pl0err.AtPos(pl0err.Syntactic, p.cur.Pos, "internal: unknown action %q", name)
}
