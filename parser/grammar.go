// Grammar production table for the predictive parser, transcribed
// directly from spec.md §4.D. Unlike a textbook recursive-descent
// parser, there is no call stack here: Parse drives a single explicit
// symbol stack (the Parser's []gsym field), expanding one nonterminal
// per iteration and consuming one token of lookahead at a time.
//
// <id_list>/<id_list_opt>/<id_list_tail>, <statement_list>/
// <statement_tail>, <else_opt>, <arg_list_opt> and <exp_list_opt> are
// not spelled out in spec.md's grammar block (it only names them), so
// their productions are grounded on original_source/Parser.h, which
// defines all five identically to how this file uses them.
package parser

import "github.com/go-pl0/pl0c/token"

// symKind tags what a gsym represents on the symbol stack.
type symKind int

const (
	symTerminal symKind = iota
	symNonterm
	symAction
)

// termRole distinguishes terminal occurrences that need extra
// bookkeeping at match time from plain ones. AOP appears in both
// <sign_opt> and <exp_tail>, and only the latter occurrence feeds a
// pending-operator stack that a later action drains (see actions.go);
// tagging the *occurrence*, not the token kind, lets match stay a
// single generic function.
type termRole int

const (
	roleNone    termRole = iota
	roleSign             // AOP in <sign_opt>: consumed, not recorded (see Parser.match)
	roleAopTail          // AOP in <exp_tail>: pushed onto pendingAop
	roleMopTail          // MOP in <term_tail>: pushed onto pendingMop
	roleLopCmp           // LOP in <lexp>: pushed onto pendingLop
)

// gsym is one pending grammar symbol.
type gsym struct {
	kind symKind
	term token.Kind
	role termRole
	name string // nonterminal name (angle brackets included) or action name
}

func T(k token.Kind) gsym                  { return gsym{kind: symTerminal, term: k} }
func Trole(k token.Kind, r termRole) gsym   { return gsym{kind: symTerminal, term: k, role: r} }
func N(name string) gsym                   { return gsym{kind: symNonterm, name: name} }
func A(name string) gsym                   { return gsym{kind: symAction, name: name} }

// isStmtStart reports whether k is in the FIRST set of <statement>,
// used by several productions to decide between a nonterminal and ε.
func isStmtStart(k token.Kind) bool {
	switch k {
	case token.IDENT, token.IF, token.WHILE, token.CALL, token.BEGIN, token.READ, token.WRITE:
		return true
	}
	return false
}

func isExpStart(k token.Kind) bool {
	switch k {
	case token.IDENT, token.INTEGER, token.LPAREN, token.AOP:
		return true
	}
	return false
}

// expand returns the right-hand side for nonterminal name given the
// current lookahead la, or ok=false if la is not in name's FIRST set
// (the caller turns that into a syntax error using package firstset).
func expand(name string, la token.Token) (rhs []gsym, ok bool) {
	switch name {
	case "<prog>":
		return []gsym{T(token.PROGRAM), T(token.IDENT), A("_prog"), T(token.SEMI), N("<block>"), A("_end_prog")}, true

	case "<block>":
		return []gsym{N("<condecl_opt>"), N("<vardecl_opt>"), N("<proc_opt>"), A("_begin_body"), N("<body>")}, true

	case "<condecl_opt>":
		if la.Kind == token.CONST {
			return []gsym{T(token.CONST), N("<const_list>"), T(token.SEMI)}, true
		}
		return nil, true // ε

	case "<const_list>":
		if la.Kind == token.IDENT {
			return []gsym{N("<const>"), A("_const"), N("<const_list_tail>")}, true
		}
		return nil, false

	case "<const>":
		if la.Kind == token.IDENT {
			return []gsym{T(token.IDENT), T(token.COLONEQ), T(token.INTEGER)}, true
		}
		return nil, false

	case "<const_list_tail>":
		if la.Kind == token.COMMA {
			return []gsym{T(token.COMMA), N("<const>"), A("_const"), N("<const_list_tail>")}, true
		}
		return nil, true // ε

	case "<vardecl_opt>":
		if la.Kind == token.VAR {
			return []gsym{T(token.VAR), N("<id_list>"), A("_var"), T(token.SEMI)}, true
		}
		return nil, true // ε

	case "<proc_opt>":
		if la.Kind == token.PROCEDURE {
			return []gsym{N("<proc>")}, true
		}
		return nil, true // ε

	case "<proc>":
		if la.Kind == token.PROCEDURE {
			return []gsym{
				T(token.PROCEDURE), T(token.IDENT), N("<param_list_opt>"), A("_proc"),
				T(token.SEMI), N("<block>"), A("_out_proc"), N("<proc_tail>"),
			}, true
		}
		return nil, false

	case "<param_list_opt>":
		if la.Kind == token.LPAREN {
			return []gsym{T(token.LPAREN), N("<id_list_opt>"), T(token.RPAREN)}, true
		}
		return nil, false

	// <proc_tail>'s ";" is consumed eagerly: a lone semicolon after the
	// last sibling procedure's block (immediately preceding the
	// enclosing scope's own <body>) has nowhere else to go in this
	// grammar, so the decision of whether another <proc> follows is
	// made only *after* the ";" is gone. See DESIGN.md.
	case "<proc_tail>":
		return nil, true // handled specially in parser.go, not via plain expand

	case "<body>":
		if la.Kind == token.BEGIN {
			return []gsym{T(token.BEGIN), N("<statement_list>"), T(token.END)}, true
		}
		return nil, false

	case "<statement_list>":
		if isStmtStart(la.Kind) {
			return []gsym{N("<statement>"), N("<statement_tail>")}, true
		}
		return nil, false

	case "<statement_tail>":
		if la.Kind == token.SEMI {
			return []gsym{T(token.SEMI), N("<statement>"), N("<statement_tail>")}, true
		}
		return nil, true // ε

	case "<statement>":
		switch la.Kind {
		case token.IDENT:
			return []gsym{T(token.IDENT), T(token.COLONEQ), N("<exp>"), A("_assignment")}, true
		case token.IF:
			return []gsym{
				T(token.IF), N("<lexp>"), A("_if"), T(token.THEN), N("<statement>"),
				A("_else_if"), N("<else_opt>"), A("_end_else"),
			}, true
		case token.WHILE:
			return []gsym{T(token.WHILE), N("<lexp>"), A("_while"), T(token.DO), N("<statement>"), A("_end_while")}, true
		case token.CALL:
			return []gsym{T(token.CALL), T(token.IDENT), N("<arg_list_opt>"), A("_call")}, true
		case token.BEGIN:
			return []gsym{N("<body>")}, true
		case token.READ:
			return []gsym{T(token.READ), T(token.LPAREN), N("<id_list>"), A("_read"), T(token.RPAREN)}, true
		case token.WRITE:
			return []gsym{T(token.WRITE), T(token.LPAREN), N("<exp_list>"), A("_write"), T(token.RPAREN)}, true
		}
		return nil, false

	case "<else_opt>":
		if la.Kind == token.ELSE {
			return []gsym{T(token.ELSE), N("<statement>")}, true
		}
		return nil, true // ε

	case "<lexp>":
		if la.Kind == token.ODD {
			return []gsym{T(token.ODD), N("<exp>"), A("_oddlexp")}, true
		}
		if isExpStart(la.Kind) {
			return []gsym{N("<exp>"), Trole(token.LOP, roleLopCmp), N("<exp>"), A("_cmplexp")}, true
		}
		return nil, false

	case "<exp>":
		if isExpStart(la.Kind) {
			return []gsym{N("<sign_opt>"), N("<term>"), N("<exp_tail>")}, true
		}
		return nil, false

	case "<sign_opt>":
		if la.Kind == token.AOP {
			return []gsym{Trole(token.AOP, roleSign)}, true
		}
		return nil, true // ε

	case "<exp_tail>":
		if la.Kind == token.AOP {
			return []gsym{Trole(token.AOP, roleAopTail), N("<term>"), A("_aop_exp"), N("<exp_tail>")}, true
		}
		return nil, true // ε

	case "<term>":
		if la.Kind == token.IDENT || la.Kind == token.INTEGER || la.Kind == token.LPAREN {
			return []gsym{N("<factor>"), N("<term_tail>")}, true
		}
		return nil, false

	case "<term_tail>":
		if la.Kind == token.MOP {
			return []gsym{Trole(token.MOP, roleMopTail), N("<factor>"), A("_mop_term"), N("<term_tail>")}, true
		}
		return nil, true // ε

	case "<factor>":
		switch la.Kind {
		case token.IDENT:
			return []gsym{T(token.IDENT), A("_id_factor")}, true
		case token.INTEGER:
			return []gsym{T(token.INTEGER), A("_integer_factor")}, true
		case token.LPAREN:
			return []gsym{T(token.LPAREN), N("<exp>"), T(token.RPAREN)}, true
		}
		return nil, false

	case "<arg_list_opt>":
		if la.Kind == token.LPAREN {
			return []gsym{T(token.LPAREN), N("<exp_list_opt>"), T(token.RPAREN)}, true
		}
		return nil, true // ε

	case "<exp_list_opt>":
		if isExpStart(la.Kind) {
			return []gsym{N("<exp_list>")}, true
		}
		return nil, true // ε

	case "<exp_list>":
		if isExpStart(la.Kind) {
			return []gsym{N("<exp>"), A("_exp_explist"), N("<exp_list_tail>")}, true
		}
		return nil, false

	case "<exp_list_tail>":
		if la.Kind == token.COMMA {
			return []gsym{T(token.COMMA), N("<exp>"), A("_exp_explist"), N("<exp_list_tail>")}, true
		}
		return nil, true // ε

	case "<id_list>":
		if la.Kind == token.IDENT {
			return []gsym{T(token.IDENT), N("<id_list_tail>")}, true
		}
		return nil, false

	case "<id_list_tail>":
		if la.Kind == token.COMMA {
			return []gsym{T(token.COMMA), T(token.IDENT), N("<id_list_tail>")}, true
		}
		return nil, true // ε

	case "<id_list_opt>":
		if la.Kind == token.IDENT {
			return []gsym{N("<id_list>")}, true
		}
		return nil, true // ε
	}
	return nil, false
}
