// Package firstset is the static FIRST-set table from spec.md §4.E:
// a map from every grammar nonterminal to the terminals (plus ε) that
// can begin it. It is purely diagnostic, used to report "expected one
// of {...}" when the parser hits an LL(1) mismatch; it does not drive
// any parsing decision (those are inlined per nonterminal in package
// parser, following spec.md §4.D's grammar directly).
//
// Grounded structurally on orb.Base.NewBase, which builds a static
// table once at construction time rather than computing it on demand.
package firstset

import "github.com/go-pl0/pl0c/token"

// Set is a FIRST set: the terminal kinds that can begin a
// nonterminal, plus whether ε (an empty derivation) is possible.
type Set struct {
	Kinds   []token.Kind
	Epsilon bool
}

// Table maps a nonterminal's grammar name (exactly as spelled in
// spec.md §4.D, angle brackets included) to its FIRST set.
var Table = map[string]Set{
	"<prog>":            {Kinds: []token.Kind{token.PROGRAM}},
	"<block>":           {Kinds: []token.Kind{token.CONST, token.VAR, token.PROCEDURE, token.BEGIN}},
	"<condecl_opt>":     {Kinds: []token.Kind{token.CONST}, Epsilon: true},
	"<const_list>":      {Kinds: []token.Kind{token.IDENT}},
	"<const>":           {Kinds: []token.Kind{token.IDENT}},
	"<const_list_tail>": {Kinds: []token.Kind{token.COMMA}, Epsilon: true},
	"<vardecl_opt>":     {Kinds: []token.Kind{token.VAR}, Epsilon: true},
	"<proc_opt>":        {Kinds: []token.Kind{token.PROCEDURE}, Epsilon: true},
	"<proc>":            {Kinds: []token.Kind{token.PROCEDURE}},
	"<param_list_opt>":  {Kinds: []token.Kind{token.LPAREN}},
	"<proc_tail>":       {Kinds: []token.Kind{token.SEMI}, Epsilon: true},
	"<body>":            {Kinds: []token.Kind{token.BEGIN}},
	"<statement_list>": {Kinds: []token.Kind{
		token.IDENT, token.IF, token.WHILE, token.CALL,
		token.BEGIN, token.READ, token.WRITE,
	}},
	"<statement_tail>": {Kinds: []token.Kind{token.SEMI}, Epsilon: true},
	"<else_opt>":       {Kinds: []token.Kind{token.ELSE}, Epsilon: true},
	"<statement>": {Kinds: []token.Kind{
		token.IDENT, token.IF, token.WHILE, token.CALL,
		token.BEGIN, token.READ, token.WRITE,
	}},
	"<lexp>":          {Kinds: []token.Kind{token.ODD, token.IDENT, token.INTEGER, token.LPAREN, token.AOP}},
	"<exp>":           {Kinds: []token.Kind{token.IDENT, token.INTEGER, token.LPAREN, token.AOP}},
	"<sign_opt>":      {Kinds: []token.Kind{token.AOP}, Epsilon: true},
	"<exp_tail>":      {Kinds: []token.Kind{token.AOP}, Epsilon: true},
	"<term>":          {Kinds: []token.Kind{token.IDENT, token.INTEGER, token.LPAREN}},
	"<term_tail>":     {Kinds: []token.Kind{token.MOP}, Epsilon: true},
	"<factor>":        {Kinds: []token.Kind{token.IDENT, token.INTEGER, token.LPAREN}},
	"<arg_list_opt>":  {Kinds: []token.Kind{token.LPAREN}, Epsilon: true},
	"<exp_list_opt>":  {Kinds: []token.Kind{token.IDENT, token.INTEGER, token.LPAREN, token.AOP}, Epsilon: true},
	"<exp_list>":      {Kinds: []token.Kind{token.IDENT, token.INTEGER, token.LPAREN, token.AOP}},
	"<exp_list_tail>": {Kinds: []token.Kind{token.COMMA}, Epsilon: true},
	"<id_list>":       {Kinds: []token.Kind{token.IDENT}},
	"<id_list_tail>":  {Kinds: []token.Kind{token.COMMA}, Epsilon: true},
	"<id_list_opt>":   {Kinds: []token.Kind{token.IDENT}, Epsilon: true},
}
