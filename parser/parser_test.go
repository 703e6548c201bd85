package parser_test

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"

	"github.com/go-pl0/pl0c/parser"
	"github.com/go-pl0/pl0c/pcode"
	"github.com/go-pl0/pl0c/token"
)

// tokenize turns PL/0-family source text into the lexer's wire format
// (spec.md §4.A/§6: one "KIND(lexeme)(row,column)" record per line) so
// tests can write source the way spec.md §8's scenario table does,
// rather than hand-writing token records. This stands in for the
// out-of-scope character-level lexer; grounded on
// other_examples/dodobyte-plzero__plzero.go's keyword/operator tables.
func tokenize(src string) string {
	var b strings.Builder
	row := 1
	i := 0
	emit := func(kind, lexeme string) {
		fmt.Fprintf(&b, "%s(%s)(%d,0)\n", kind, lexeme, row)
	}
	keywords := map[string]string{
		"program": "PROGRAM", "const": "CONST", "var": "VAR", "procedure": "PROCEDURE",
		"call": "CALL", "begin": "BEGIN", "end": "END", "if": "IF", "then": "THEN",
		"else": "ELSE", "while": "WHILE", "do": "DO", "odd": "ODD", "read": "READ",
		"write": "WRITE",
	}
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\n':
			row++
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case unicode.IsDigit(rune(c)):
			j := i
			for j < len(src) && unicode.IsDigit(rune(src[j])) {
				j++
			}
			emit("INTEGER", src[i:j])
			i = j
		case unicode.IsLetter(rune(c)):
			j := i
			for j < len(src) && (unicode.IsLetter(rune(src[j])) || unicode.IsDigit(rune(src[j]))) {
				j++
			}
			word := src[i:j]
			if kind, ok := keywords[word]; ok {
				emit(kind, word)
			} else {
				emit("IDENT", word)
			}
			i = j
		case c == ':' && i+1 < len(src) && src[i+1] == '=':
			emit("COLONEQ", ":=")
			i += 2
		case c == '<' && i+1 < len(src) && src[i+1] == '=':
			emit("LOP", "<=")
			i += 2
		case c == '>' && i+1 < len(src) && src[i+1] == '=':
			emit("LOP", ">=")
			i += 2
		case c == '<' && i+1 < len(src) && src[i+1] == '>':
			emit("LOP", "<>")
			i += 2
		case c == '<' || c == '>' || c == '=':
			emit("LOP", string(c))
			i++
		case c == '+' || c == '-':
			emit("AOP", string(c))
			i++
		case c == '*' || c == '/':
			emit("MOP", string(c))
			i++
		case c == ';':
			emit("SEMI", ";")
			i++
		case c == ',':
			emit("COMMA", ",")
			i++
		case c == '(':
			emit("LPAREN", "(")
			i++
		case c == ')':
			emit("RPAREN", ")")
			i++
		default:
			// ".": the grammar never consumes a trailing period, so it's
			// simply skipped, like whitespace, at this adapter layer.
			i++
		}
	}
	b.WriteString("EOF(EOF)(0,0)\n")
	return b.String()
}

func mustParse(t *testing.T, src string) *parser.Parser {
	t.Helper()
	p := parser.New(token.NewStream(strings.NewReader(tokenize(src))))
	require.NoError(t, p.Parse())
	return p
}

func TestParseScenario1_Arithmetic(t *testing.T) {
	p := mustParse(t, `program p; begin write(2+3*4) end.`)
	// the single write argument's code ends in a halt
	last := p.Code().At(p.Code().Len() - 1)
	require.Equal(t, pcode.OPR, last.Op)
	require.Equal(t, int32(pcode.OprReturn), last.A)
}

func TestParseScenario3_WhileEmitsBackJump(t *testing.T) {
	p := mustParse(t, `
		program p;
		const c:=10;
		var i,s;
		begin
			s:=0; i:=1;
			while i<=c do begin s:=s+i; i:=i+1 end;
			write(s)
		end.`)
	code := p.Code()
	var sawWhileJMP bool
	for i := int32(0); i < code.Len(); i++ {
		in := code.At(i)
		if in.Op == pcode.JMP && in.A < i {
			sawWhileJMP = true
		}
	}
	require.True(t, sawWhileJMP, "expected a backward JMP closing the while loop")
}

func TestParseScenario5_ProcEntryAddressPastSkipJump(t *testing.T) {
	p := mustParse(t, `
		program p;
		var n;
		procedure f(x);
		begin write(x*x) end;
		begin read(n); call f(n) end.`)
	sym, _, err := p.Symtab().FindGlobal("f")
	require.NoError(t, err)
	entry := sym.EntryAddress
	require.GreaterOrEqual(t, entry, int32(0))
	// the skip-over JMP at address 0 must not itself be the entry point
	require.NotEqual(t, int32(0), entry)
	require.Equal(t, pcode.JMP, p.Code().At(0).Op)
}

func TestAssignToConstIsTypeMismatch(t *testing.T) {
	p := parser.New(token.NewStream(strings.NewReader(tokenize(
		`program p; const c:=1; begin c:=2 end.`))))
	err := p.Parse()
	require.Error(t, err)
	require.Contains(t, err.Error(), "semantic error")
}

func TestCallWrongArgCountIsParamCountMismatch(t *testing.T) {
	p := parser.New(token.NewStream(strings.NewReader(tokenize(
		`program p; procedure f(x); begin write(x) end; begin call f(1,2) end.`))))
	err := p.Parse()
	require.Error(t, err)
	require.Contains(t, err.Error(), "argument")
}

func TestUndeclaredIdentifierIsUndefined(t *testing.T) {
	p := parser.New(token.NewStream(strings.NewReader(tokenize(
		`program p; begin write(y) end.`))))
	err := p.Parse()
	require.Error(t, err)
	require.Contains(t, err.Error(), "undefined")
}

func TestSyntaxErrorOnMismatch(t *testing.T) {
	p := parser.New(token.NewStream(strings.NewReader(tokenize(
		`program p; begin write(1 end.`))))
	err := p.Parse()
	require.Error(t, err)
	require.Contains(t, err.Error(), "syntax error")
}

func TestProcTailConsumesTrailingSemicolon(t *testing.T) {
	// two sibling procedures, the second's trailing ";" must be
	// consumed before the enclosing block's own "begin".
	p := mustParse(t, `
		program p;
		procedure f(); begin write(1) end;
		procedure g(); begin write(2) end;
		begin call f; call g end.`)
	_, _, err := p.Symtab().FindGlobal("g")
	require.NoError(t, err)
}

func TestSiblingProcCallsEarlierSibling(t *testing.T) {
	// g is declared before f, so f's body can call it — the
	// single-pass <proc_tail> chain only makes a sibling visible once
	// its own "procedure" production has run.
	p := mustParse(t, `
		program p;
		procedure g(); begin write(1) end;
		procedure f(); begin call g end;
		begin call f end.`)
	_, diff, err := p.Symtab().FindGlobal("g")
	require.NoError(t, err)
	require.Equal(t, 0, diff) // both are level-1 siblings of the root
}

func parseIntLexeme(t *testing.T, s string) int32 {
	n, err := strconv.ParseInt(s, 10, 32)
	require.NoError(t, err)
	return int32(n)
}

func TestParseIntLexemeHelperSane(t *testing.T) {
	require.Equal(t, int32(42), parseIntLexeme(t, "42"))
}
