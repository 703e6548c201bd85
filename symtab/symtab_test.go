package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-pl0/pl0c/symtab"
)

func TestOffsetDensity(t *testing.T) {
	tab := symtab.New()
	require.NoError(t, tab.InsertParam("a"))
	require.NoError(t, tab.InsertParam("b"))
	require.NoError(t, tab.InsertVar("x"))
	require.NoError(t, tab.InsertVar("y"))

	sym, _, err := tab.FindGlobal("a")
	require.NoError(t, err)
	require.Equal(t, int32(0), sym.Offset)

	sym, _, err = tab.FindGlobal("b")
	require.NoError(t, err)
	require.Equal(t, int32(1), sym.Offset)

	sym, _, err = tab.FindGlobal("x")
	require.NoError(t, err)
	require.Equal(t, int32(2), sym.Offset)

	sym, _, err = tab.FindGlobal("y")
	require.NoError(t, err)
	require.Equal(t, int32(3), sym.Offset)
}

func TestDuplicateDefinition(t *testing.T) {
	tab := symtab.New()
	require.NoError(t, tab.InsertVar("x"))
	err := tab.InsertConst("x", 1)
	require.Error(t, err)
}

func TestUndefined(t *testing.T) {
	tab := symtab.New()
	_, _, err := tab.FindGlobal("nope")
	require.Error(t, err)
}

func TestBFSOutermostWins(t *testing.T) {
	tab := symtab.New()
	require.NoError(t, tab.InsertVar("x")) // global x, level 0

	procSym, err := tab.InsertProc("p", 0)
	require.NoError(t, err)
	inner := tab.EnterProcLayer("p")
	procSym.InnerScope = inner

	require.NoError(t, tab.InsertVar("x")) // shadowing local x, level 1

	// From inside p, "x" still resolves to the outer (level 0) x,
	// per the BFS-outermost-wins rule spec.md mandates.
	sym, diff, err := tab.FindGlobal("x")
	require.NoError(t, err)
	require.Equal(t, 0, sym.DefiningLevel)
	require.Equal(t, 1, diff)
}

func TestSiblingProcVisibleOnceDeclared(t *testing.T) {
	tab := symtab.New()

	fSym, err := tab.InsertProc("f", 0)
	require.NoError(t, err)
	fScope := tab.EnterProcLayer("f")
	fSym.InnerScope = fScope
	require.NoError(t, tab.ExitProcLayer())

	gSym, err := tab.InsertProc("g", 0)
	require.NoError(t, err)
	gScope := tab.EnterProcLayer("g")
	gSym.InnerScope = gScope

	// From inside g's body, the earlier sibling f is visible via the
	// same BFS-from-root walk used for ordinary variables.
	sym, diff, err := tab.FindGlobal("f")
	require.NoError(t, err)
	require.Equal(t, symtab.KindProc, sym.Kind)
	require.Equal(t, 1, diff)
	require.NoError(t, tab.ExitProcLayer())
}

func TestExitRootScopeFails(t *testing.T) {
	tab := symtab.New()
	require.Error(t, tab.ExitProcLayer())
}

func TestFindProcByEntry(t *testing.T) {
	tab := symtab.New()
	procSym, err := tab.InsertProc("f", 1)
	require.NoError(t, err)
	inner := tab.EnterProcLayer("f")
	procSym.InnerScope = inner
	require.NoError(t, tab.ExitProcLayer())

	procSym.EntryAddress = 42
	got, err := tab.FindProcByEntry(42)
	require.NoError(t, err)
	require.Equal(t, inner, got)

	_, err = tab.FindProcByEntry(99)
	require.Error(t, err)
}

func TestParamThenVarOffsetsInProc(t *testing.T) {
	tab := symtab.New()
	procSym, err := tab.InsertProc("f", 2)
	require.NoError(t, err)
	inner := tab.EnterProcLayer("f")
	procSym.InnerScope = inner

	require.NoError(t, tab.InsertParam("x"))
	require.NoError(t, tab.InsertParam("y"))
	require.NoError(t, tab.InsertVar("z"))

	sym, _, err := tab.FindGlobal("z")
	require.NoError(t, err)
	require.Equal(t, int32(2), sym.Offset)
	require.Equal(t, int32(3), tab.VarOffset(inner))
}
