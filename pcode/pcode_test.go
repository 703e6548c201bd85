package pcode_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-pl0/pl0c/pcode"
)

func TestEmitMonotonic(t *testing.T) {
	b := pcode.New()
	i0 := b.Emit(pcode.LIT, 0, 1)
	i1 := b.Emit(pcode.LIT, 0, 2)
	require.Equal(t, int32(0), i0)
	require.Equal(t, int32(1), i1)
	require.Equal(t, int32(2), b.Len())
}

func TestPendingJump(t *testing.T) {
	b := pcode.New()
	b.PushPendingJump()
	b.Emit(pcode.JMP, 0, 0)
	b.Emit(pcode.OPR, 0, 0)
	target := b.PC()
	b.PatchPendingJump(target)
	require.Equal(t, target, b.At(0).A)
}

func TestNestedLabelsLIFO(t *testing.T) {
	b := pcode.New()
	b.NewLabel("if_JPC", b.Emit(pcode.JPC, 0, 0))
	// nested if inside the then-branch
	b.NewLabel("if_JPC", b.Emit(pcode.JPC, 0, 0))
	innerTarget := b.PC()
	b.BackPatch("if_JPC", innerTarget)
	outerTarget := b.PC()
	b.BackPatch("if_JPC", outerTarget)

	require.Equal(t, innerTarget, b.At(1).A)
	require.Equal(t, outerTarget, b.At(0).A)
}

func TestDumpDoesNotPanic(t *testing.T) {
	b := pcode.New()
	b.Emit(pcode.LIT, 0, 42)
	b.Emit(pcode.OPR, 0, 0)
	var buf []byte
	_ = buf
	b.Dump(discard{})
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
