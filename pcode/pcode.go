// Package pcode implements the append-only P-code instruction buffer
// described in spec.md §3.4/§4.C: an instruction array, a label table,
// and a jump-stack for forward patches.
//
// Grounded on org.Generator's emit/fix/FixOne/FixLink family (append,
// later patch-by-index) and directly on original_source/Pcode.h's
// Pcode class, which keeps exactly the two distinct patching
// mechanisms this package reproduces: a LIFO "pending jump" stack for
// procedure-entry skip-over, and named, LIFO-per-id labels for
// if/then/else and while/do.
package pcode

import (
	"fmt"
	"io"
)

// Op is a P-code opcode (spec.md §3.4), plus the STAGE addition
// spec.md §9 directs in place of the source's "STO -1" encoding (emitted
// by the parser's _call action, executed by vm.VM).
type Op int

const (
	LIT Op = iota
	LOD
	STO
	CAL
	INT
	JMP
	JPC
	OPR
	RED
	WRT
	STAGE
)

var opNames = [...]string{"LIT", "LOD", "STO", "CAL", "INT", "JMP", "JPC", "OPR", "RED", "WRT", "STAGE"}

func (o Op) String() string {
	if int(o) >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// OPR sub-operator selectors (spec.md §4.F).
const (
	OprReturn = 0
	OprNeg    = 1
	OprAdd    = 2
	OprSub    = 3
	OprMul    = 4
	OprDiv    = 5
	OprOdd    = 6
	// 7..12: relational operators, see token.RelEQ..token.RelGE.
)

// Instr is one P-code instruction: an opcode plus two signed operands.
type Instr struct {
	Op   Op
	L, A int32
}

func (in Instr) String() string {
	return fmt.Sprintf("%s %d %d", in.Op, in.L, in.A)
}

type label struct {
	id    string
	pc    int32
}

// Buffer is the append-only instruction array plus its two patch
// mechanisms. The zero value is an empty buffer; New returns one.
type Buffer struct {
	code        []Instr
	pendingJump []int32 // stack of instruction indices awaiting a JMP target
	labels      []label // LIFO per id; searched newest-first
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// PC returns the index the next Emit will use (== len(code)).
func (b *Buffer) PC() int32 { return int32(len(b.code)) }

// Emit appends an instruction and returns its index.
func (b *Buffer) Emit(op Op, l, a int32) int32 {
	idx := b.PC()
	b.code = append(b.code, Instr{Op: op, L: l, A: a})
	return idx
}

// PushPendingJump records the current PC on the jump-stack,
// immediately before emitting a JMP whose target isn't known yet
// (used at a procedure body's entry jump, spec.md §4.D's _proc
// action).
func (b *Buffer) PushPendingJump() {
	b.pendingJump = append(b.pendingJump, b.PC())
}

// PatchPendingJump pops the most recently pushed pending-jump index
// and writes target into that instruction's A field.
func (b *Buffer) PatchPendingJump(target int32) {
	n := len(b.pendingJump)
	idx := b.pendingJump[n-1]
	b.pendingJump = b.pendingJump[:n-1]
	b.code[idx].A = target
}

// NewLabel records a named label pointing at pc. Labels with the same
// id form a LIFO stack, supporting properly nested if/while.
func (b *Buffer) NewLabel(id string, pc int32) {
	b.labels = append(b.labels, label{id: id, pc: pc})
}

// BackPatch locates the newest label with id, writes target into the
// instruction at its recorded pc, and removes the label.
func (b *Buffer) BackPatch(id string, target int32) {
	for i := len(b.labels) - 1; i >= 0; i-- {
		if b.labels[i].id == id {
			b.code[b.labels[i].pc].A = target
			b.labels = append(b.labels[:i], b.labels[i+1:]...)
			return
		}
	}
	panic("pcode: BackPatch: no label " + id)
}

// Len returns the number of emitted instructions.
func (b *Buffer) Len() int32 { return int32(len(b.code)) }

// At returns the instruction at index pc.
func (b *Buffer) At(pc int32) Instr { return b.code[pc] }

// InBounds reports whether pc is a valid instruction index.
func (b *Buffer) InBounds(pc int32) bool { return pc >= 0 && pc < b.Len() }

// Dump writes one line per instruction, grounded on
// original_source/Pcode.h's printCode().
func (b *Buffer) Dump(w io.Writer) {
	for i, in := range b.code {
		fmt.Fprintf(w, "%4d: %s\n", i, in)
	}
}

// Trace writes one instruction's execution per the §6 P-code trace
// format: "pc: OP L A" followed by the full data-stack contents from
// top down. pl0c is the producer of this format, not the
// out-of-scope animation tool that consumes it.
func Trace(w io.Writer, pc int32, in Instr, stack []int32) {
	fmt.Fprintf(w, "%d: %s\n", pc, in)
	for i := len(stack) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "  %d\n", stack[i])
	}
}
