// Package vm implements the stack-machine interpreter described in
// spec.md §3.5/§4.F: one growable data stack holding every activation
// record, a display vector copied into each frame for non-local
// access, and a dispatch loop over the P-code instruction set.
//
// Struct-holding-mutable-state-with-push/pop-methods is grounded on
// daios-ai-msg/vm.go's vm type; the opcode dispatch switch is the same
// shape that vm's runChunk uses.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/go-pl0/pl0c/pcode"
	"github.com/go-pl0/pl0c/pl0err"
	"github.com/go-pl0/pl0c/symtab"
)

// frame is the interpreter's own bookkeeping for one active call,
// parallel to the data stack rather than stored in it: base is the
// stack index of the activation record's offset 0, and lcal is the
// level this frame's display was built with — the index of the
// frame's own base within its own display (spec.md's "current_level"
// in the LOD/STO addressing formula). Together with pc this is the
// "return-address stack" spec.md §4.F names as separate interpreter
// state.
type frame struct {
	base int32
	ra   int32
	lcal int32
}

// Activation record field offsets within one frame, per spec.md §3.5.
// Slots start at offset 4, after the dynamic link, return address,
// static-link pointer and the stored local-area size N — not at
// offset 3, which spec.md §4.D's "+3" shorthand would suggest; that
// shorthand conflicts with §3.5's own table and with
// original_source/Pcode.h's Activation::getIdVal (both agree slots
// start past N at offset 4). See DESIGN.md.
const (
	offDynamicLink = 0
	offReturnAddr  = 1
	offStaticLink  = 2
	offLocalCount  = 3
	slotBase       = 4
)

// VM executes a finished P-code buffer against a read-only symbol
// table (needed only to size activation records and to resolve a
// CAL's target address back to a scope).
type VM struct {
	code *pcode.Buffer
	sym  *symtab.Table

	stdin  *bufio.Reader
	stdout io.Writer
	trace  io.Writer

	stack   []int32
	frames  []frame
	staging []int32
}

// New builds a VM ready to run code. in supplies RED's integers;
// out receives WRT's buffered output at halt.
func New(code *pcode.Buffer, sym *symtab.Table, in io.Reader, out io.Writer) *VM {
	return &VM{code: code, sym: sym, stdin: bufio.NewReader(in), stdout: out}
}

// SetTrace turns on the §6 P-code trace format, writing one record
// per executed instruction to w.
func (v *VM) SetTrace(w io.Writer) { v.trace = w }

func (v *VM) push(x int32) { v.stack = append(v.stack, x) }

func (v *VM) pop() int32 {
	n := len(v.stack) - 1
	x := v.stack[n]
	v.stack = v.stack[:n]
	return x
}

func (v *VM) top() *frame { return &v.frames[len(v.frames)-1] }

// resolve locates the cell LOD/STO address (L, A) refers to: the
// display of the currently executing frame holds the base of the
// nearest activation at each level 0..lcal, so the target frame's base
// is display[lcal-L], and the cell itself is that base plus A.
func (v *VM) resolve(L, A int32) int32 {
	cur := v.top()
	dispStart := v.stack[cur.base+offStaticLink]
	targetBase := v.stack[dispStart+(cur.lcal-L)]
	return targetBase + A
}

// Run initializes the root activation and executes until OPR 0 0
// halts with an empty call stack, flushing buffered WRT output. It
// returns the first runtime error encountered.
func (v *VM) Run() error {
	v.initRoot()
	var output []int32
	pc := int32(0)

	for {
		if !v.code.InBounds(pc) {
			return pl0err.AtPC(int(pc), "program counter %d out of range", pc)
		}
		in := v.code.At(pc)
		execPC := pc
		pc++
		if v.trace != nil {
			pcode.Trace(v.trace, execPC, in, v.stack)
		}

		switch in.Op {
		case pcode.LIT:
			v.push(in.A)

		case pcode.LOD:
			v.push(v.stack[v.resolve(in.L, in.A)])

		case pcode.STO:
			val := v.pop()
			v.stack[v.resolve(in.L, in.A)] = val

		case pcode.STAGE:
			val := v.pop()
			for int32(len(v.staging)) <= in.A {
				v.staging = append(v.staging, 0)
			}
			v.staging[in.A] = val

		case pcode.CAL:
			if err := v.call(in.L, in.A, pc, execPC); err != nil {
				return err
			}
			pc = in.A

		case pcode.INT:
			for i := int32(0); i < in.A; i++ {
				v.push(0)
			}

		case pcode.JMP:
			pc = in.A

		case pcode.JPC:
			if v.pop() == 0 {
				pc = in.A
			}

		case pcode.OPR:
			halted, err := v.opr(in.A, execPC, &pc)
			if err != nil {
				return err
			}
			if halted {
				v.flush(output)
				return nil
			}

		case pcode.RED:
			val, err := v.readInt(execPC)
			if err != nil {
				return err
			}
			v.push(val)

		case pcode.WRT:
			output = append(output, v.pop())

		default:
			return pl0err.AtPC(int(execPC), "unknown opcode %s", in.Op)
		}
	}
}

// initRoot builds the program's top-level activation: dynamic link and
// return address 0, a static link pointing just past its locals, the
// root scope's var count, that many zeroed slots, and a one-entry
// display holding its own base (spec.md §4.F "Initialization").
func (v *VM) initRoot() {
	root := v.sym.RootScope()
	n := v.sym.VarOffset(root)

	v.push(0)            // dynamic link
	v.push(0)            // return address
	v.push(slotBase + n) // static link: display starts right after the N slots
	v.push(n)
	for i := int32(0); i < n; i++ {
		v.push(0)
	}
	v.push(0) // display[0] = this frame's own base

	v.frames = append(v.frames, frame{base: 0, ra: 0, lcal: 0})
}

// call pushes a fresh activation for the procedure whose entry address
// is addr, consuming any arguments staged by preceding STAGE
// instructions — the first-class replacement spec.md §9 directs for
// the source's "STO -1" encoding, since STAGE only needs an argument
// index and the callee's frame doesn't exist until right here.
//
// levelDiff is CAL's emitted L operand (the same level_diff formula
// LOD/STO use: caller's level minus the callee's declaring level) and
// is not used to size the new display — see copyLen below for why —
// but is threaded through because it's the instruction's field and a
// future trace/diagnostic consumer may want it.
func (v *VM) call(levelDiff, addr, returnPC, execPC int32) error {
	calleeScope, err := v.sym.FindProcByEntry(addr)
	if err != nil {
		return pl0err.AtPC(int(execPC), "CAL target %d does not name a procedure", addr)
	}
	n := v.sym.VarOffset(calleeScope)

	// The new frame's display copies exactly as many entries from the
	// caller's display as the callee's own execution level, so that the
	// callee's own base, appended after them, lands at display[level] — the same indexing root's display[0]=ownBase
	// convention in initRoot establishes. Deriving this from the
	// callee's own scope — rather than from levelDiff, which is
	// relative to the *calling* site and only equals this when the
	// caller and callee share a declaring scope — is what makes a call
	// into a procedure nested two or more levels below the caller build
	// a display of the right length. The copied prefix is still correct
	// by induction: the caller's level is always >= the callee's
	// declaring level (you can only call a procedure from within its
	// own declaring scope or nested inside it), and every display is
	// built the same way, so the caller's first copyLen entries already
	// equal what was active when the callee's declaring scope itself
	// was entered.
	copyLen := int32(v.sym.Level(calleeScope))

	caller := *v.top()
	newBase := int32(len(v.stack))

	v.push(caller.base)           // dynamic link
	v.push(returnPC)               // return address
	v.push(newBase + slotBase + n) // static link
	v.push(n)
	for i := int32(0); i < n; i++ {
		v.push(0)
	}
	for i, arg := range v.staging {
		if int32(i) < n {
			v.stack[newBase+slotBase+int32(i)] = arg
		}
	}
	v.staging = v.staging[:0]

	callerDispStart := v.stack[caller.base+offStaticLink]
	for i := int32(0); i < copyLen; i++ {
		v.push(v.stack[callerDispStart+i])
	}
	v.push(newBase) // this frame's own entry in its own display

	v.frames = append(v.frames, frame{base: newBase, ra: returnPC, lcal: copyLen})
	return nil
}

// opr dispatches an OPR sub-operator. halted reports whether execution
// just hit the program's own halt (OPR 0 0 with no active call); on a
// procedure return it writes the resume address into *pc.
func (v *VM) opr(k, execPC int32, pc *int32) (halted bool, err error) {
	switch k {
	case pcode.OprReturn:
		if len(v.frames) == 1 {
			return true, nil
		}
		cur := v.frames[len(v.frames)-1]
		v.frames = v.frames[:len(v.frames)-1]
		v.stack = v.stack[:cur.base]
		*pc = cur.ra
	case pcode.OprNeg:
		v.push(-v.pop())
	case pcode.OprAdd:
		b, a := v.pop(), v.pop()
		v.push(a + b)
	case pcode.OprSub:
		b, a := v.pop(), v.pop()
		v.push(a - b)
	case pcode.OprMul:
		b, a := v.pop(), v.pop()
		v.push(a * b)
	case pcode.OprDiv:
		b, a := v.pop(), v.pop()
		if b == 0 {
			return false, pl0err.AtPC(int(execPC), "division by zero")
		}
		v.push(a / b)
	case pcode.OprOdd:
		v.push(v.pop() % 2)
	default:
		if k >= 7 && k <= 12 {
			b, a := v.pop(), v.pop()
			v.push(boolInt(compare(a, b, k)))
			return false, nil
		}
		return false, pl0err.AtPC(int(execPC), "unknown OPR sub-operator %d", k)
	}
	return false, nil
}

func compare(a, b, sel int32) bool {
	switch sel {
	case 7:
		return a == b
	case 8:
		return a != b
	case 9:
		return a < b
	case 10:
		return a <= b
	case 11:
		return a > b
	case 12:
		return a >= b
	}
	return false
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (v *VM) flush(output []int32) {
	for _, x := range output {
		fmt.Fprintln(v.stdout, x)
	}
}

func (v *VM) readInt(execPC int32) (int32, error) {
	for {
		tok, err := v.readToken(execPC)
		if err != nil {
			return 0, err
		}
		if tok == "" {
			continue
		}
		n, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return 0, pl0err.AtPC(int(execPC), "malformed integer %q on standard input", tok)
		}
		return int32(n), nil
	}
}

func (v *VM) readToken(execPC int32) (string, error) {
	var buf []byte
	for {
		b, err := v.stdin.ReadByte()
		if err != nil {
			if err == io.EOF {
				if len(buf) > 0 {
					return string(buf), nil
				}
				return "", pl0err.AtPC(int(execPC), "end of input while reading an integer")
			}
			return "", err
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			if len(buf) > 0 {
				return string(buf), nil
			}
			continue
		}
		buf = append(buf, b)
	}
}
