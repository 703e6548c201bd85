package parser

import (
	"github.com/go-pl0/pl0c/pcode"
	"github.com/go-pl0/pl0c/pl0err"
	"github.com/go-pl0/pl0c/symtab"
	"github.com/go-pl0/pl0c/token"
)

// popName removes and returns the newest pending identifier. Names are
// a LIFO stack for the same reason the operator stacks are: in
// "x := y" or "call f(n)" the identifier a factor action consumes was
// pushed after the assignment target or callee name still waiting for
// its own action.
func (p *Parser) popName() string {
	n := len(p.pendingNames)
	v := p.pendingNames[n-1]
	p.pendingNames = p.pendingNames[:n-1]
	return v
}

func (p *Parser) drainNames() []string {
	names := p.pendingNames
	p.pendingNames = nil
	return names
}

func (p *Parser) popValue() int32 {
	v := p.pendingValues[0]
	p.pendingValues = p.pendingValues[1:]
	return parseInt(v)
}

// parseInt converts an INTEGER token's digit-string lexeme. The
// grammar never matches INTEGER with a leading sign (that's <sign_opt>
// matching a separate AOP token), so no sign handling is needed here.
func parseInt(s string) int32 {
	var n int32
	for _, c := range s {
		n = n*10 + int32(c-'0')
	}
	return n
}

func (p *Parser) popAop() string {
	n := len(p.pendingAop)
	v := p.pendingAop[n-1]
	p.pendingAop = p.pendingAop[:n-1]
	return v
}

func (p *Parser) popMop() string {
	n := len(p.pendingMop)
	v := p.pendingMop[n-1]
	p.pendingMop = p.pendingMop[:n-1]
	return v
}

func (p *Parser) popLop() int32 {
	n := len(p.pendingLop)
	v := p.pendingLop[n-1]
	p.pendingLop = p.pendingLop[:n-1]
	return v
}

// varSlotOffset turns a storage offset into the frame-internal address
// LOD/STO expect: +4 past the dynamic link, return address, static
// link and stored local-area-size cells every frame carries. spec.md
// §3.5's table and original_source/Pcode.h's Activation::getIdVal both
// place the first slot at offset 4, not the +3 §4.D's prose shorthand
// suggests. See DESIGN.md.
func varSlotOffset(off int32) int32 { return off + 4 }

func (p *Parser) actProg() error {
	name := p.popName()
	p.sym.SetProgramName(name)
	p.code.PushPendingJump()
	p.code.Emit(pcode.JMP, 0, 0)
	p.pendingEntrySym = append(p.pendingEntrySym, nil)
	return nil
}

func (p *Parser) actEndProg() error {
	p.code.Emit(pcode.OPR, 0, pcode.OprReturn)
	return nil
}

func (p *Parser) actConst() error {
	name := p.popName()
	val := p.popValue()
	if err := p.sym.InsertConst(name, val); err != nil {
		return err
	}
	return nil
}

func (p *Parser) actVar() error {
	for _, name := range p.drainNames() {
		if err := p.sym.InsertVar(name); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) actProc() error {
	names := p.drainNames()
	procName, params := names[0], names[1:]

	sym, err := p.sym.InsertProc(procName, len(params))
	if err != nil {
		return err
	}
	inner := p.sym.EnterProcLayer(procName)
	sym.InnerScope = inner

	for _, param := range params {
		if err := p.sym.InsertParam(param); err != nil {
			return err
		}
	}

	p.code.PushPendingJump()
	p.code.Emit(pcode.JMP, 0, 0)
	p.pendingEntrySym = append(p.pendingEntrySym, sym)
	return nil
}

func (p *Parser) actOutProc() error {
	p.code.Emit(pcode.OPR, 0, pcode.OprReturn)
	return p.sym.ExitProcLayer()
}

func (p *Parser) actBeginBody() error {
	entry := p.code.PC()
	p.code.PatchPendingJump(entry)

	n := len(p.pendingEntrySym)
	sym := p.pendingEntrySym[n-1]
	p.pendingEntrySym = p.pendingEntrySym[:n-1]
	if sym != nil {
		sym.EntryAddress = entry
	}
	return nil
}

func (p *Parser) actAssignment() error {
	name := p.popName()
	sym, diff, err := p.sym.FindGlobal(name)
	if err != nil {
		return err
	}
	if sym.Kind != symtab.KindVar && sym.Kind != symtab.KindParam {
		return pl0err.AtPos(pl0err.Semantic, token.Pos{Row: p.sym.Line()}, "cannot assign to %s %q", sym.Kind, name)
	}
	p.code.Emit(pcode.STO, int32(diff), varSlotOffset(sym.Offset))
	return nil
}

func (p *Parser) actIf() error {
	p.code.NewLabel("if_JPC", p.code.PC())
	p.code.Emit(pcode.JPC, 0, 0)
	return nil
}

func (p *Parser) actElseIf() error {
	p.code.NewLabel("else_JMP", p.code.PC())
	p.code.Emit(pcode.JMP, 0, 0)
	p.code.BackPatch("if_JPC", p.code.PC())
	return nil
}

func (p *Parser) actEndElse() error {
	p.code.BackPatch("else_JMP", p.code.PC())
	return nil
}

func (p *Parser) actWhile() error {
	p.code.NewLabel("while_JPC", p.code.PC())
	p.code.Emit(pcode.JPC, 0, 0)
	return nil
}

// actEndWhile implements the redesign spec.md §9 directs: the source
// back-patches the exit jump but never emits the unconditional jump
// back to the condition, so loops whose body runs more than once never
// re-test the condition. The condition's starting PC was captured in
// whileCondPC when the "while" keyword was matched, since by the time
// this action runs the condition's own code has already been emitted.
func (p *Parser) actEndWhile() error {
	n := len(p.whileCondPC)
	condPC := p.whileCondPC[n-1]
	p.whileCondPC = p.whileCondPC[:n-1]

	p.code.Emit(pcode.JMP, 0, condPC)
	p.code.BackPatch("while_JPC", p.code.PC())
	return nil
}

func (p *Parser) actCall() error {
	name := p.popName()
	sym, diff, err := p.sym.FindGlobal(name)
	if err != nil {
		return err
	}
	if sym.Kind != symtab.KindProc {
		return pl0err.AtPos(pl0err.Semantic, token.Pos{Row: p.sym.Line()}, "cannot call %s %q", sym.Kind, name)
	}
	if int(p.callArgCount) != sym.ParamCount {
		return pl0err.AtPos(pl0err.Semantic, token.Pos{Row: p.sym.Line()},
			"procedure %q takes %d argument(s), got %d", name, sym.ParamCount, p.callArgCount)
	}
	// Stage arguments in reverse index order: the evaluation stack's
	// top holds the last-evaluated argument, so the first STAGE
	// instruction executed must claim the highest index. This replaces
	// the source's "STO -1, i, count" encoding per spec.md §9: STAGE
	// only needs an argument index, not a target address, since the
	// callee's frame doesn't exist yet.
	for i := p.callArgCount - 1; i >= 0; i-- {
		p.code.Emit(pcode.STAGE, 0, i)
	}
	p.code.Emit(pcode.CAL, int32(diff), sym.EntryAddress)
	p.callArgCount = 0
	return nil
}

func (p *Parser) actRead() error {
	for _, name := range p.drainNames() {
		sym, diff, err := p.sym.FindGlobal(name)
		if err != nil {
			return err
		}
		if sym.Kind != symtab.KindVar && sym.Kind != symtab.KindParam {
			return pl0err.AtPos(pl0err.Semantic, token.Pos{Row: p.sym.Line()}, "cannot read into %s %q", sym.Kind, name)
		}
		p.code.Emit(pcode.RED, 0, 0)
		p.code.Emit(pcode.STO, int32(diff), varSlotOffset(sym.Offset))
	}
	return nil
}

// actWrite emits one WRT per argument, unmodified from spec.md §4.D.
// Since WRT pops whatever is on top of the data stack and the stack's
// top after evaluating e1, e2, …, en holds en, multi-argument write
// prints its arguments in reverse of source order. spec.md flags the
// while-loop bug and the STO-staging encoding as defects to fix but
// does not flag this one, so it is preserved as specified.
func (p *Parser) actWrite() error {
	for i := int32(0); i < p.callArgCount; i++ {
		p.code.Emit(pcode.WRT, 0, 0)
	}
	p.callArgCount = 0
	return nil
}

func (p *Parser) actExpExplist() error {
	p.callArgCount++
	return nil
}

func (p *Parser) actOddlexp() error {
	p.code.Emit(pcode.OPR, 0, pcode.OprOdd)
	return nil
}

func (p *Parser) actCmplexp() error {
	p.code.Emit(pcode.OPR, 0, p.popLop())
	return nil
}

func (p *Parser) actAopExp() error {
	switch p.popAop() {
	case "+":
		p.code.Emit(pcode.OPR, 0, pcode.OprAdd)
	case "-":
		p.code.Emit(pcode.OPR, 0, pcode.OprSub)
	}
	return nil
}

func (p *Parser) actMopTerm() error {
	switch p.popMop() {
	case "*":
		p.code.Emit(pcode.OPR, 0, pcode.OprMul)
	case "/":
		p.code.Emit(pcode.OPR, 0, pcode.OprDiv)
	}
	return nil
}

func (p *Parser) actIntegerFactor() error {
	p.code.Emit(pcode.LIT, 0, p.popValue())
	return nil
}

func (p *Parser) actIdFactor() error {
	name := p.popName()
	sym, diff, err := p.sym.FindGlobal(name)
	if err != nil {
		return err
	}
	switch sym.Kind {
	case symtab.KindConst:
		p.code.Emit(pcode.LIT, 0, sym.Value)
	case symtab.KindVar, symtab.KindParam:
		p.code.Emit(pcode.LOD, int32(diff), varSlotOffset(sym.Offset))
	default:
		return pl0err.AtPos(pl0err.Semantic, token.Pos{Row: p.sym.Line()}, "cannot use %s %q as a value", sym.Kind, name)
	}
	return nil
}
