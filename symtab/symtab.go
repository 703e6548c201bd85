// Package symtab implements the nested-scope symbol table described
// in spec.md §3.2-§3.3 and §4.B.
//
// Scope layers are grounded on original_source/SymbolTable.h's
// SymLayer/SymbolTable, but per spec.md §9's "Scope tree ownership"
// design note, layers live in a flat arena keyed by an integer
// ScopeID instead of behind raw/nullable pointers; a Proc symbol's
// InnerScope field is a ScopeID, and a scope's outer link is an
// (ScopeID, bool) pair. This removes the lifetime questions the
// original design has and makes the tree trivially inspectable from
// tests.
//
// Symbols within one scope are linked head-first, the way
// orb.Base.NewObj links orb.Object, and the way SymLayer::insertSymbol
// prepends to its symbol list.
package symtab

import (
	"fmt"
	"io"

	"github.com/go-pl0/pl0c/pl0err"
	"github.com/go-pl0/pl0c/token"
)

// Kind is the tag of a Symbol variant (spec.md §3.2).
type Kind int

const (
	KindConst Kind = iota
	KindVar
	KindParam
	KindProc
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindVar:
		return "var"
	case KindParam:
		return "param"
	case KindProc:
		return "proc"
	default:
		return "?"
	}
}

// ScopeID identifies a scope layer within a Table's flat arena.
type ScopeID int

// NoScope is the zero value of ScopeID used where "no inner scope"
// needs to be distinguishable from scope 0 (the root). Scope 0 is
// always the root, so NoScope is -1.
const NoScope ScopeID = -1

// Symbol is one entry in a scope: a name bound to one of the four
// kinds spec.md §3.2 names. Only the fields relevant to Kind are
// meaningful; this mirrors the C++ union in
// original_source/SymbolTable.h's Symbol::Attr, expressed as an
// ordinary Go struct rather than reproducing the union (Go has no
// tagged-union literal syntax worth fighting for here).
type Symbol struct {
	Name          string
	Kind          Kind
	DefiningLevel int

	Value        int32   // Const
	Offset       int32   // Var, Param
	ParamCount   int     // Proc
	EntryAddress int32   // Proc; -1 until back-patched
	InnerScope   ScopeID // Proc

	next *Symbol // intrusive list within the owning scope, head-first
}

// scope is one lexical layer (spec.md §3.3).
type scope struct {
	id         ScopeID
	level      int
	outer      ScopeID
	hasOuter   bool
	procName   string // "program" for the root
	head       *Symbol
	varOffset  int32
	paramCount int32
}

func (s *scope) find(name string) *Symbol {
	for sym := s.head; sym != nil; sym = sym.next {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

// Table owns every scope layer allocated during one compiler run.
// Layers are never destroyed before the run ends; the interpreter
// needs them to size activation records at call time (spec.md §3.3
// "Lifecycle").
type Table struct {
	scopes  []*scope
	current ScopeID
	line    int
}

// New builds a Table with just the root (global, level 0) scope,
// named "program" per spec.md §4.D's _prog action (the caller
// supplies the real program identifier via SetProgramName once it is
// known).
func New() *Table {
	t := &Table{line: 1}
	root := &scope{id: 0, level: 0, procName: "program"}
	t.scopes = append(t.scopes, root)
	t.current = 0
	return t
}

// SetLine records the row of the token currently being consumed by
// the parser, so that semantic errors raised from deep inside Table
// can report a source row without every call threading it through
// (spec.md §9's equivalent of original_source's
// SymbolTable::current_line_/incLine()).
func (t *Table) SetLine(row int) { t.line = row }

// Line returns the most recently recorded source row.
func (t *Table) Line() int { return t.line }

func (t *Table) scopeAt(id ScopeID) *scope { return t.scopes[id] }

func (t *Table) currentScope() *scope { return t.scopeAt(t.current) }

// SetProgramName renames the root scope's owning procedure name to
// the program identifier, called by the parser's _prog action.
func (t *Table) SetProgramName(name string) {
	t.scopeAt(0).procName = name
}

// CurrentScope returns the ScopeID of the scope currently being
// populated.
func (t *Table) CurrentScope() ScopeID { return t.current }

// Level returns the nesting level of scope id.
func (t *Table) Level(id ScopeID) int { return t.scopeAt(id).level }

func dupErr(name string, line int) *pl0err.Error {
	return pl0err.AtPos(pl0err.Semantic, token.Pos{Row: line}, "duplicate definition of %q", name)
}

// InsertConst binds name to a constant value in the current scope.
func (t *Table) InsertConst(name string, value int32) error {
	s := t.currentScope()
	if s.find(name) != nil {
		return dupErr(name, t.line)
	}
	sym := &Symbol{Name: name, Kind: KindConst, DefiningLevel: s.level, Value: value, next: s.head}
	s.head = sym
	return nil
}

// InsertVar binds name to a fresh local variable slot in the current
// scope; its offset is assigned densely above any params already
// inserted (spec.md §3.2 invariant: "Params come first").
func (t *Table) InsertVar(name string) error {
	s := t.currentScope()
	if s.find(name) != nil {
		return dupErr(name, t.line)
	}
	off := s.varOffset
	s.varOffset++
	sym := &Symbol{Name: name, Kind: KindVar, DefiningLevel: s.level, Offset: off, next: s.head}
	s.head = sym
	return nil
}

// InsertParam binds name to a parameter slot. Both the param counter
// and the var-offset counter advance, so that Vars inserted afterward
// in the same scope start past the last param's offset (spec.md §4.B).
func (t *Table) InsertParam(name string) error {
	s := t.currentScope()
	if s.find(name) != nil {
		return dupErr(name, t.line)
	}
	off := s.paramCount
	s.paramCount++
	s.varOffset++
	sym := &Symbol{Name: name, Kind: KindParam, DefiningLevel: s.level, Offset: off, next: s.head}
	s.head = sym
	return nil
}

// InsertProc binds name to a procedure with paramCount formal
// parameters; its entry address is unknown (-1) until the generator
// back-patches it once the procedure body starts emitting code.
// Returns the new Symbol so the caller can fill InnerScope once
// EnterProcLayer allocates the child scope.
func (t *Table) InsertProc(name string, paramCount int) (*Symbol, error) {
	s := t.currentScope()
	if s.find(name) != nil {
		return nil, dupErr(name, t.line)
	}
	sym := &Symbol{
		Name: name, Kind: KindProc, DefiningLevel: s.level,
		ParamCount: paramCount, EntryAddress: -1, InnerScope: NoScope,
		next: s.head,
	}
	s.head = sym
	return sym, nil
}

// EnterProcLayer allocates a new child scope one level deeper than
// the current scope, makes it current, and returns its ScopeID. The
// caller is responsible for recording this ScopeID on the owning Proc
// symbol's InnerScope field.
func (t *Table) EnterProcLayer(procName string) ScopeID {
	parent := t.current
	id := ScopeID(len(t.scopes))
	t.scopes = append(t.scopes, &scope{
		id: id, level: t.scopeAt(parent).level + 1,
		outer: parent, hasOuter: true, procName: procName,
	})
	t.current = id
	return id
}

// ExitProcLayer returns to the enclosing scope. It is an error to call
// this at the root.
func (t *Table) ExitProcLayer() error {
	s := t.currentScope()
	if !s.hasOuter {
		return pl0err.AtPos(pl0err.Semantic, token.Pos{Row: t.line}, "cannot exit the root scope")
	}
	t.current = s.outer
	return nil
}

// FindGlobal searches the scope tree breadth-first from the root for
// name and returns the symbol plus the level difference between the
// use site (the current scope) and the symbol's defining scope.
//
// This is deliberately a BFS from the root rather than the classical
// innermost-first walk up the static chain (spec.md §4.B/§9/§8): when
// two scopes at different depths both define name, the outermost
// (lowest-level) match wins. The search covers only symbols already
// inserted: since the parser builds the table in one left-to-right
// pass, a procedure declared later in the same enclosing scope is not
// yet visible from an earlier sibling's body. This diverges
// from original_source/SymbolTable.h's findGlobal, which walks
// current-scope-then-outer; spec.md is explicit that BFS is the
// required, tested behavior here.
func (t *Table) FindGlobal(name string) (*Symbol, int, error) {
	useLevel := t.currentScope().level
	queue := []ScopeID{0}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		s := t.scopeAt(id)
		if sym := s.find(name); sym != nil {
			return sym, useLevel - sym.DefiningLevel, nil
		}
		for _, child := range t.childrenOf(id) {
			queue = append(queue, child)
		}
	}
	return nil, 0, pl0err.AtPos(pl0err.Semantic, token.Pos{Row: t.line}, "undefined identifier %q", name)
}

// childrenOf returns every scope whose outer link is id, in the order
// they were allocated (insertion order among siblings), reached only
// via a linear scan of the flat arena since individual scopes don't
// track their own children (spec.md §3.3: "Children are reached only
// by traversing the owning Proc symbol's inner_scope", which this BFS
// implements at the Table level instead, which is behaviorally
// equivalent and simpler to test).
func (t *Table) childrenOf(id ScopeID) []ScopeID {
	var kids []ScopeID
	for _, s := range t.scopes {
		if s.hasOuter && s.outer == id {
			kids = append(kids, s.id)
		}
	}
	return kids
}

// FindProcByEntry searches the whole scope tree for the Proc symbol
// whose EntryAddress equals addr, returning its InnerScope. Used by
// the interpreter at CAL to size and lay out the callee's activation
// record (spec.md §4.B).
func (t *Table) FindProcByEntry(addr int32) (ScopeID, error) {
	for _, s := range t.scopes {
		for sym := s.head; sym != nil; sym = sym.next {
			if sym.Kind == KindProc && sym.EntryAddress == addr {
				return sym.InnerScope, nil
			}
		}
	}
	return NoScope, pl0err.AtPC(0, "no procedure with entry address %d", addr)
}

// VarOffset returns the number of param+var slots allocated so far in
// scope id — the local-area size the interpreter needs at CAL/init
// time (spec.md §3.5).
func (t *Table) VarOffset(id ScopeID) int32 { return t.scopeAt(id).varOffset }

// RootScope returns the ScopeID of the program's top-level scope.
func (t *Table) RootScope() ScopeID { return 0 }

// Dump writes a human-readable listing of every scope, root first,
// grounded on original_source/SymbolTable.h's printTable/printLayer.
// Debugging aid only; no parse or interpret path depends on it.
func (t *Table) Dump(w io.Writer) {
	fmt.Fprintf(w, "symbol table (%d scopes)\n", len(t.scopes))
	for _, s := range t.scopes {
		fmt.Fprintf(w, "  level %d (%s):\n", s.level, s.procName)
		if s.head == nil {
			fmt.Fprintln(w, "    (empty)")
			continue
		}
		// Walk head-to-tail; since insertion is head-first this
		// prints symbols in reverse declaration order, matching
		// SymLayer::printLayer's own traversal order.
		for sym := s.head; sym != nil; sym = sym.next {
			switch sym.Kind {
			case KindConst:
				fmt.Fprintf(w, "    %s: const = %d\n", sym.Name, sym.Value)
			case KindVar:
				fmt.Fprintf(w, "    %s: var @%d\n", sym.Name, sym.Offset)
			case KindParam:
				fmt.Fprintf(w, "    %s: param @%d\n", sym.Name, sym.Offset)
			case KindProc:
				fmt.Fprintf(w, "    %s: proc/%d entry=%d\n", sym.Name, sym.ParamCount, sym.EntryAddress)
			}
		}
	}
}
