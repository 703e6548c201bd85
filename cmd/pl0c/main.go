// Command pl0c compiles a pre-tokenized PL/0-family program and runs it.
// It carries no domain logic of its own — wiring only, grounded on
// cmd/oc's flag/usage/fail shape from the teacher repo.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-pl0/pl0c/parser"
	"github.com/go-pl0/pl0c/token"
	"github.com/go-pl0/pl0c/vm"
)

func usage() {
	fail(`
Compiles and runs a pre-tokenized PL/0-family program.

The input is a token stream (one KIND(lexeme)(row,column) record per
line, as produced by an external lexer), not raw source text.

Usage:
    pl0c [-dump] [-trace file] tokenfile [traceoutfile]

Flags:
    -dump         print the symbol table and P-code listing to stderr
                  before running
    -trace file   write one line per executed instruction to file

Examples:
    pl0c prog.tok
    pl0c -dump prog.tok
    pl0c prog.tok trace.out`)
}

func main() {
	dump := flag.Bool("dump", false, "print symbol table and P-code listing before running")
	tracePath := flag.String("trace", "", "write the P-code execution trace to this file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}

	in, err := os.Open(flag.Arg(0))
	check(err)
	defer in.Close()

	p := parser.New(token.NewStream(in))
	check(p.Parse())

	if *dump {
		p.Symtab().Dump(os.Stderr)
		p.Code().Dump(os.Stderr)
	}

	m := vm.New(p.Code(), p.Symtab(), os.Stdin, os.Stdout)

	traceFile := *tracePath
	if traceFile == "" && flag.NArg() > 1 {
		traceFile = flag.Arg(1)
	}
	if traceFile != "" {
		tf, err := os.Create(traceFile)
		check(err)
		defer tf.Close()
		m.SetTrace(tf)
	}

	check(m.Run())
}

func check(err error) {
	if err != nil {
		fail(err)
	}
}

func fail(msg interface{}) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
