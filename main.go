// fen compiles Fen source code into bytecode and runs it on a reference
// stack VM.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fen-lang/fen/compiler"
	"github.com/fen-lang/fen/lexer"
	"github.com/fen-lang/fen/repl"
	"github.com/fen-lang/fen/value"
	"github.com/fen-lang/fen/vm"
)

const version = "0.1.0"

// printUsage displays custom usage information.
func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, `Fen Compiler v%s

USAGE:
    %s [OPTIONS]

DESCRIPTION:
    Fen compiles source into bytecode and runs it on a reference stack VM.
    Without any flags, it starts an interactive REPL (Read-Eval-Print-Loop).

OPTIONS:
    -f, --file <path>          Compile and run a Fen source file
    -e, --eval <code>          Compile and run a single expression, printing its result
    -d, --debug                Print the compiled bytecode alongside the result
    -dump-bytecode             Print the compiled bytecode and exit without running it
    -strip-match-marker        Omit the "Starting match" debug breadcrumb match expressions emit
    -root <dir>                Resolve relative "open" paths against dir instead of the cwd
    -no-color                  Disable REPL styling
    -v, --version              Show version information
    -h, --help                 Show this help message

EXAMPLES:
    # Start interactive REPL
    %s

    # Run a script file
    %s -f script.fen

    # Evaluate an expression
    %s -e "def x = 1 in x + 2"

    # Inspect the bytecode a file compiles to, without running it
    %s -f script.fen -dump-bytecode
`, version, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	flag.Usage = printUsage

	fileFlag := flag.String("file", "", "Compile and run a Fen source file")
	evalFlag := flag.String("eval", "", "Compile and run a single expression")
	debugFlag := flag.Bool("debug", false, "Print the compiled bytecode alongside the result")
	versionFlag := flag.Bool("version", false, "Show version information")
	dumpBytecodeFlag := flag.Bool("dump-bytecode", false, "Print the compiled bytecode and exit without running it")
	stripMatchMarkerFlag := flag.Bool("strip-match-marker", false, `Omit the "Starting match" debug breadcrumb`)
	rootFlag := flag.String("root", "", `Resolve relative "open" paths against this directory`)
	noColorFlag := flag.Bool("no-color", false, "Disable REPL styling")

	flag.StringVar(fileFlag, "f", "", "Compile and run a Fen source file")
	flag.StringVar(evalFlag, "e", "", "Compile and run a single expression")
	flag.BoolVar(debugFlag, "d", false, "Print the compiled bytecode alongside the result")
	flag.BoolVar(versionFlag, "v", false, "Show version information")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("Fen Compiler v%s\n", version)
		return
	}

	compiler.StripMatchMarker = *stripMatchMarkerFlag

	if *rootFlag != "" {
		if err := os.Chdir(*rootFlag); err != nil {
			fmt.Printf("could not switch to -root %q: %s\n", *rootFlag, err)
			os.Exit(1)
		}
	}

	if *fileFlag != "" {
		runFile(*fileFlag, *debugFlag, *dumpBytecodeFlag)
		return
	}

	if *evalFlag != "" {
		runSource(*evalFlag, *debugFlag, *dumpBytecodeFlag)
		return
	}

	repl.Start(repl.Options{
		NoColor:      *noColorFlag,
		Debug:        *debugFlag,
		DumpBytecode: *dumpBytecodeFlag,
	})
}

// runFile reads and runs a Fen source file.
func runFile(filename string, debug, dumpOnly bool) {
	cleaned := filepath.Clean(filename)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		fmt.Printf("error getting absolute path: %s\n", err)
		os.Exit(1)
	}

	//nolint:gosec // filename comes from a trusted CLI flag, not untrusted input
	content, err := os.ReadFile(absolute)
	if err != nil {
		fmt.Printf("error reading file: %s\n", err)
		os.Exit(1)
	}

	runSource(string(content), debug, dumpOnly)
}

// runSource compiles src with the token-driven front-end and, unless
// dumpOnly is set, runs it on a fresh VM, printing the result.
func runSource(src string, debug, dumpOnly bool) {
	bc, err := compiler.CompileTokens(lexer.New(src))
	if err != nil {
		fmt.Printf("compilation error: %s\n", err)
		os.Exit(1)
	}

	if debug || dumpOnly {
		os.Stdout.Write(compiler.Disassemble(bc))
	}
	if dumpOnly {
		return
	}

	machine := vm.NewWithGlobals(bc, value.NewGlobalEnv())
	result, err := machine.Run()
	if err != nil {
		fmt.Printf("runtime error: %s\n", err)
		os.Exit(1)
	}

	fmt.Println(result.Inspect())
}
