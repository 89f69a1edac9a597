// cmd/cminus/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"golang.org/x/crypto/blake2b"

	"cminus/internal/ast"
	"cminus/internal/astopt"
	"cminus/internal/cparser"
	"cminus/internal/diag"
	"cminus/internal/flowgraph"
	"cminus/internal/icode"
	"cminus/internal/icopt"
	"cminus/internal/syntaxbuilder"
	"cminus/internal/x64"
)

const version = "0.1.0"

var commandAliases = map[string]string{
	"s":  "syntax",
	"ic": "icgen",
	"c":  "cc",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		showVersion()
	case "syntax":
		if err := syntaxCommand(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "icgen":
		if err := icgenCommand(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "cc":
		if err := ccCommand(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	default:
		suggestCommand(cmd)
	}
}

// build runs the lexer/parser/Syntax Builder pipeline on source,
// returning the resulting Result and the source's fingerprint.
func build(source string) (syntaxbuilder.Result, [32]byte) {
	sum := blake2b.Sum256([]byte(source))
	res, err := cparser.Parse(source)
	if err != nil {
		return res, sum
	}
	return res, sum
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	return string(data), nil
}

func reportDiagnostics(res syntaxbuilder.Result) bool {
	if res.Diags.Empty() {
		return false
	}
	colorize := isatty.IsTerminal(os.Stderr.Fd())
	for _, d := range res.Diags.All() {
		line := d.Error()
		if colorize && d.Severity == diag.SeverityError {
			line = "\033[31m" + line + "\033[0m"
		} else if colorize {
			line = "\033[33m" + line + "\033[0m"
		}
		fmt.Fprintln(os.Stderr, line)
	}
	return res.Diags.HasErrors()
}

// syntaxCommand implements `cminus syntax [-s] <file.cm>`: parses the
// file and, with -s, prints the resulting SyntaxTree.
func syntaxCommand(args []string) error {
	printTree := false
	var file string
	for _, a := range args {
		if a == "-s" {
			printTree = true
			continue
		}
		file = a
	}
	if file == "" {
		return fmt.Errorf("usage: cminus syntax [-s] <file.cm>")
	}
	source, err := readFile(file)
	if err != nil {
		return err
	}
	res, _ := build(source)
	if reportDiagnostics(res) {
		os.Exit(1)
	}
	if printTree {
		fmt.Println(ast.Print(res.Tree, res.Table))
	}
	return nil
}

// icgenCommand implements `cminus icgen [-a] [-g FILE] <file.cm>`: runs
// the full pipeline through constant folding, IC generation, and
// reachability-based dead-code elimination, printing the IC (and,
// with -a, the folded AST) and optionally rendering the flow graph as
// a PNG at FILE (Graphviz DOT source at FILE.dot when no `dot` binary
// is on $PATH).
func icgenCommand(args []string) error {
	printAST := false
	var graphOut, file string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-a":
			printAST = true
		case "-g":
			if i+1 >= len(args) {
				return fmt.Errorf("-g requires a FILE argument")
			}
			i++
			graphOut = args[i]
		default:
			file = args[i]
		}
	}
	if file == "" {
		return fmt.Errorf("usage: cminus icgen [-a] [-g FILE] <file.cm>")
	}
	source, err := readFile(file)
	if err != nil {
		return err
	}

	start := time.Now()
	res, _ := build(source)
	if reportDiagnostics(res) {
		os.Exit(1)
	}
	astopt.FoldConstants(res.Tree, res.Table)
	if printAST {
		fmt.Println(ast.Print(res.Tree, res.Table))
	}

	ic, err := icode.Generate(res.Tree, res.Table)
	if err != nil {
		return err
	}
	g := flowgraph.Build(ic)
	ic, g = icopt.EliminateDeadCode(ic, g)
	fmt.Println(ic.String())

	if graphOut != "" {
		dot := flowgraph.DOT(g, res.Table)
		rendered, err := flowgraph.RenderPNG(dot, graphOut)
		if err != nil {
			return fmt.Errorf("cannot write flow graph: %w", err)
		}
		if !rendered {
			log.Printf("dot not found on $PATH; wrote Graphviz source to %s.dot", graphOut)
		}
	}

	elapsed := time.Since(start)
	fmt.Fprintf(os.Stderr, "icgen: %s lines in %s\n", humanize.Comma(int64(ic.Len())), elapsed.Round(time.Microsecond))
	return nil
}

// ccCommand implements `cminus cc [-o OUT] [-O 0|1|2|3] <file.cm>`:
// runs the pipeline end to end and emits x86-64 text assembly. -O
// controls which IC-level passes run: 0 disables both folding and
// dead-code elimination, 1 enables constant folding, 2 adds dead-code
// elimination, 3 is currently an alias for 2 (no further passes exist
// yet — see §1's Non-goals on deep optimization).
func ccCommand(args []string) error {
	out := "a.s"
	level := 1
	var file string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o":
			if i+1 >= len(args) {
				return fmt.Errorf("-o requires an OUT argument")
			}
			i++
			out = args[i]
		case "-O":
			if i+1 >= len(args) {
				return fmt.Errorf("-O requires a level argument")
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil || n < 0 || n > 3 {
				return fmt.Errorf("-O expects 0, 1, 2, or 3")
			}
			level = n
		default:
			file = args[i]
		}
	}
	if file == "" {
		return fmt.Errorf("usage: cminus cc [-o OUT] [-O 0|1|2|3] <file.cm>")
	}
	source, err := readFile(file)
	if err != nil {
		return err
	}

	buildID := uuid.New()
	res, fingerprint := build(source)
	if reportDiagnostics(res) {
		os.Exit(1)
	}

	if level >= 1 {
		astopt.FoldConstants(res.Tree, res.Table)
	}
	ic, err := icode.Generate(res.Tree, res.Table)
	if err != nil {
		return err
	}
	g := flowgraph.Build(ic)
	if level >= 2 {
		ic, g = icopt.EliminateDeadCode(ic, g)
	}

	asm := x64.Emit(ic, res.Table, g)
	if err := os.WriteFile(out, []byte(asm), 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", out, err)
	}

	fmt.Fprintf(os.Stderr, "cc: build %s, source %x, %s bytes written to %s\n",
		buildID, fingerprint[:8], humanize.Bytes(uint64(len(asm))), out)
	return nil
}

func showUsage() {
	fmt.Println("cminus - a C-minus compiler frontend")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cminus syntax [-s] <file.cm>           Parse and typecheck       (alias: s)")
	fmt.Println("  cminus icgen [-a] [-g FILE] <file.cm>  Generate intermediate code (alias: ic)")
	fmt.Println("  cminus cc [-o OUT] [-O LEVEL] <file.cm> Compile to assembly       (alias: c)")
	fmt.Println()
	fmt.Println("Help:")
	fmt.Println("  cminus --help                          Show this message")
	fmt.Println("  cminus --version                       Show version information")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  cminus syntax -s prog.cm")
	fmt.Println("  cminus icgen -g prog.png prog.cm")
	fmt.Println("  cminus cc -O 2 -o prog.s prog.cm")
}

func showVersion() {
	fmt.Printf("cminus %s\n", version)
}

func suggestCommand(cmd string) {
	commands := []string{"syntax", "icgen", "cc", "help", "version"}
	fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", cmd)
	var suggestions []string
	for _, c := range commands {
		if levenshtein(cmd, c) <= 2 {
			suggestions = append(suggestions, c)
		}
	}
	if len(suggestions) > 0 {
		fmt.Fprintf(os.Stderr, "\nDid you mean: %s?\n", strings.Join(suggestions, ", "))
	}
	fmt.Fprintln(os.Stderr, "\nRun 'cminus --help' to see all available commands")
	os.Exit(1)
}

func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := matrix[i-1][j] + 1
			ins := matrix[i][j-1] + 1
			sub := matrix[i-1][j-1] + cost
			best := del
			if ins < best {
				best = ins
			}
			if sub < best {
				best = sub
			}
			matrix[i][j] = best
		}
	}
	return matrix[len(a)][len(b)]
}
