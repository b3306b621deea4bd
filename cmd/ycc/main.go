// Command ycc is the compiler's command-line entry point.
//
// It takes exactly one positional argument - the C source text to
// compile - and writes the resulting x86-64 AT&T assembly to
// standard output. Diagnostics go to standard error. Exit status is
// 0 on success, 1 on a usage error, non-zero on a compile-time
// diagnostic.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/skx/ycc/compiler"
	"github.com/skx/ycc/diag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) (code int) {
	fs := flag.NewFlagSet("ycc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	debug := fs.Bool("debug", false, "Prepend a debug banner to the generated assembly.")
	output := fs.String("o", "", "Write the generated assembly to this file instead of stdout.")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if len(fs.Args()) != 1 {
		fmt.Fprintf(stderr, "Usage: ycc 'int main(){ return 0; }'\n")
		return 1
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(stderr, recoveredMessage(r))
			code = 2
		}
	}()

	comp := compiler.New(fs.Args()[0])
	comp.SetDebug(*debug)

	asm, err := comp.Compile()
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}

	if *output == "" {
		fmt.Fprint(stdout, asm)
		return 0
	}

	if err := os.WriteFile(*output, []byte(asm), 0o644); err != nil {
		fmt.Fprintf(stderr, "writing %s: %s\n", *output, err)
		return 1
	}
	return 0
}

// recoveredMessage renders a panic value recovered at the process
// boundary. Panics carrying an error raised inside parser.Parse or
// codegen.Generate (including codegen's push/pop depth check) are
// recovered there and come back from Compile as errors; what reaches
// here is any panic that escapes those recovers.
func recoveredMessage(r interface{}) string {
	if ie, ok := r.(*diag.InternalError); ok {
		return ie.Error()
	}
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("internal compiler error: %v", r)
}
