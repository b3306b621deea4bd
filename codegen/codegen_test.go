package codegen

import (
	"bytes"
	"testing"

	"github.com/skx/ycc/lexer"
	"github.com/skx/ycc/parser"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	objs, err := parser.Parse(src, toks)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, src, objs))
	return buf.String()
}

func TestGenerateEmitsPrologueAndEpilogue(t *testing.T) {
	asm := generate(t, "int main(){ return 42; }")

	require.Contains(t, asm, ".globl main")
	require.Contains(t, asm, "main:")
	require.Contains(t, asm, "push %rbp")
	require.Contains(t, asm, "mov %rsp, %rbp")
	require.Contains(t, asm, "mov $42, %rax")
	require.Contains(t, asm, ".L.return.main:")
	require.Contains(t, asm, "mov %rbp, %rsp")
	require.Contains(t, asm, "pop %rbp")
	require.Contains(t, asm, "ret")
}

func TestGenerateAssignsDistinctNegativeOffsets(t *testing.T) {
	asm := generate(t, "int main(){ int a; int b; a=1; b=2; return a+b; }")

	// Two ints -> 16 bytes, already a multiple of 16.
	require.Contains(t, asm, "sub $16, %rsp")
	require.Contains(t, asm, "-8(%rbp)")
	require.Contains(t, asm, "-16(%rbp)")
}

func TestGenerateGlobalsGetADataSection(t *testing.T) {
	asm := generate(t, "int counter; int main(){ counter = 1; return counter; }")

	require.Contains(t, asm, ".data")
	require.Contains(t, asm, ".globl counter")
	require.Contains(t, asm, "counter:")
	require.Contains(t, asm, ".zero 8")
	require.Contains(t, asm, "lea counter(%rip), %rax")
}

func TestGenerateStringLiteralBecomesAnonymousGlobalWithBytes(t *testing.T) {
	asm := generate(t, `int main(){ char *s; s = "hi"; return 0; }`)

	require.Contains(t, asm, ".L..0:")
	// "h", "i", and the trailing NUL.
	require.Contains(t, asm, ".byte 104")
	require.Contains(t, asm, ".byte 105")
	require.Contains(t, asm, ".byte 0")
}

func TestGenerateFunctionCallPassesArgsInOrder(t *testing.T) {
	asm := generate(t, "int add(int a,int b){ return a+b; } int main(){ return add(1,2); }")

	require.Contains(t, asm, "call add")
	require.Contains(t, asm, "pop %rdi")
	require.Contains(t, asm, "pop %rsi")
	require.Contains(t, asm, "mov $0, %rax")
}

func TestGenerateIfElseUsesDistinctLabelsPerOccurrence(t *testing.T) {
	asm := generate(t, "int main(){ int x; x=1; if (x) { x=2; } else { x=3; } if (x) { x=4; } return x; }")

	require.Contains(t, asm, ".L.else.0:")
	require.Contains(t, asm, ".L.end.0:")
	require.Contains(t, asm, ".L.else.1:")
	require.Contains(t, asm, ".L.end.1:")
}

func TestGenerateForLoopLabelsAndJumps(t *testing.T) {
	asm := generate(t, "int main(){ int i; for(i=0;i<3;i=i+1) { } return i; }")

	require.Contains(t, asm, ".L.begin.0:")
	require.Contains(t, asm, "je .L.end.0")
	require.Contains(t, asm, "jmp .L.begin.0")
	require.Contains(t, asm, ".L.end.0:")
}

func TestGenerateCharLoadsSignExtendAndStoreByte(t *testing.T) {
	asm := generate(t, "int main(){ char c; c = 97; return c; }")

	require.Contains(t, asm, "mov %al, (%rdi)")
	require.Contains(t, asm, "movsbq (%rax), %rax")
}

func TestGenerateArrayIndexingLowersToScaledDeref(t *testing.T) {
	asm := generate(t, "int main(){ int a[3]; a[1] = 5; return a[1]; }")

	require.Contains(t, asm, "imul %rdi, %rax")
	require.Contains(t, asm, "mov $8, %rax") // sizeof(int) pushed as the scale operand
}
