package diag

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestSourceErrorRendersCaret(t *testing.T) {
	err := NewSourceError("3 + $", 4, "invalid token")

	got := err.Error()
	require.Contains(t, got, "3 + $")
	require.Contains(t, got, "invalid token")

	lines := splitLines(got)
	require.Len(t, lines, 2)
	require.Equal(t, "    ^ invalid token", lines[1])
}

func TestSourceErrorWrapIncludesCause(t *testing.T) {
	cause := errors.New("strconv: bad digit")
	err := TokenError("99999999999999999999", 0, "invalid integer literal").Wrap(cause)

	require.Contains(t, err.Error(), "strconv: bad digit")
	require.Equal(t, cause, err.Cause())
	require.True(t, pkgerrors.Cause(err) == cause)
}

func TestInternalError(t *testing.T) {
	err := NewInternalError("push/pop depth is %d, want 0", 3)
	require.Equal(t, "internal compiler error: push/pop depth is 3, want 0", err.Error())
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}
