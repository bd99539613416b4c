package trace_test

import (
	"strings"
	"testing"

	"github.com/llcsim/hawkeye/internal/replacement"
	"github.com/llcsim/hawkeye/internal/trace"
	"github.com/stretchr/testify/require"
)

func Test_Reader_SkipsCommentsAndBlankLines(t *testing.T) {
	t.Parallel()

	input := "# header comment\n\n0 400000 7fff0000 LOAD\n\n# another comment\n1 400010 7fff0040 writeback\n"
	r := trace.NewReader(strings.NewReader(input))

	first, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, first.CPU)
	require.Equal(t, uint64(0x400000), first.PC)
	require.Equal(t, uint64(0x7fff0000), first.FullAddr)
	require.Equal(t, replacement.Load, first.Type)

	second, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, replacement.Writeback, second.Type)

	_, ok, err = r.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func Test_Reader_RejectsMalformedLine(t *testing.T) {
	t.Parallel()

	r := trace.NewReader(strings.NewReader("0 400000 LOAD\n"))
	_, _, err := r.Next()
	require.Error(t, err)
}

func Test_Reader_RejectsUnknownType(t *testing.T) {
	t.Parallel()

	r := trace.NewReader(strings.NewReader("0 400000 7fff0000 BOGUS\n"))
	_, _, err := r.Next()
	require.Error(t, err)
}
