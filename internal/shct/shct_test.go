package shct_test

import (
	"testing"

	"github.com/llcsim/hawkeye/internal/shct"
	"github.com/stretchr/testify/require"
)

func Test_Table_SaturatesAtCeiling_AfterThirtyTwoIncrements(t *testing.T) {
	t.Parallel()

	table := shct.New()
	const pc = 0xDEADBEEF

	for i := 0; i < 32; i++ {
		table.Increment(pc)
	}

	require.Equal(t, uint8(shct.MaxCounter), table.Value(pc))
	require.True(t, table.GetPrediction(pc))
}

func Test_Table_SaturatesAtFloor_AfterThirtyTwoDecrements(t *testing.T) {
	t.Parallel()

	table := shct.New()
	const pc = 0xC0FFEE

	for i := 0; i < 32; i++ {
		table.Decrement(pc)
	}

	require.Equal(t, uint8(0), table.Value(pc))
	require.False(t, table.GetPrediction(pc))
}

func Test_Table_MissingEntry_ReadsAsNeutral(t *testing.T) {
	t.Parallel()

	table := shct.New()
	require.Equal(t, uint8(shct.NeutralCounter), table.Value(0x1234))
	require.True(t, table.GetPrediction(0x1234))
}

func Test_Table_DemandAndPrefetchAreIndependent(t *testing.T) {
	t.Parallel()

	demand := shct.New()
	prefetch := shct.New()
	const pc = 0x42

	demand.Increment(pc)
	demand.Increment(pc)

	require.Equal(t, uint8(shct.NeutralCounter+2), demand.Value(pc))
	require.Equal(t, uint8(shct.NeutralCounter), prefetch.Value(pc))
}
