package flowkit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind Kind
		want string
	}{
		{Once, "ONCE"},
		{While, "WHILE"},
		{Until, "UNTIL"},
		{If, "IF"},
		{Split, "SPLIT"},
		{Break, "BREAK"},
		{Continue, "CONTINUE"},
		{Kind(99), "UNKNOWN"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.kind.String())
	}
}

func TestKindRequiresPredicate(t *testing.T) {
	t.Parallel()

	require.False(t, Once.requiresPredicate())
	require.True(t, While.requiresPredicate())
	require.True(t, Until.requiresPredicate())
	require.True(t, If.requiresPredicate())
	require.True(t, Break.requiresPredicate())
	require.True(t, Continue.requiresPredicate())
	require.False(t, Split.requiresPredicate())
}

func TestKindIsLoop(t *testing.T) {
	t.Parallel()

	require.True(t, While.isLoop())
	require.True(t, Until.isLoop())
	require.False(t, If.isLoop())
	require.False(t, Split.isLoop())
}

func TestSettlementFulfilled(t *testing.T) {
	t.Parallel()

	require.True(t, Settlement{Status: StatusFulfilled}.Fulfilled())
	require.False(t, Settlement{Status: StatusRejected}.Fulfilled())
}
