package id

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixed(ms *int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(*ms) }
}

func TestNextIsMonotonic(t *testing.T) {
	ms := int64(1000)
	g := NewGenerator(fixed(&ms))

	a, b := g.Next(), g.Next()
	require.Negative(t, a.Compare(b))
	require.Less(t, a.String(), b.String())

	ms = 1001
	c := g.Next()
	require.Negative(t, b.Compare(c))
	require.Equal(t, int64(1001), c.Time().UnixMilli())
}

func TestNextSurvivesClockRegression(t *testing.T) {
	ms := int64(1000)
	g := NewGenerator(fixed(&ms))
	a := g.Next()

	ms = 900
	b := g.Next()
	require.Negative(t, a.Compare(b))
	require.Equal(t, int64(1000), b.Time().UnixMilli())
}

func TestSequenceOverflowBorrowsNextMillisecond(t *testing.T) {
	ms := int64(2000)
	g := NewGenerator(fixed(&ms))
	g.lastMs = 2000
	g.seq = math.MaxUint64

	next := g.Next()
	require.Equal(t, int64(2001), next.Time().UnixMilli())
	require.Equal(t, uint64(0), g.seq)
}

func TestParseRoundTrip(t *testing.T) {
	a := NewGenerator(nil).Next()
	b, err := Parse(a.String())
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.False(t, a.IsZero())
	require.True(t, Valid(NewString()))
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "abc", "zz" + strings.Repeat("0", 30), strings.Repeat("0", 34)} {
		_, err := Parse(s)
		require.ErrorIs(t, err, ErrInvalid, s)
		require.False(t, Valid(s))
	}
}
