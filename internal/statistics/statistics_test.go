package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsEmpty(t *testing.T) {
	t.Parallel()

	var s Statistics
	assert.Zero(t, s.Mean())
	assert.Zero(t, s.Variance())
	assert.Zero(t, s.StdError())
	assert.Zero(t, s.Median())
	assert.Zero(t, s.Percentile(0.9))
}

func TestStatisticsAdd(t *testing.T) {
	t.Parallel()

	var s Statistics
	s.Add(RoundResult{Net: 1, TrueCount: 2.4, Hands: 1, Wins: 1})
	s.Add(RoundResult{Net: -1, TrueCount: -0.5, Hands: 1, Losses: 1})
	s.Add(RoundResult{Net: 1.5, TrueCount: 2.9, Hands: 1, Wins: 1, Blackjack: 1})
	s.Add(RoundResult{Net: -2, TrueCount: 0, Hands: 2, Losses: 2})

	require.NoError(t, s.Validate())
	assert.Equal(t, 4, s.Rounds)
	assert.Equal(t, 5, s.Hands)
	assert.Equal(t, 1, s.Blackjacks)
	assert.InDelta(t, -0.125, s.Mean(), 1e-9)
	assert.InDelta(t, 0, s.Median(), 1e-9)

	tc2 := s.Buckets[Bucket(2)]
	assert.Equal(t, 2, tc2.Rounds)
	assert.InDelta(t, 1.25, tc2.Mean(), 1e-9)
	assert.Equal(t, 1, s.Buckets[Bucket(-1)].Rounds, "-0.5 floors to -1")
}

func TestStatisticsVariance(t *testing.T) {
	t.Parallel()

	var s Statistics
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		s.Add(RoundResult{Net: v})
	}
	assert.InDelta(t, 5, s.Mean(), 1e-9)
	assert.InDelta(t, 32.0/7, s.Variance(), 1e-9)

	lo, hi := s.ConfidenceInterval95()
	assert.Less(t, lo, 5.0)
	assert.Greater(t, hi, 5.0)
	assert.InDelta(t, 9, s.Percentile(1), 1e-9)
	assert.InDelta(t, 2, s.Percentile(0), 1e-9)
}

func TestBucketClamps(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Bucket(-12))
	assert.Equal(t, MaxBucket-MinBucket, Bucket(8.5))
	assert.Equal(t, -MinBucket, Bucket(0.3))
}

func TestMerge(t *testing.T) {
	t.Parallel()

	var a, b Statistics
	a.Add(RoundResult{Net: 1, Hands: 1, Wins: 1})
	b.Add(RoundResult{Net: -1, TrueCount: 3, Hands: 1, Losses: 1})

	a.Merge(&b)
	require.NoError(t, a.Validate())
	assert.Equal(t, 2, a.Rounds)
	assert.Zero(t, a.Mean())
}

func TestValidateDetectsMismatch(t *testing.T) {
	t.Parallel()

	var s Statistics
	s.Add(RoundResult{Net: 1, Hands: 1, Wins: 1})
	s.Hands = 3
	assert.Error(t, s.Validate())
}
