// Package statistics aggregates simulated round results.
package statistics

import (
	"fmt"
	"math"
	"slices"
)

const (
	// MinBucket and MaxBucket bound the true-count buckets; counts beyond
	// them fold into the edge buckets.
	MinBucket = -5
	MaxBucket = 5
)

// RoundResult is the outcome of one round for the whole table
type RoundResult struct {
	Net       float64 // Net result in base bets
	TrueCount float64 // True count before the deal
	Hands     int     // Hands settled, splits included
	Wins      int
	Losses    int
	Pushes    int
	Blackjack int
}

// BucketStats tracks rounds dealt at one true count
type BucketStats struct {
	Rounds int
	Sum    float64
}

// Mean returns the average net result of the bucket
func (b BucketStats) Mean() float64 {
	if b.Rounds == 0 {
		return 0
	}
	return b.Sum / float64(b.Rounds)
}

// Statistics tracks simulation results
type Statistics struct {
	Rounds int
	Sum    float64
	SumSq  float64   // Sum of squares for variance calculation
	Values []float64 // Every result, for median and percentiles

	Hands      int
	Wins       int
	Losses     int
	Pushes     int
	Blackjacks int

	Buckets [MaxBucket - MinBucket + 1]BucketStats
}

// Bucket maps a true count to its bucket index
func Bucket(trueCount float64) int {
	b := int(math.Floor(trueCount))
	return min(max(b, MinBucket), MaxBucket) - MinBucket
}

// Add incorporates a round result
func (s *Statistics) Add(r RoundResult) {
	s.Rounds++
	s.Sum += r.Net
	s.SumSq += r.Net * r.Net
	s.Values = append(s.Values, r.Net)

	s.Hands += r.Hands
	s.Wins += r.Wins
	s.Losses += r.Losses
	s.Pushes += r.Pushes
	s.Blackjacks += r.Blackjack

	b := &s.Buckets[Bucket(r.TrueCount)]
	b.Rounds++
	b.Sum += r.Net
}

// Merge folds other into s
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.Sum += other.Sum
	s.SumSq += other.SumSq
	s.Values = append(s.Values, other.Values...)
	s.Hands += other.Hands
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Blackjacks += other.Blackjacks
	for i := range s.Buckets {
		s.Buckets[i].Rounds += other.Buckets[i].Rounds
		s.Buckets[i].Sum += other.Buckets[i].Sum
	}
}

// Mean returns the average net result per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.Sum / float64(s.Rounds)
}

// Variance returns the sample variance of the round results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumSq - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median round result
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the interpolated result at p in [0, 1]
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Values)
	slices.Sort(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks the accounting is consistent
func (s *Statistics) Validate() error {
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values length (%d) does not match rounds (%d)", len(s.Values), s.Rounds)
	}
	if outcomes := s.Wins + s.Losses + s.Pushes; outcomes != s.Hands {
		return fmt.Errorf("outcomes (%d) do not match hands (%d)", outcomes, s.Hands)
	}

	rounds := 0
	sum := 0.0
	for _, b := range s.Buckets {
		rounds += b.Rounds
		sum += b.Sum
	}
	if rounds != s.Rounds {
		return fmt.Errorf("bucket rounds (%d) do not match rounds (%d)", rounds, s.Rounds)
	}
	if math.Abs(sum-s.Sum) > 1e-6 {
		return fmt.Errorf("bucket sum %.6f does not match total %.6f", sum, s.Sum)
	}
	return nil
}
