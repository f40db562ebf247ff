package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cand(score float64) Candidate { return Candidate{Score: score} }

func TestRankOrdersDescending(t *testing.T) {
	in := []Candidate{cand(50), cand(90), cand(10), cand(90)}
	out := Rank(in, 10)
	require.Len(t, out, 4)
	for i := 1; i < len(out); i++ {
		assert.LessOrEqualf(t, out[i].Score, out[i-1].Score, "not sorted descending: %+v", out)
	}
}

func TestRankStableTieBreak(t *testing.T) {
	a := Candidate{CPEName: "a", Score: 80}
	b := Candidate{CPEName: "b", Score: 80}
	c := Candidate{CPEName: "c", Score: 90}
	out := Rank([]Candidate{a, b, c}, 10)
	require.Len(t, out, 3)
	assert.Equal(t, "c", out[0].CPEName)
	assert.Equal(t, "a", out[1].CPEName)
	assert.Equal(t, "b", out[2].CPEName)
}

func TestRankTruncatesToTopN(t *testing.T) {
	in := []Candidate{cand(1), cand(2), cand(3), cand(4), cand(5)}
	out := Rank(in, 2)
	assert.Len(t, out, 2)
}

func TestRankTopNExceedsLength(t *testing.T) {
	in := []Candidate{cand(1), cand(2)}
	out := Rank(in, 20)
	assert.Len(t, out, 2)
}

func TestRankDefaultsWhenTopNNonPositive(t *testing.T) {
	in := make([]Candidate, 8)
	for i := range in {
		in[i] = cand(float64(i))
	}
	out := Rank(in, 0)
	assert.Len(t, out, DefaultTopN)
}

func TestRankClampsAboveHardCap(t *testing.T) {
	in := make([]Candidate, 30)
	for i := range in {
		in[i] = cand(float64(i))
	}
	out := Rank(in, 1000)
	assert.Len(t, out, MaxTopN)
}

func TestRankEmptyInput(t *testing.T) {
	out := Rank(nil, 5)
	assert.Empty(t, out)
}
