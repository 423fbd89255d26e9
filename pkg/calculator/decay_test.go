package calculator

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDecay_EndToEndScenario(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want []int
	}{
		{name: "50%", rate: 0.5, want: []int{100, 50, 25, 13, 6, 3}},
		{name: "70%", rate: 0.7, want: []int{100, 70, 49, 34, 24, 17}},
		{name: "90%", rate: 0.9, want: []int{100, 90, 81, 73, 66, 59}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDecay(tt.rate, 5, DefaultCohortSize).Values()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("decay mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeDecay_ShapeAndMonotonicity(t *testing.T) {
	for _, rate := range []float64{0.01, 0.25, 0.5, 0.63, 0.8, 0.99} {
		for h := 0; h <= 10; h++ {
			series := ComputeDecay(rate, h, DefaultCohortSize)
			require.Len(t, series, h+1, "rate=%v horizon=%d", rate, h)
			assert.Equal(t, 100, series[0].Remaining)
			for i := range series {
				assert.Equal(t, i, series[i].Period)
				assert.Equal(t, int(math.Round(100*math.Pow(rate, float64(i)))), series[i].Remaining)
				if i > 0 {
					assert.LessOrEqual(t, series[i].Remaining, series[i-1].Remaining)
				}
			}
		}
	}
}

func TestComputeDecay_FullRetentionIsConstant(t *testing.T) {
	got := ComputeDecay(1, 7, DefaultCohortSize).Values()
	assert.Equal(t, []int{100, 100, 100, 100, 100, 100, 100, 100}, got)
}

func TestComputeDecay_ZeroRetention(t *testing.T) {
	got := ComputeDecay(0, 4, DefaultCohortSize).Values()
	assert.Equal(t, []int{100, 0, 0, 0, 0}, got)
}

func TestComputeDecay_HalfRoundsUp(t *testing.T) {
	// 100*0.5^3 = 12.5 ; 5*0.5 = 2.5 ; 1000*0.5^4 = 62.5
	assert.Equal(t, 13, ComputeDecay(0.5, 3, 100)[3].Remaining)
	assert.Equal(t, 3, ComputeDecay(0.5, 1, 5)[1].Remaining)
	assert.Equal(t, 63, ComputeDecay(0.5, 4, 1000)[4].Remaining)
}

func TestComputeDecay_RoundsEachPeriodIndependently(t *testing.T) {
	// Chaîner les valeurs arrondies donnerait 100, 50, 25, 13, 7, 4.
	got := ComputeDecay(0.5, 5, 100).Values()
	assert.Equal(t, 6, got[4])
	assert.Equal(t, 3, got[5])
}

func TestComputeDecay_HorizonEdges(t *testing.T) {
	assert.Equal(t, []int{100}, ComputeDecay(0.7, 0, 100).Values())
	assert.Empty(t, ComputeDecay(0.7, -1, 100))
}

func TestComputeDecay_CustomInitialSize(t *testing.T) {
	got := ComputeDecay(0.8, 3, 1000).Values()
	assert.Equal(t, []int{1000, 800, 640, 512}, got)
}
