package render

import (
	"bytes"
	"testing"

	"retention-ltv/pkg/calculator"
	"retention-ltv/pkg/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cohort(rate float64, horizon int) models.CohortResult {
	c := models.CohortResult{RetentionRate: rate, Series: calculator.ComputeDecay(rate, horizon, 100)}
	if l, err := calculator.ComputeLifespan(rate); err != nil {
		c.Infinite = true
	} else {
		c.Lifespan, c.LTV = l, l*100
	}
	return c
}

func TestCohortTable(t *testing.T) {
	out := CohortTable([]models.CohortResult{cohort(0.5, 5), cohort(0.9, 5)}, 5)

	assert.Contains(t, out, "Retention Rate: 0.5")
	assert.Contains(t, out, "Retention Rate: 0.9")
	for _, v := range []string{"100", "50", "25", "13", "90", "81", "73", "66", "59"} {
		assert.Contains(t, out, v)
	}
}

func TestLTVTable_ShowsInfinity(t *testing.T) {
	out := LTVTable([]models.CohortResult{cohort(0.5, 3), cohort(1, 3)})
	assert.Contains(t, out, "200.00")
	assert.Contains(t, out, "2.00")
	assert.Contains(t, out, Infinity)
}

func TestSweepTable(t *testing.T) {
	out := SweepTable(calculator.ComputeSweep([]float64{0.5, 0.9, 1}, 100))
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "1000.00")
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, Infinity)
}

func TestObservedTable(t *testing.T) {
	out := ObservedTable([]models.ObservedCohort{
		{MonthYear: "01/2020", Size: 4, Survivors: []int{4, 2, 1}, Rate: 0.5},
		{MonthYear: "02/2020", Size: 1, Survivors: []int{1}, Rate: 0},
	})
	assert.Contains(t, out, "01/2020")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "0.0%")
}

func TestReport(t *testing.T) {
	r := models.Report{
		Scenario: models.Scenario{Horizon: 2, RevenuePerCustomer: 100},
		Cohorts:  []models.CohortResult{cohort(0.5, 2)},
		Sweep:    calculator.ComputeSweep([]float64{0.5}, 100),
	}
	var buf bytes.Buffer
	require.NoError(t, Report(&buf, r))
	assert.Contains(t, buf.String(), "Customer Retention Over Years")
	assert.Contains(t, buf.String(), "Retention Rate vs LTV")
	assert.Contains(t, buf.String(), "100.00")
}

func TestMoneyAndLifespan(t *testing.T) {
	assert.Equal(t, "200.00", Money(200))
	assert.Equal(t, "333.33", Money(1000.0/3))
	assert.Equal(t, "3.33", Lifespan(10.0/3, false))
	assert.Equal(t, Infinity, Lifespan(0, true))
	assert.Equal(t, Infinity, LTV(0, true))
}

func TestPercentile(t *testing.T) {
	values := []int{100, 50, 25, 13, 6, 3}
	// numpy.percentile([3, 6, 13, 25, 50, 100], [25, 50, 75]) == [7.75, 19, 43.75]
	assert.InDelta(t, 7.75, Percentile(values, 25), 1e-9)
	assert.InDelta(t, 19.0, Percentile(values, 50), 1e-9)
	assert.InDelta(t, 43.75, Percentile(values, 75), 1e-9)
	assert.Equal(t, 0.0, Percentile(nil, 50))
	assert.Equal(t, 7.0, Percentile([]int{7}, 75))
}

func TestQuartileColors(t *testing.T) {
	colors := QuartileColors([]int{100, 50, 25, 13, 6, 3})
	require.Len(t, colors, 6)
	assert.Equal(t, red, colors[0])
	assert.Equal(t, green, colors[5])

	flat := QuartileColors([]int{100, 100, 100})
	for _, c := range flat {
		assert.Equal(t, yellow, c)
	}
}

func TestQuartileColors_Continuous(t *testing.T) {
	// q25 = 2, q75 = 6
	colors := QuartileColors([]int{0, 1, 2, 3, 4, 5, 6, 7, 8})
	require.Len(t, colors, 9)
	assert.Equal(t, green, colors[0])
	assert.Equal(t, green, colors[2])
	assert.Equal(t, yellow, colors[4])
	assert.Equal(t, red, colors[6])
	assert.Equal(t, red, colors[8])

	// entre deux repères, la couleur est un mélange, pas un palier
	assert.Equal(t, Gradient(0.25), colors[3])
	assert.NotEqual(t, green, colors[3])
	assert.NotEqual(t, yellow, colors[3])
	assert.NotEqual(t, colors[3], colors[5])
}

func TestGradient(t *testing.T) {
	assert.Equal(t, green, Gradient(-1))
	assert.Equal(t, green, Gradient(0))
	assert.Equal(t, yellow, Gradient(0.5))
	assert.Equal(t, red, Gradient(1))
	assert.Equal(t, red, Gradient(3))

	// #2e7d32 → #f9a825 à mi-chemin
	mid := mustHex(green).BlendRgb(mustHex(yellow), 0.5).Hex()
	assert.Equal(t, lipgloss.Color(mid), Gradient(0.25))

	// pas de saut de part et d'autre de 1/3 et 2/3
	for _, p := range []float64{1.0 / 3, 2.0 / 3} {
		lo, hi := mustHex(Gradient(p-0.01)), mustHex(Gradient(p+0.01))
		assert.Less(t, lo.DistanceRgb(hi), 0.05, p)
	}
}
