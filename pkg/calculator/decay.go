package calculator

import (
	"math"

	"retention-ltv/pkg/models"
)

// DefaultCohortSize est la taille de cohorte utilisée à l'affichage (base 100).
const DefaultCohortSize = 100.0

// ComputeDecay projette une cohorte de initialSize clients sur horizon périodes.
//
// Chaque période est arrondie indépendamment : round(initialSize * rate^i),
// arrondi au plus proche, .5 vers le haut. Le taux n'est pas validé ici.
func ComputeDecay(rate float64, horizon int, initialSize float64) models.CohortSeries {
	if horizon < 0 {
		return models.CohortSeries{}
	}
	series := make(models.CohortSeries, 0, horizon+1)
	for i := 0; i <= horizon; i++ {
		// math.Pow(0, 0) == 1 : la période 0 vaut toujours initialSize.
		remaining := math.Round(initialSize * math.Pow(rate, float64(i)))
		series = append(series, models.CohortPoint{Period: i, Remaining: int(remaining)})
	}
	return series
}
