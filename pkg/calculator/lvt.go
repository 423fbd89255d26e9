package calculator

import (
	"errors"

	"retention-ltv/pkg/models"
)

// ErrUndefinedResult signale un taux de rétention de 1 : durée de vie et LTV infinies.
var ErrUndefinedResult = errors.New("undefined result: retention rate of 1 gives an infinite lifespan")

// ComputeLifespan renvoie la durée de vie moyenne d'un client, 1 / (1 - rate), en périodes.
func ComputeLifespan(rate float64) (float64, error) {
	if rate == 1 {
		return 0, ErrUndefinedResult
	}
	return 1 / (1 - rate), nil
}

// ComputeLTV renvoie durée de vie × revenu par client et par période.
func ComputeLTV(rate, revenuePerCustomer float64) (float64, error) {
	lifespan, err := ComputeLifespan(rate)
	if err != nil {
		return 0, err
	}
	return lifespan * revenuePerCustomer, nil
}

// ComputeSweep applique ComputeLTV à chaque taux fourni par l'appelant.
// Un taux de 1 reste dans la courbe, marqué Infinite.
func ComputeSweep(rates []float64, revenuePerCustomer float64) models.RetentionSweep {
	sweep := make(models.RetentionSweep, 0, len(rates))
	for _, r := range rates {
		pt := models.SweepPoint{RetentionRate: r}
		lifespan, err := ComputeLifespan(r)
		if errors.Is(err, ErrUndefinedResult) {
			pt.Infinite = true
		} else {
			pt.Lifespan = lifespan
			pt.LTV = lifespan * revenuePerCustomer
		}
		sweep = append(sweep, pt)
	}
	return sweep
}
