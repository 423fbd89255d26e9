package models

import (
	"time"
)

/*
INPUT → paramètres explicites d'un calcul (aucun état global).
*/

// Scenario regroupe les paramètres validés d'un calcul de rétention.
// Les taux sont des fractions dans (0, 1].
type Scenario struct {
	RetentionRates     []float64 `json:"retention_rates"`
	Horizon            int       `json:"horizon"`
	InitialSize        float64   `json:"initial_size"`
	RevenuePerCustomer float64   `json:"revenue_per_customer"`
	SweepRates         []float64 `json:"sweep_rates,omitempty"`
}

/*
COMPUTE → séries et valeurs dérivées
*/

// CohortPoint est le nombre de clients restants d'une cohorte à une période donnée.
type CohortPoint struct {
	Period    int `json:"period"`
	Remaining int `json:"remaining"`
}

// CohortSeries est la courbe de décroissance d'une cohorte, période 0 incluse.
type CohortSeries []CohortPoint

// Values renvoie uniquement les clients restants, dans l'ordre des périodes.
func (s CohortSeries) Values() []int {
	out := make([]int, len(s))
	for i, p := range s {
		out[i] = p.Remaining
	}
	return out
}

// SweepPoint associe un taux de rétention à sa durée de vie et sa LTV.
// Infinite signale un taux de 1 : Lifespan et LTV valent alors 0.
type SweepPoint struct {
	RetentionRate float64 `json:"retention_rate"`
	Lifespan      float64 `json:"lifespan"`
	LTV           float64 `json:"ltv"`
	Infinite      bool    `json:"infinite,omitempty"`
}

// RetentionSweep est la courbe taux → LTV, dans l'ordre des taux fournis.
type RetentionSweep []SweepPoint

// CohortResult contient les métriques calculées pour une cohorte.
type CohortResult struct {
	RetentionRate float64      `json:"retention_rate"`
	Series        CohortSeries `json:"series"`
	Lifespan      float64      `json:"lifespan"`
	LTV           float64      `json:"ltv"`
	Infinite      bool         `json:"infinite,omitempty"`
}

// Report est le résultat complet d'un scénario.
type Report struct {
	RunID      string         `json:"run_id"`
	ComputedAt time.Time      `json:"computed_at"`
	Scenario   Scenario       `json:"scenario"`
	Cohorts    []CohortResult `json:"cohorts"`
	Sweep      RetentionSweep `json:"sweep,omitempty"`
}

/*
OBSERVE → rétention mesurée sur les commandes en base
*/

// ObservedCohort décrit la survie réelle d'une cohorte mensuelle, année par année.
type ObservedCohort struct {
	MonthYear string  `json:"month_year"` // "MM/YYYY"
	Size      int     `json:"size"`
	Survivors []int   `json:"survivors"` // Survivors[0] == Size
	Rate      float64 `json:"rate"`      // taux par période implicite
}
