// Package input est la frontière de validation : tout ce qui atteint les
// calculateurs est passé par ici.
package input

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Bornes reconnues par le formulaire d'origine.
const (
	MinHorizon = 1
	MaxHorizon = 10
)

// MaxInitialSize borne la taille de cohorte : les effectifs arrondis doivent tenir dans un int.
const MaxInitialSize = 1e9

// ErrDomain est la cause commune de toutes les erreurs de domaine.
var ErrDomain = errors.New("value out of domain")

// DomainError décrit une entrée rejetée avant d'atteindre les calculateurs.
type DomainError struct {
	Field  string
	Value  string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s=%q: %s", e.Field, e.Value, e.Reason)
}

func (e *DomainError) Is(target error) bool { return target == ErrDomain }

func domainErr(field, value, reason string) error {
	return &DomainError{Field: field, Value: value, Reason: reason}
}

// ParseRate lit un taux de rétention saisi par l'utilisateur et le renvoie en fraction.
//
// "50%" et "50" sont des pourcentages entiers, "0.5" une fraction. Toute valeur
// ≤ 1 sans signe % est une fraction : "1" vaut donc 100 %.
func ParseRate(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	percent := strings.HasSuffix(raw, "%")
	num := strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, domainErr("retention_rate", s, "not a number")
	}
	if percent {
		return percentToFraction(v, s)
	}
	return NormalizeRate(v)
}

// NormalizeRate accepte une fraction dans (0, 1] ou un pourcentage entier dans (1, 100].
func NormalizeRate(v float64) (float64, error) {
	raw := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domainErr("retention_rate", raw, "not a finite number")
	}
	if v > 1 {
		return percentToFraction(v, raw)
	}
	return v, ValidateRate(v)
}

// ValidateRate vérifie qu'une fraction est dans (0, 1].
func ValidateRate(r float64) error {
	if math.IsNaN(r) || r <= 0 || r > 1 {
		return domainErr("retention_rate", strconv.FormatFloat(r, 'f', -1, 64), "must be in (0, 1]")
	}
	return nil
}

func percentToFraction(v float64, raw string) (float64, error) {
	if v != math.Trunc(v) {
		return 0, domainErr("retention_rate", raw, "percentages must be whole numbers")
	}
	if v <= 0 || v > 100 {
		return 0, domainErr("retention_rate", raw, "must be in (0, 100]%")
	}
	return v / 100, nil
}

// ParseRates applique ParseRate à chaque élément.
func ParseRates(values []string) ([]float64, error) {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		r, err := ParseRate(v)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ValidateHorizon vérifie que l'horizon est un nombre d'années dans [1, 10].
func ValidateHorizon(h int) error {
	if h < MinHorizon || h > MaxHorizon {
		return domainErr("horizon", strconv.Itoa(h), fmt.Sprintf("must be in [%d, %d]", MinHorizon, MaxHorizon))
	}
	return nil
}

// ValidateRevenue vérifie qu'un revenu par client est fini et ≥ 0.
func ValidateRevenue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return domainErr("revenue_per_customer", strconv.FormatFloat(v, 'f', -1, 64), "must be a finite number >= 0")
	}
	return nil
}

// ValidateInitialSize vérifie la taille de cohorte de départ, dans [0, MaxInitialSize].
func ValidateInitialSize(v float64) error {
	raw := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return domainErr("initial_size", raw, "must be a finite number >= 0")
	}
	if v > MaxInitialSize {
		return domainErr("initial_size", raw, fmt.Sprintf("must be <= %.0f", MaxInitialSize))
	}
	return nil
}

// RateRange produit les taux de from% à to% inclus, par pas de step points.
// C'est l'échantillonnage de la courbe taux → LTV, choisi côté présentation.
func RateRange(fromPct, toPct, stepPct int) ([]float64, error) {
	if stepPct <= 0 {
		return nil, domainErr("step", strconv.Itoa(stepPct), "must be > 0")
	}
	if fromPct <= 0 || fromPct > 100 {
		return nil, domainErr("from", strconv.Itoa(fromPct), "must be in (0, 100]")
	}
	if toPct < fromPct || toPct > 100 {
		return nil, domainErr("to", strconv.Itoa(toPct), fmt.Sprintf("must be in [%d, 100]", fromPct))
	}
	out := make([]float64, 0, (toPct-fromPct)/stepPct+1)
	for p := fromPct; p <= toPct; p += stepPct {
		out = append(out, float64(p)/100)
	}
	return out, nil
}
