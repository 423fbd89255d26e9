package calculator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"retention-ltv/pkg/models"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// RunOptions règle les effets de bord d'un calcul (progression, horloge).
type RunOptions struct {
	Progress io.Writer        // nil → pas de barre
	Now      func() time.Time // nil → time.Now
}

// Run calcule, pour chaque cohorte du scénario, la courbe de décroissance,
// la durée de vie et la LTV, puis la courbe taux → LTV sur SweepRates.
func Run(ctx context.Context, log *zap.Logger, sc models.Scenario, opts RunOptions) (models.Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	report := models.Report{
		RunID:      uuid.NewString(),
		ComputedAt: now().UTC(),
		Scenario:   sc,
		Cohorts:    make([]models.CohortResult, 0, len(sc.RetentionRates)),
	}
	log = log.With(zap.String("run_id", report.RunID))

	bar := newBar(opts.Progress, len(sc.RetentionRates))

	for _, rate := range sc.RetentionRates {
		if err := ctx.Err(); err != nil {
			return models.Report{}, fmt.Errorf("cohort %.2f: %w", rate, err)
		}

		res := models.CohortResult{
			RetentionRate: rate,
			Series:        ComputeDecay(rate, sc.Horizon, sc.InitialSize),
		}
		lifespan, err := ComputeLifespan(rate)
		switch {
		case errors.Is(err, ErrUndefinedResult):
			res.Infinite = true
		case err != nil:
			return models.Report{}, fmt.Errorf("cohort %.2f: %w", rate, err)
		default:
			res.Lifespan = lifespan
			res.LTV = lifespan * sc.RevenuePerCustomer
		}
		report.Cohorts = append(report.Cohorts, res)

		if bar != nil {
			_ = bar.Add(1)
		}
		log.Debug("cohort computed",
			zap.Float64("retention_rate", rate),
			zap.Ints("remaining", res.Series.Values()),
			zap.Float64("lifespan", res.Lifespan),
			zap.Float64("ltv", res.LTV),
			zap.Bool("infinite", res.Infinite),
		)
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if len(sc.SweepRates) > 0 {
		report.Sweep = ComputeSweep(sc.SweepRates, sc.RevenuePerCustomer)
	}
	log.Info("scenario computed",
		zap.Int("cohorts", len(report.Cohorts)),
		zap.Int("horizon", sc.Horizon),
		zap.Int("sweep_points", len(report.Sweep)),
	)
	return report, nil
}

// newBar renvoie nil quand aucune sortie n'est demandée.
func newBar(w io.Writer, n int) *progressbar.ProgressBar {
	if w == nil {
		return nil
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("cohorts"),
		progressbar.OptionClearOnFinish(),
	)
}
