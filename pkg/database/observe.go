package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"retention-ltv/pkg/input"
	"retention-ltv/pkg/models"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// ObserveConfig contient les paramètres d'une mesure sur plusieurs cohortes.
type ObserveConfig struct {
	Table               string
	StartMonthInclusive string    // "MMYYYY"
	EndMonthInclusive   string    // "MMYYYY"
	Observation         time.Time // borne haute (ex: 1er jour du mois courant) – en UTC
	Horizon             int
	Progress            io.Writer // nil → pas de barre
}

// ObserveCohorts mesure chaque cohorte mensuelle de la plage. Les cohortes sans
// historique suffisant sont journalisées et omises.
func ObserveCohorts(ctx context.Context, db *sql.DB, log *zap.Logger, cfg ObserveConfig) ([]models.ObservedCohort, error) {
	if log == nil {
		log = zap.NewNop()
	}
	start, err := input.ParseMonth(cfg.StartMonthInclusive)
	if err != nil {
		return nil, fmt.Errorf("start_month: %w", err)
	}
	end, err := input.ParseMonth(cfg.EndMonthInclusive)
	if err != nil {
		return nil, fmt.Errorf("end_month: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end_month < start_month")
	}
	months := input.MonthsBetweenInclusive(start, end)
	var bar *progressbar.ProgressBar
	if cfg.Progress != nil {
		bar = progressbar.NewOptions(len(months),
			progressbar.OptionSetWriter(cfg.Progress),
			progressbar.OptionSetDescription("observing"),
			progressbar.OptionClearOnFinish(),
		)
	}

	results := make([]models.ObservedCohort, 0, len(months))
	for _, m := range months {
		obs, err := ObserveCohort(ctx, db, cfg.Table, m, cfg.Observation, cfg.Horizon)
		if bar != nil {
			_ = bar.Add(1)
		}
		if errors.Is(err, ErrInsufficientHistory) {
			log.Info("cohort skipped",
				zap.String("cohort", input.FormatMonth(m)),
				zap.Int("clients", obs.Size),
				zap.Error(err))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("observe %s: %w", input.FormatMonth(m), err)
		}
		results = append(results, obs)
		log.Debug("cohort observed",
			zap.String("cohort", obs.MonthYear),
			zap.Int("clients", obs.Size),
			zap.Ints("survivors", obs.Survivors),
			zap.Float64("rate", obs.Rate))
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return results, nil
}
