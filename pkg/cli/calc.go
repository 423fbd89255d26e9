package cli

import (
	"fmt"
	"io"
	"strings"

	"retention-ltv/pkg/calculator"
	"retention-ltv/pkg/input"
	"retention-ltv/pkg/models"
	"retention-ltv/pkg/render"

	"github.com/spf13/cobra"
)

// scenarioFlags surcharge la configuration depuis la ligne de commande.
type scenarioFlags struct {
	rates       []string
	horizon     int
	revenue     float64
	initialSize float64
	sweepFrom   int
	sweepTo     int
	sweepStep   int
}

func (f *scenarioFlags) register(cmd *cobra.Command, withRates bool) {
	if withRates {
		cmd.Flags().StringSliceVar(&f.rates, "rates", nil, "retention rates, percent (50) or fraction (0.5)")
	}
	cmd.Flags().IntVar(&f.horizon, "horizon", 0, "number of years (1-10)")
	cmd.Flags().Float64Var(&f.revenue, "revenue", 0, "revenue per customer per year")
	cmd.Flags().Float64Var(&f.initialSize, "initial-size", 0, "customers at year 0")
	cmd.Flags().IntVar(&f.sweepFrom, "sweep-from", 0, "first sweep rate, percent")
	cmd.Flags().IntVar(&f.sweepTo, "sweep-to", 0, "last sweep rate, percent")
	cmd.Flags().IntVar(&f.sweepStep, "sweep-step", 0, "sweep step, percentage points")
}

// scenario applique les drapeaux explicitement passés par-dessus la configuration.
func (a *app) scenario(cmd *cobra.Command, f *scenarioFlags) (models.Scenario, error) {
	cfg := a.cfg
	changed := cmd.Flags().Changed
	if changed("rates") {
		rates, err := input.ParseRates(f.rates)
		if err != nil {
			return models.Scenario{}, err
		}
		cfg.Cohorts = rates
	}
	if changed("horizon") {
		cfg.Horizon = f.horizon
	}
	if changed("revenue") {
		cfg.RevenuePerCustomer = f.revenue
	}
	if changed("initial-size") {
		cfg.InitialSize = f.initialSize
	}
	if changed("sweep-from") {
		cfg.Sweep.From = f.sweepFrom
	}
	if changed("sweep-to") {
		cfg.Sweep.To = f.sweepTo
	}
	if changed("sweep-step") {
		cfg.Sweep.Step = f.sweepStep
	}
	return cfg.Scenario()
}

func (a *app) reportCmd() *cobra.Command {
	f := &scenarioFlags{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Decay table, LTV per cohort and the retention vs LTV curve",
		Example: `  retention-ltv report
  retention-ltv report --rates 50,70,90 --horizon 5 --revenue 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := a.scenario(cmd, f)
			if err != nil {
				return err
			}
			report, err := calculator.Run(cmd.Context(), a.log, sc, calculator.RunOptions{Progress: cmd.ErrOrStderr()})
			if err != nil {
				return fmt.Errorf("compute: %w", err)
			}
			if a.output == "json" {
				return a.writeJSON(cmd.OutOrStdout(), report)
			}
			return render.Report(cmd.OutOrStdout(), report)
		},
	}
	f.register(cmd, true)
	return cmd
}

func (a *app) decayCmd() *cobra.Command {
	f := &scenarioFlags{}
	cmd := &cobra.Command{
		Use:     "decay RATE...",
		Short:   "Remaining customers per year for each retention rate",
		Example: "  retention-ltv decay 50 70 90 --horizon 5",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := a.scenario(cmd, f)
			if err != nil {
				return err
			}
			rates, err := input.ParseRates(args)
			if err != nil {
				return err
			}
			cohorts := make([]models.CohortResult, 0, len(rates))
			for _, r := range rates {
				cohorts = append(cohorts, models.CohortResult{
					RetentionRate: r,
					Series:        calculator.ComputeDecay(r, sc.Horizon, sc.InitialSize),
				})
			}
			if a.output == "json" {
				return a.writeJSON(cmd.OutOrStdout(), cohorts)
			}
			return writeLine(cmd.OutOrStdout(), render.CohortTable(cohorts, sc.Horizon))
		},
	}
	f.register(cmd, false)
	return cmd
}

func (a *app) ltvCmd() *cobra.Command {
	f := &scenarioFlags{}
	cmd := &cobra.Command{
		Use:     "ltv RATE...",
		Short:   "Customer lifespan and lifetime value for each retention rate",
		Example: "  retention-ltv ltv 50 90 --revenue 100",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := a.scenario(cmd, f)
			if err != nil {
				return err
			}
			rates, err := input.ParseRates(args)
			if err != nil {
				return err
			}
			points := calculator.ComputeSweep(rates, sc.RevenuePerCustomer)
			if a.output == "json" {
				return a.writeJSON(cmd.OutOrStdout(), points)
			}
			return writeLine(cmd.OutOrStdout(), render.SweepTable(points))
		},
	}
	f.register(cmd, false)
	return cmd
}

func (a *app) sweepCmd() *cobra.Command {
	f := &scenarioFlags{}
	cmd := &cobra.Command{
		Use:     "sweep",
		Short:   "LTV over an evenly spaced range of retention rates",
		Example: "  retention-ltv sweep --revenue 100 --sweep-from 5 --sweep-to 95 --sweep-step 5",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := a.scenario(cmd, f)
			if err != nil {
				return err
			}
			sweep := calculator.ComputeSweep(sc.SweepRates, sc.RevenuePerCustomer)
			if a.output == "json" {
				return a.writeJSON(cmd.OutOrStdout(), sweep)
			}
			return writeLine(cmd.OutOrStdout(), render.SweepTable(sweep))
		},
	}
	f.register(cmd, false)
	return cmd
}

func writeLine(w io.Writer, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(w, s)
	return err
}
