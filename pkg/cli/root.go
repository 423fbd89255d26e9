package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"retention-ltv/pkg/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app porte l'état partagé par les sous-commandes d'une exécution.
type app struct {
	configPath string
	verbose    bool
	output     string

	cfg config.Config
	log *zap.Logger
}

// NewRootCmd construit l'arbre de commandes complet.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "retention-ltv",
		Short: "Customer retention decay and lifetime value calculator",
		Long: `retention-ltv projects how a cohort of customers decays year after year for a
given retention rate, and derives the customer lifetime value (LTV) from it.

Run "retention-ltv report" for the default three-cohort scenario.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "retention-ltv.yaml", "YAML config file (ignored if absent)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "table", "output format: table or json")

	root.AddCommand(
		a.reportCmd(),
		a.decayCmd(),
		a.ltvCmd(),
		a.sweepCmd(),
		a.observeCmd(),
		a.serveCmd(),
		a.tuiCmd(),
		versionCmd(),
	)
	return root
}

// Execute lance la commande racine.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.output != "table" && a.output != "json" {
		return fmt.Errorf("unknown output format %q (table, json)", a.output)
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Le mode interactif occupe le terminal : pas de journal.
	if cmd.Name() == "tui" {
		a.log = zap.NewNop()
		return nil
	}

	zc := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if a.verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	a.log, err = zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func (a *app) writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
