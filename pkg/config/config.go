package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"retention-ltv/pkg/input"
	"retention-ltv/pkg/models"

	"gopkg.in/yaml.v3"
)

// Variables d'environnement reconnues.
const (
	EnvDSN      = "RETENTION_LTV_DSN"
	EnvAddr     = "RETENTION_LTV_ADDR"
	EnvLogLevel = "RETENTION_LTV_LOG_LEVEL"
)

// Config contient les valeurs par défaut du calculateur et des adaptateurs.
type Config struct {
	Cohorts            []float64      `yaml:"cohorts"` // fractions ou pourcentages entiers
	Horizon            int            `yaml:"horizon"`
	InitialSize        float64        `yaml:"initial_size"`
	RevenuePerCustomer float64        `yaml:"revenue_per_customer"`
	Sweep              SweepConfig    `yaml:"sweep"`
	Server             ServerConfig   `yaml:"server"`
	Database           DatabaseConfig `yaml:"database"`
	Logging            LoggingConfig  `yaml:"logging"`
}

// SweepConfig échantillonne la courbe taux → LTV, en points de pourcentage.
type SweepConfig struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
	Step int `yaml:"step"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	DSN   string `yaml:"dsn"` // mariadb://, mysql://, sqlite:// ou DSN natif
	Table string `yaml:"table"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default reprend les valeurs du formulaire d'origine.
func Default() Config {
	return Config{
		Cohorts:            []float64{0.5, 0.7, 0.9},
		Horizon:            5,
		InitialSize:        100,
		RevenuePerCustomer: 100,
		Sweep:              SweepConfig{From: 5, To: 95, Step: 5},
		Server:             ServerConfig{Bind: "127.0.0.1", Port: 8088},
		Database:           DatabaseConfig{Table: "CustomerEventData"},
		Logging:            LoggingConfig{Level: "info"},
	}
}

// Load lit le fichier YAML s'il existe, par-dessus Default(), puis applique l'environnement.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if dsn := os.Getenv(EnvDSN); dsn != "" {
		c.Database.DSN = dsn
	}
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Bind = addr
		c.Server.Port = 0
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		c.Logging.Level = lvl
	}
}

// ListenAddr renvoie l'adresse d'écoute bind:port.
// Un port à 0 signifie que Bind contient déjà l'adresse complète.
func (c *Config) ListenAddr() string {
	if c.Server.Port == 0 {
		return c.Server.Bind
	}
	return c.Server.Bind + ":" + strconv.Itoa(c.Server.Port)
}

// Scenario valide la configuration et la convertit en paramètres de calcul.
func (c *Config) Scenario() (models.Scenario, error) {
	rates := make([]float64, 0, len(c.Cohorts))
	for _, v := range c.Cohorts {
		r, err := input.NormalizeRate(v)
		if err != nil {
			return models.Scenario{}, err
		}
		rates = append(rates, r)
	}
	if err := input.ValidateHorizon(c.Horizon); err != nil {
		return models.Scenario{}, err
	}
	if err := input.ValidateInitialSize(c.InitialSize); err != nil {
		return models.Scenario{}, err
	}
	if err := input.ValidateRevenue(c.RevenuePerCustomer); err != nil {
		return models.Scenario{}, err
	}
	sweep, err := input.RateRange(c.Sweep.From, c.Sweep.To, c.Sweep.Step)
	if err != nil {
		return models.Scenario{}, err
	}
	return models.Scenario{
		RetentionRates:     rates,
		Horizon:            c.Horizon,
		InitialSize:        c.InitialSize,
		RevenuePerCustomer: c.RevenuePerCustomer,
		SweepRates:         sweep,
	}, nil
}
