package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"

	"retention-ltv/pkg/input"
	"retention-ltv/pkg/models"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const orderEventTypeID = 6 // "Commande"

const dateTimeLayout = "2006-01-02 15:04:05"

// ErrInsufficientHistory : cohorte vide ou aucune année écoulée depuis son début.
var ErrInsufficientHistory = errors.New("insufficient order history for cohort")

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open DSN mariadb://, mysql:// ou sqlite:// → driver et DSN natifs.
func Open(dsn string) (*sql.DB, string, error) {
	driver, native, err := resolveDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(driver, native)
	if err != nil {
		return nil, "", err
	}
	if driver == "sqlite" {
		// une seule connexion : ":memory:" n'est pas partagé entre connexions
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, native, nil
}

func resolveDSN(dsn string) (driver, native string, err error) {
	switch {
	case dsn == "":
		return "", "", fmt.Errorf("dsn vide")
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("dsn sqlite sans chemin")
		}
		return "sqlite", path, nil
	case dsn == ":memory:" || strings.HasSuffix(dsn, ".db") || strings.HasPrefix(dsn, "file:"):
		return "sqlite", dsn, nil
	default:
		native, err := toMySQLDSN(dsn)
		return "mysql", native, err
	}
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("dsn incomplet (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// ObserveCohort mesure la survie d'une cohorte mensuelle dans la table d'événements.
//
// Cohorte = clients dont la première commande tombe dans [cohortStart, cohortStart+1 mois).
// Un client survit en année i si sa dernière commande avant observation est
// ≥ cohortStart + i ans. Seules les années commencées avant observation comptent,
// dans la limite de horizon.
func ObserveCohort(
	ctx context.Context,
	db *sql.DB,
	tableName string,
	cohortStart, observation time.Time,
	horizon int,
) (models.ObservedCohort, error) {
	if !tableNameRe.MatchString(tableName) {
		return models.ObservedCohort{}, fmt.Errorf("table invalide")
	}

	cohortStart = time.Date(cohortStart.Year(), cohortStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	cohortEnd := cohortStart.AddDate(0, 1, 0)
	obs := observation.UTC()
	out := models.ObservedCohort{MonthYear: input.FormatMonth(cohortStart)}

	// 1) Sous-requête cohorte : première commande dans [cohortStart, cohortEnd)
	subCohort := fmt.Sprintf(`
		SELECT ced.CustomerID
		FROM %s ced
		WHERE ced.EventTypeID = ?
		GROUP BY ced.CustomerID
		HAVING MIN(ced.EventDate) >= ? AND MIN(ced.EventDate) < ?
	`, tableName)

	// 2) Dernière commande avant observation, par client de la cohorte
	q := fmt.Sprintf(`
		SELECT ced.CustomerID, MAX(ced.EventDate) AS lastOrder
		FROM %s ced
		WHERE ced.EventTypeID = ?
		  AND ced.EventDate < ?
		  AND ced.CustomerID IN (%s)
		GROUP BY ced.CustomerID
	`, tableName, subCohort)

	args := []any{
		orderEventTypeID, obs.Format(dateTimeLayout),
		orderEventTypeID, cohortStart.Format(dateTimeLayout), cohortEnd.Format(dateTimeLayout),
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return out, fmt.Errorf("query cohort %s: %w", out.MonthYear, err)
	}
	defer rows.Close()

	var lastOrders []time.Time
	for rows.Next() {
		var (
			customerID uint64
			raw        any
		)
		if err := rows.Scan(&customerID, &raw); err != nil {
			return out, err
		}
		last, err := scanTime(raw)
		if err != nil {
			return out, fmt.Errorf("client %d: %w", customerID, err)
		}
		lastOrders = append(lastOrders, last)
	}
	if err := rows.Err(); err != nil {
		return out, err
	}

	out.Size = len(lastOrders)
	out.Survivors = survivorsByYear(cohortStart, obs, horizon, lastOrders)
	if out.Size == 0 || len(out.Survivors) < 2 {
		return out, fmt.Errorf("cohort %s: %w", out.MonthYear, ErrInsufficientHistory)
	}
	n := len(out.Survivors) - 1
	out.Rate = math.Pow(float64(out.Survivors[n])/float64(out.Size), 1/float64(n))
	return out, nil
}

// survivorsByYear[i] = nombre de clients dont la dernière commande est ≥ cohortStart + i ans.
func survivorsByYear(cohortStart, obs time.Time, horizon int, lastOrders []time.Time) []int {
	survivors := []int{len(lastOrders)}
	for i := 1; i <= horizon; i++ {
		periodStart := cohortStart.AddDate(i, 0, 0)
		if !periodStart.Before(obs) {
			break
		}
		count := 0
		for _, t := range lastOrders {
			if !t.Before(periodStart) {
				count++
			}
		}
		survivors = append(survivors, count)
	}
	return survivors
}

// scanTime accepte un DATETIME déjà converti (mysql parseTime) ou un texte (sqlite).
func scanTime(v any) (time.Time, error) {
	var s string
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return time.Time{}, fmt.Errorf("date non supportée: %T", v)
	}
	for _, layout := range []string{dateTimeLayout, time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("date illisible: %q", s)
}
