// Package render met en forme les séries et courbes pour le terminal.
package render

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"retention-ltv/pkg/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/shopspring/decimal"
)

// Infinity est affiché à la place d'une durée de vie ou d'une LTV infinie.
const Infinity = "∞"

// Dégradé vert → jaune → rouge de l'application d'origine.
var (
	green  = lipgloss.Color("#2e7d32")
	yellow = lipgloss.Color("#f9a825")
	red    = lipgloss.Color("#c62828")

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)

	gradient = [3]colorful.Color{mustHex(green), mustHex(yellow), mustHex(red)}
)

func mustHex(c lipgloss.Color) colorful.Color {
	col, err := colorful.Hex(string(c))
	if err != nil {
		panic(err)
	}
	return col
}

// RateLabel -> "Retention Rate: 0.5"
func RateLabel(rate float64) string {
	return "Retention Rate: " + strconv.FormatFloat(rate, 'f', -1, 64)
}

// Money formate un montant à deux décimales.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Lifespan formate une durée de vie en années.
func Lifespan(v float64, infinite bool) string {
	if infinite {
		return Infinity
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// LTV formate une LTV, ∞ comprise.
func LTV(v float64, infinite bool) string {
	if infinite {
		return Infinity
	}
	return Money(v)
}

// CohortTable rend une ligne par cohorte, une colonne par année.
// Chaque cellule est colorée selon sa position entre q25 et q75 de sa cohorte.
func CohortTable(cohorts []models.CohortResult, horizon int) string {
	headers := []string{"Retention Rate"}
	for i := 0; i <= horizon; i++ {
		headers = append(headers, strconv.Itoa(i))
	}

	rows := make([][]string, 0, len(cohorts))
	colors := make([][]lipgloss.Color, 0, len(cohorts))
	for _, c := range cohorts {
		values := c.Series.Values()
		row := []string{RateLabel(c.RetentionRate)}
		for _, v := range values {
			row = append(row, strconv.Itoa(v))
		}
		rows = append(rows, row)
		colors = append(colors, QuartileColors(values))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 || row < 0 || row >= len(colors) || col-1 >= len(colors[row]) {
				return cellStyle
			}
			return cellStyle.Foreground(colors[row][col-1])
		})
	return t.Render()
}

// SweepTable rend la courbe taux → durée de vie → LTV.
func SweepTable(sweep models.RetentionSweep) string {
	rows := make([][]string, 0, len(sweep))
	for _, p := range sweep {
		rows = append(rows, []string{
			strconv.FormatFloat(p.RetentionRate*100, 'f', -1, 64) + "%",
			Lifespan(p.Lifespan, p.Infinite),
			LTV(p.LTV, p.Infinite),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Retention Rate", "Lifespan (years)", "LTV").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

// LTVTable rend durée de vie et LTV par cohorte.
func LTVTable(cohorts []models.CohortResult) string {
	rows := make([][]string, 0, len(cohorts))
	for _, c := range cohorts {
		rows = append(rows, []string{
			RateLabel(c.RetentionRate),
			Lifespan(c.Lifespan, c.Infinite),
			LTV(c.LTV, c.Infinite),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Retention Rate", "Lifespan (years)", "LTV").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

// ObservedTable rend la survie mesurée de chaque cohorte et le taux implicite.
func ObservedTable(cohorts []models.ObservedCohort) string {
	width := 0
	for _, c := range cohorts {
		if len(c.Survivors) > width {
			width = len(c.Survivors)
		}
	}
	headers := []string{"Cohort", "Rate"}
	for i := 0; i < width; i++ {
		headers = append(headers, strconv.Itoa(i))
	}
	rows := make([][]string, 0, len(cohorts))
	for _, c := range cohorts {
		row := []string{c.MonthYear, decimal.NewFromFloat(c.Rate * 100).StringFixed(1) + "%"}
		for i := 0; i < width; i++ {
			if i < len(c.Survivors) {
				row = append(row, strconv.Itoa(c.Survivors[i]))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

// Report écrit le rapport complet : décroissance, LTV par cohorte, courbe.
func Report(w io.Writer, r models.Report) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Customer Retention Over Years"))
	b.WriteString("\n")
	b.WriteString(CohortTable(r.Cohorts, r.Scenario.Horizon))
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf("Lifetime Value (revenue per customer: %s)", Money(r.Scenario.RevenuePerCustomer))))
	b.WriteString("\n")
	b.WriteString(LTVTable(r.Cohorts))
	b.WriteString("\n")
	if len(r.Sweep) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Retention Rate vs LTV"))
		b.WriteString("\n")
		b.WriteString(SweepTable(r.Sweep))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Percentile calcule le p-ième centile par interpolation linéaire entre rangs.
func Percentile(values []int, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	for i, v := range values {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// QuartileColors associe à chaque valeur une couleur selon (v - q25) / (q75 - q25),
// bornée à [0, 1] et interpolée en continu : 0 → vert, 0.5 → jaune, 1 → rouge.
func QuartileColors(values []int) []lipgloss.Color {
	q25 := Percentile(values, 25)
	q75 := Percentile(values, 75)
	out := make([]lipgloss.Color, len(values))
	for i, v := range values {
		pos := 0.5
		if q75 > q25 {
			pos = (float64(v) - q25) / (q75 - q25)
		}
		out[i] = Gradient(pos)
	}
	return out
}

// Gradient renvoie la couleur du dégradé vert → jaune → rouge en pos, bornée à [0, 1].
func Gradient(pos float64) lipgloss.Color {
	pos = math.Max(0, math.Min(1, pos))
	var c colorful.Color
	if pos <= 0.5 {
		c = gradient[0].BlendRgb(gradient[1], pos*2)
	} else {
		c = gradient[1].BlendRgb(gradient[2], (pos-0.5)*2)
	}
	return lipgloss.Color(c.Hex())
}
