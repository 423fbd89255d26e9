// Package tui est la version terminal du formulaire : chaque saisie relance le calcul.
package tui

import (
	"context"
	"strconv"
	"strings"

	"retention-ltv/pkg/calculator"
	"retention-ltv/pkg/input"
	"retention-ltv/pkg/models"
	"retention-ltv/pkg/render"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// minRateFields : le formulaire d'origine propose trois cohortes.
const minRateFields = 3

var (
	labelStyle = lipgloss.NewStyle().Width(24)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#c62828"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

// Model porte l'état du formulaire. Le calcul lui-même reste sans état.
//
// Champs, dans l'ordre de tabulation : un par cohorte, puis années et revenu.
type Model struct {
	log    *zap.Logger
	inputs []textinput.Model
	rates  int
	focus  int
	size   float64
	sweep  []float64
	report models.Report
	err    error
}

// New pré-remplit le formulaire avec les cohortes du scénario.
// Il y a au moins trois champs de taux ; ceux laissés vides sont ignorés.
func New(log *zap.Logger, defaults models.Scenario) Model {
	if log == nil {
		log = zap.NewNop()
	}
	m := Model{
		log:   log,
		rates: max(len(defaults.RetentionRates), minRateFields),
		size:  defaults.InitialSize,
		sweep: defaults.SweepRates,
	}
	if m.size == 0 {
		m.size = calculator.DefaultCohortSize
	}

	values := make([]string, m.rates+2)
	for i, r := range defaults.RetentionRates {
		values[i] = strconv.FormatFloat(r, 'f', -1, 64)
	}
	values[m.HorizonField()] = strconv.Itoa(defaults.Horizon)
	values[m.RevenueField()] = strconv.FormatFloat(defaults.RevenuePerCustomer, 'f', -1, 64)

	m.inputs = make([]textinput.Model, len(values))
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 12
		ti.Width = 12
		ti.SetValue(values[i])
		m.inputs[i] = ti
	}
	m.inputs[0].Focus()
	m.recompute()
	return m
}

// RateField renvoie l'indice du champ de la i-ème cohorte (à partir de 0).
func (m Model) RateField(i int) int { return i }

// RateFields renvoie le nombre de champs de taux.
func (m Model) RateFields() int { return m.rates }

// HorizonField renvoie l'indice du champ "Number of Years".
func (m Model) HorizonField() int { return m.rates }

// RevenueField renvoie l'indice du champ "Revenue per Customer".
func (m Model) RevenueField() int { return m.rates + 1 }

func (m Model) label(field int) string {
	switch field {
	case m.HorizonField():
		return "Number of Years:"
	case m.RevenueField():
		return "Revenue per Customer:"
	default:
		return "Retention Rate " + strconv.Itoa(field+1) + ":"
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down", "enter":
			return m, m.moveFocus(1)
		case "shift+tab", "up":
			return m, m.moveFocus(-1)
		}
	}

	var cmd tea.Cmd
	before := m.inputs[m.focus].Value()
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.inputs[m.focus].Value() != before {
		m.recompute()
	}
	return m, cmd
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	m.inputs[m.focus].Blur()
	n := len(m.inputs)
	m.focus = (m.focus + delta + n) % n
	return m.inputs[m.focus].Focus()
}

// SetField remplace la valeur d'un champ et relance le calcul.
func (m *Model) SetField(field int, value string) {
	m.inputs[field].SetValue(value)
	m.recompute()
}

// Focused renvoie l'indice du champ actif.
func (m Model) Focused() int { return m.focus }

// Report renvoie le dernier calcul valide et l'erreur de saisie courante.
func (m Model) Report() (models.Report, error) { return m.report, m.err }

func (m *Model) recompute() {
	sc, err := m.scenario()
	if err != nil {
		m.err = err
		return
	}
	report, err := calculator.Run(context.Background(), m.log, sc, calculator.RunOptions{})
	if err != nil {
		m.err = err
		return
	}
	m.report, m.err = report, nil
}

func (m Model) scenario() (models.Scenario, error) {
	var raw []string
	for _, ti := range m.inputs[:m.rates] {
		if v := strings.TrimSpace(ti.Value()); v != "" {
			raw = append(raw, v)
		}
	}
	if len(raw) == 0 {
		return models.Scenario{}, &input.DomainError{Field: "retention_rate", Value: "", Reason: "at least one retention rate required"}
	}
	rates, err := input.ParseRates(raw)
	if err != nil {
		return models.Scenario{}, err
	}
	rawHorizon := strings.TrimSpace(m.inputs[m.HorizonField()].Value())
	horizon, err := strconv.Atoi(rawHorizon)
	if err != nil {
		return models.Scenario{}, &input.DomainError{Field: "horizon", Value: rawHorizon, Reason: "not an integer"}
	}
	if err := input.ValidateHorizon(horizon); err != nil {
		return models.Scenario{}, err
	}
	rawRevenue := strings.TrimSpace(m.inputs[m.RevenueField()].Value())
	revenue, err := strconv.ParseFloat(rawRevenue, 64)
	if err != nil {
		return models.Scenario{}, &input.DomainError{Field: "revenue_per_customer", Value: rawRevenue, Reason: "not a number"}
	}
	if err := input.ValidateRevenue(revenue); err != nil {
		return models.Scenario{}, err
	}
	return models.Scenario{
		RetentionRates:     rates,
		Horizon:            horizon,
		InitialSize:        m.size,
		RevenuePerCustomer: revenue,
		SweepRates:         m.sweep,
	}, nil
}

func (m Model) View() string {
	var b strings.Builder
	for i, ti := range m.inputs {
		b.WriteString(labelStyle.Render(m.label(i)))
		b.WriteString(ti.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()))
		b.WriteString("\n")
	} else {
		b.WriteString(render.CohortTable(m.report.Cohorts, m.report.Scenario.Horizon))
		b.WriteString("\n")
		b.WriteString(render.LTVTable(m.report.Cohorts))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("tab/shift+tab: move • esc: quit"))
	b.WriteString("\n")
	return b.String()
}
