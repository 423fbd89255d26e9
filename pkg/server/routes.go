package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"retention-ltv/pkg/calculator"
	"retention-ltv/pkg/input"
	"retention-ltv/pkg/models"
)

func (s *Server) handleDecay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rate, err := input.ParseRate(q.Get("rate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	horizon, err := queryInt(q.Get("horizon"), "horizon", 0)
	if err == nil {
		err = input.ValidateHorizon(horizon)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	initial, err := queryFloat(q.Get("initial"), "initial_size", s.defaults.InitialSize)
	if err == nil {
		err = input.ValidateInitialSize(initial)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"retention_rate": rate,
		"horizon":        horizon,
		"initial_size":   initial,
		"series":         calculator.ComputeDecay(rate, horizon, initial),
	})
}

func (s *Server) handleLTV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rate, err := input.ParseRate(q.Get("rate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	revenue, err := queryFloat(q.Get("revenue"), "revenue_per_customer", s.defaults.RevenuePerCustomer)
	if err == nil {
		err = input.ValidateRevenue(revenue)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := models.SweepPoint{RetentionRate: rate}
	lifespan, err := calculator.ComputeLifespan(rate)
	switch {
	case errors.Is(err, calculator.ErrUndefinedResult):
		resp.Infinite = true
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	default:
		resp.Lifespan = lifespan
		resp.LTV = lifespan * revenue
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	revenue, err := queryFloat(q.Get("revenue"), "revenue_per_customer", s.defaults.RevenuePerCustomer)
	if err == nil {
		err = input.ValidateRevenue(revenue)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rates, err := s.sweepRates(q.Get("from"), q.Get("to"), q.Get("step"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"revenue_per_customer": revenue,
		"sweep":                calculator.ComputeSweep(rates, revenue),
	})
}

type reportRequest struct {
	Rates       []float64 `json:"rates"`
	Horizon     int       `json:"horizon"`
	Revenue     *float64  `json:"revenue"`
	InitialSize *float64  `json:"initial_size"`
	Sweep       *struct {
		From int `json:"from"`
		To   int `json:"to"`
		Step int `json:"step"`
	} `json:"sweep"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	sc, err := s.scenario(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := calculator.Run(r.Context(), s.log, sc, calculator.RunOptions{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) scenario(req reportRequest) (models.Scenario, error) {
	if len(req.Rates) == 0 {
		return models.Scenario{}, &input.DomainError{Field: "rates", Value: "[]", Reason: "at least one retention rate required"}
	}
	sc := models.Scenario{
		Horizon:            req.Horizon,
		InitialSize:        s.defaults.InitialSize,
		RevenuePerCustomer: s.defaults.RevenuePerCustomer,
	}
	for _, v := range req.Rates {
		rate, err := input.NormalizeRate(v)
		if err != nil {
			return models.Scenario{}, err
		}
		sc.RetentionRates = append(sc.RetentionRates, rate)
	}
	if err := input.ValidateHorizon(sc.Horizon); err != nil {
		return models.Scenario{}, err
	}
	if req.InitialSize != nil {
		sc.InitialSize = *req.InitialSize
	}
	if err := input.ValidateInitialSize(sc.InitialSize); err != nil {
		return models.Scenario{}, err
	}
	if req.Revenue != nil {
		sc.RevenuePerCustomer = *req.Revenue
	}
	if err := input.ValidateRevenue(sc.RevenuePerCustomer); err != nil {
		return models.Scenario{}, err
	}

	from, to, step := s.defaults.SweepFrom, s.defaults.SweepTo, s.defaults.SweepStep
	if req.Sweep != nil {
		from, to, step = req.Sweep.From, req.Sweep.To, req.Sweep.Step
	}
	sweep, err := input.RateRange(from, to, step)
	if err != nil {
		return models.Scenario{}, err
	}
	sc.SweepRates = sweep
	return sc, nil
}

func (s *Server) sweepRates(from, to, step string) ([]float64, error) {
	f, err := queryInt(from, "from", s.defaults.SweepFrom)
	if err != nil {
		return nil, err
	}
	t, err := queryInt(to, "to", s.defaults.SweepTo)
	if err != nil {
		return nil, err
	}
	st, err := queryInt(step, "step", s.defaults.SweepStep)
	if err != nil {
		return nil, err
	}
	return input.RateRange(f, t, st)
}

func queryInt(raw, field string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &input.DomainError{Field: field, Value: raw, Reason: "not an integer"}
	}
	return v, nil
}

func queryFloat(raw, field string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &input.DomainError{Field: field, Value: raw, Reason: "not a number"}
	}
	return v, nil
}
