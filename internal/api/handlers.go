package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/cschnabel/svtracker/internal/export"
	"github.com/cschnabel/svtracker/internal/form"
	"github.com/cschnabel/svtracker/internal/model"
	"github.com/cschnabel/svtracker/internal/records"
	"github.com/cschnabel/svtracker/internal/stats"
)

// parseCriteria reads the shared filter query parameters.
func parseCriteria(q url.Values) (records.Criteria, error) {
	date, err := records.NewDateFilter(q.Get("from"), q.Get("to"), q["date"])
	if err != nil {
		return records.Criteria{}, err
	}
	return records.Criteria{
		Season:       strings.TrimSpace(q.Get("season")),
		Environments: nonBlank(q["environment"]),
		Formats:      nonBlank(q["format"]),
		Groups:       nonBlank(q["group"]),
		Date:         date,
	}, nil
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// load reads the full table. A store failure yields an empty table and a
// warning for the response instead of an error.
func (s *Server) load(c echo.Context) (model.Table, string) {
	t, err := s.records.LoadAll(c.Request().Context())
	if err != nil {
		s.log.Warn("load records failed", zap.Error(err))
		return model.Table{}, fmt.Sprintf("could not load records: %v", err)
	}
	return t, ""
}

// filtered loads the table and applies the request's filter. The error is a
// bad filter query and belongs in a 400.
func (s *Server) filtered(c echo.Context) (model.Table, string, error) {
	criteria, err := parseCriteria(c.QueryParams())
	if err != nil {
		return nil, "", err
	}
	t, warning := s.load(c)
	return records.Filter(t, criteria), warning, nil
}

func (s *Server) handleRecords(c echo.Context) error {
	t, warning, err := s.filtered(c)
	if err != nil {
		return s.writeError(c, http.StatusBadRequest, err.Error(), nil)
	}
	return writeJSON(c, http.StatusOK, envelope{Data: records.SortByTimestampDesc(t), Warning: warning})
}

type optionsResponse struct {
	Filters model.FilterOptions `json:"filters"`
	Decks   []string            `json:"decks"`
}

func (s *Server) handleOptions(c echo.Context) error {
	t, warning := s.load(c)
	return writeJSON(c, http.StatusOK, envelope{
		Data:    optionsResponse{Filters: records.Options(t), Decks: form.AnalysisDecks(t)},
		Warning: warning,
	})
}

func (s *Server) handleSummary(c echo.Context) error {
	t, warning, err := s.filtered(c)
	if err != nil {
		return s.writeError(c, http.StatusBadRequest, err.Error(), nil)
	}
	return writeJSON(c, http.StatusOK, envelope{Data: stats.Summarize(t), Warning: warning})
}

func (s *Server) handleDecks(c echo.Context) error {
	t, warning, err := s.filtered(c)
	if err != nil {
		return s.writeError(c, http.StatusBadRequest, err.Error(), nil)
	}
	return writeJSON(c, http.StatusOK, envelope{Data: stats.DeckPerformance(t), Warning: warning})
}

type focusResponse struct {
	Types    []string            `json:"types"`
	Analysis model.FocusAnalysis `json:"analysis"`
}

func (s *Server) handleDeckFocus(c echo.Context) error {
	// echo leaves the segment escaped only when the request carried a RawPath.
	deck := c.Param("deck")
	if c.Request().URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(deck); err == nil {
			deck = unescaped
		}
	}
	deckType := strings.TrimSpace(c.QueryParam("type"))
	if deckType == form.AllTypesOption {
		deckType = ""
	}

	t, warning, err := s.filtered(c)
	if err != nil {
		return s.writeError(c, http.StatusBadRequest, err.Error(), nil)
	}
	return writeJSON(c, http.StatusOK, envelope{
		Data: focusResponse{
			Types:    form.AnalysisTypes(t, deck),
			Analysis: stats.AnalyzeFocus(t, deck, deckType),
		},
		Warning: warning,
	})
}

func (s *Server) handleTrend(c echo.Context) error {
	t, warning, err := s.filtered(c)
	if err != nil {
		return s.writeError(c, http.StatusBadRequest, err.Error(), nil)
	}
	report := stats.OpponentTrend(t, stats.TrendOptions{IncludeTurns: true})
	return writeJSON(c, http.StatusOK, envelope{Data: report, Warning: warning})
}

type applyRequest struct {
	State form.State `json:"state"`
	Field form.Field `json:"field"`
	Value string     `json:"value"`
}

type applyResponse struct {
	State       form.State   `json:"state"`
	Invalidated []form.Field `json:"invalidated"`
	Lists       form.Lists   `json:"lists"`
}

func (s *Server) handleFormApply(c echo.Context) error {
	var req applyRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, http.StatusBadRequest, "invalid form body", nil)
	}
	next, err := form.Apply(req.State, req.Field, req.Value)
	if err != nil {
		return s.writeError(c, http.StatusBadRequest, err.Error(), map[string]any{"state": req.State})
	}

	t, warning := s.load(c)
	return writeJSON(c, http.StatusOK, envelope{
		Data: applyResponse{
			State:       next,
			Invalidated: form.Invalidated(req.Field),
			Lists:       form.Candidates(t, next, s.classes),
		},
		Warning: warning,
	})
}

func (s *Server) handleSubmit(c echo.Context) error {
	var state form.State
	if err := c.Bind(&state); err != nil {
		return s.writeError(c, http.StatusBadRequest, "invalid form body", nil)
	}

	rec, err := form.Build(state, s.now().In(s.loc))
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		return s.writeError(c, http.StatusUnprocessableEntity, verr.Error(), map[string]any{
			"missing": verr.Missing,
			"state":   state,
		})
	}
	if err != nil {
		return s.writeError(c, http.StatusBadRequest, err.Error(), map[string]any{"state": state})
	}

	if err := s.records.Append(c.Request().Context(), rec); err != nil {
		return s.writeError(c, http.StatusBadGateway, err.Error(), map[string]any{"state": state})
	}
	s.log.Info("record appended",
		zap.String("my_deck", rec.MyDeck),
		zap.String("opponent_deck", rec.OpponentDeck),
		zap.String("result", rec.Result),
	)
	return writeJSON(c, http.StatusCreated, envelope{Data: rec})
}

func (s *Server) handleExport(c echo.Context) error {
	t, err := s.records.LoadAll(c.Request().Context())
	if err != nil {
		return s.writeError(c, http.StatusBadGateway, err.Error(), nil)
	}

	name := fmt.Sprintf("svtracker-%s.csv", s.now().In(s.loc).Format("20060102-150405"))
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	res.WriteHeader(http.StatusOK)
	if err := export.WriteCSV(res, t); err != nil {
		s.log.Error("write csv export failed", zap.Error(err))
		return err
	}
	return nil
}
