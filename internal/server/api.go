package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/KaramelBytes/mortalisys/internal/analysis"
)

type aggregateResponse struct {
	Dataset   string                  `json:"dataset"`
	View      string                  `json:"view,omitempty"`
	Columns   []string                `json:"columns"`
	Rows      []analysis.AggregateRow `json:"rows"`
	Selection analysis.Selection      `json:"selection"`
	Warnings  []string                `json:"warnings,omitempty"`
}

func (s *Server) handleSummary(c echo.Context) error {
	sum, err := analysis.Summarize(s.Table())
	if errors.Is(err, analysis.ErrEmptyTable) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sum)
}

// handleAggregate groups by ?by=col,col when given, else by the columns of
// ?view=bar|histogram under the current selection.
func (s *Server) handleAggregate(c echo.Context) error {
	t := s.Table()
	sel, warnings := s.selection(c)
	resp := aggregateResponse{Dataset: t.Name(), Selection: sel, Warnings: warnings}

	if by := strings.TrimSpace(c.QueryParam("by")); by != "" {
		resp.Columns = lo.Compact(lo.Map(strings.Split(by, ","), func(col string, _ int) string {
			return strings.TrimSpace(col)
		}))
	} else {
		resp.View = lo.CoalesceOrEmpty(c.QueryParam("view"), analysis.ViewBar)
		cols, err := analysis.ViewColumns(resp.View, sel)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		resp.Columns = cols
	}

	rows, err := analysis.Aggregate(t, resp.Columns)
	if errors.Is(err, analysis.ErrUnknownColumn) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}
	resp.Rows = rows
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCategories(c echo.Context) error {
	rules := s.Table().Rules()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"bmi_gap_policy": rules.Policy,
		"rules":          rules.Describe(),
	})
}

func (s *Server) handleSelections(c echo.Context) error {
	sel, warnings := s.selection(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"catalogs":  analysis.Catalogs,
		"selection": sel,
		"warnings":  warnings,
	})
}
