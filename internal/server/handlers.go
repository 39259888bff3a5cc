package server

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/KaramelBytes/mortalisys/internal/analysis"
	"github.com/KaramelBytes/mortalisys/internal/chart"
	"github.com/KaramelBytes/mortalisys/internal/parser"
)

//go:embed web/index.html
var webFS embed.FS

var pageTmpl = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"pct": analysis.FormatPercent,
}).ParseFS(webFS, "web/index.html"))

type selector struct {
	Name     string
	Title    string
	Labels   []string
	Selected string
}

type pageData struct {
	Dataset      string
	Records      int
	Warnings     []string
	Summary      *analysis.Summary
	SummaryError string
	Selectors    []selector
	ChartsURL    string
	MaxUploadMB  int
}

// selection reads the four selectors from the query string. Empty values
// take the configured defaults before resolution.
func (s *Server) selection(c echo.Context) (analysis.Selection, []string) {
	d := s.opts.Defaults
	return analysis.ResolveSelection(analysis.SelectionLabels{
		Outcome:     lo.CoalesceOrEmpty(c.QueryParam("outcome"), d.Outcome),
		Detail:      lo.CoalesceOrEmpty(c.QueryParam("detail"), d.Detail),
		Demographic: lo.CoalesceOrEmpty(c.QueryParam("demographic"), d.Demographic),
		History:     lo.CoalesceOrEmpty(c.QueryParam("history"), d.History),
	})
}

func selectionQuery(sel analysis.Selection) string {
	l := sel.Labels()
	q := url.Values{}
	q.Set("outcome", l.Outcome)
	q.Set("detail", l.Detail)
	q.Set("demographic", l.Demographic)
	q.Set("history", l.History)
	return q.Encode()
}

func (s *Server) handleDashboard(c echo.Context) error {
	t := s.Table()
	sel, warnings := s.selection(c)
	data := pageData{
		Dataset:     t.Name(),
		Records:     t.Len(),
		Warnings:    append(t.Warnings(), warnings...),
		ChartsURL:   "/charts?" + selectionQuery(sel),
		MaxUploadMB: s.opts.MaxUploadMB,
	}
	titles := map[string]string{
		"outcome":     "Select Outcome",
		"detail":      "Select Surgical Detail",
		"demographic": "Select Patient Demographic",
		"history":     "Select Medical History",
	}
	chosen := sel.Labels()
	for _, cat := range analysis.Catalogs {
		data.Selectors = append(data.Selectors, selector{
			Name:     cat.Name,
			Title:    titles[cat.Name],
			Labels:   cat.Labels(),
			Selected: selectedLabel(cat.Name, chosen),
		})
	}
	sum, err := analysis.Summarize(t)
	switch {
	case errors.Is(err, analysis.ErrEmptyTable):
		data.SummaryError = "The dataset has no records."
	case err != nil:
		return err
	default:
		data.Summary = sum
	}
	for _, w := range warnings {
		s.log.Warn().Str("request_id", requestID(c)).Msg(w)
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func selectedLabel(catalog string, l analysis.SelectionLabels) string {
	switch catalog {
	case "outcome":
		return l.Outcome
	case "detail":
		return l.Detail
	case "demographic":
		return l.Demographic
	default:
		return l.History
	}
}

func (s *Server) handleCharts(c echo.Context) error {
	sel, _ := s.selection(c)
	var buf bytes.Buffer
	if err := chart.Render(&buf, s.Table(), sel); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// handleReset drops the selections and reloads the default dataset.
func (s *Server) handleReset(c echo.Context) error {
	if s.opts.DataPath != "" {
		t, err := analysis.LoadFile(s.opts.DataPath, s.opts.Load)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		s.Swap(t)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing upload field \"file\"")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer f.Close()

	sh, err := parser.Read(f, fh.Filename, s.opts.Load.Parser)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := analysis.Load(sh, s.opts.Load)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.Swap(t)
	s.log.Info().Str("request_id", requestID(c)).Str("file", fh.Filename).Int64("bytes", fh.Size).Msg("upload accepted")

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"dataset":  t.Name(),
			"records":  t.Len(),
			"warnings": t.Warnings(),
		})
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleHealth(c echo.Context) error {
	t := s.Table()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"dataset": t.Name(),
		"records": t.Len(),
	})
}

func requestID(c echo.Context) string {
	rid, _ := c.Get("request_id").(string)
	return rid
}
