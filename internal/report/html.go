package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/seenimoa/stockcast/pkg/models"
	"github.com/seenimoa/stockcast/pkg/utils"
)

var page = template.Must(template.New("report").Parse(pageTemplate))

type pageData struct {
	Title       string
	GeneratedAt string
	Chart       template.HTML
	Horizons    []string
	Rows        []pageRow
}

type pageRow struct {
	Symbol, Close, Sentiment, LinearMSE, NeuralMSE string
	Actions                                        []actionPair
}

type actionPair struct {
	Linear, Neural models.Action
}

// RenderHTML returns the HTML summary page for rows.
func RenderHTML(rows []models.ForecastRow, horizons []models.Horizon, generated time.Time) (string, error) {
	d := pageData{
		Title:       "Stock forecast comparison",
		GeneratedAt: generated.In(utils.ET).Format("02 Jan 2006, 03:04 PM MST"),
		// MSEChart escapes every label it draws.
		Chart: template.HTML(MSEChart(rows, DefaultChartConfig())),
	}
	for _, h := range horizons {
		d.Horizons = append(d.Horizons, h.Label)
	}
	for _, r := range rows {
		pr := pageRow{
			Symbol:    r.Symbol,
			Close:     fixed(r.LastClose, 2),
			Sentiment: fixed(r.Sentiment, 3),
			LinearMSE: fixed(r.Linear.MSE, 4),
			NeuralMSE: fixed(r.Neural.MSE, 4),
		}
		for k := range horizons {
			pr.Actions = append(pr.Actions, actionPair{actionAt(r.Linear, k), actionAt(r.Neural, k)})
		}
		d.Rows = append(d.Rows, pr)
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// HTMLSink writes the HTML summary page.
type HTMLSink struct {
	Path     string
	Horizons []models.Horizon
	now      func() time.Time
}

// NewHTMLSink creates a sink writing to path.
func NewHTMLSink(path string, horizons []models.Horizon) *HTMLSink {
	return &HTMLSink{Path: path, Horizons: horizons, now: time.Now}
}

func (s *HTMLSink) Name() string { return "html" }

func (s *HTMLSink) Write(_ context.Context, rows []models.ForecastRow) error {
	out, err := RenderHTML(rows, s.Horizons, s.now())
	if err != nil {
		return err
	}
	if err := ensureDir(s.Path); err != nil {
		return fmt.Errorf("html sink: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("html sink: %w", err)
	}
	return nil
}

func (s *HTMLSink) Close() error { return nil }
