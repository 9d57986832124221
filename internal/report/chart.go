package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/stockcast/pkg/models"
)

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int // default 800
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
	BgColor      string
	TextColor    string
	FontSize     int
	Title        string
}

// DefaultChartConfig returns the chart layout used by the HTML report.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		MarginTop:    40,
		MarginRight:  90,
		MarginBottom: 30,
		MarginLeft:   80,
		BgColor:      "#ffffff",
		TextColor:    "#333333",
		FontSize:     11,
		Title:        "Test MSE by model",
	}
}

const (
	colorLinear = "#2196f3"
	colorNeural = "#ff9800"
	groupHeight = 36
)

// MSEChart draws one pair of horizontal bars per row, regression above
// network, scaled to the largest MSE.
func MSEChart(rows []models.ForecastRow, cfg ChartConfig) string {
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	height := cfg.MarginTop + cfg.MarginBottom + groupHeight*max(len(rows), 1)
	if len(rows) == 0 {
		return emptySVG(cfg.Width, height, "No data")
	}

	maxVal := 0.0
	for _, r := range rows {
		maxVal = max(maxVal, barValue(r.Linear.MSE), barValue(r.Neural.MSE))
	}
	if maxVal <= 0 {
		maxVal = 1
	}
	plotW := float64(cfg.Width - cfg.MarginLeft - cfg.MarginRight)
	barH := float64(groupHeight-8) / 2

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg.Width, height))
	fmt.Fprintf(&sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, cfg.Width, height, cfg.BgColor)
	fmt.Fprintf(&sb, `<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title))

	for i, r := range rows {
		y := float64(cfg.MarginTop + i*groupHeight)
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			cfg.MarginLeft-6, y+barH+4, cfg.FontSize, cfg.TextColor, escapeXML(r.Symbol))
		for k, bar := range []struct {
			v     float64
			color string
		}{{r.Linear.MSE, colorLinear}, {r.Neural.MSE, colorNeural}} {
			by := y + float64(k)*barH
			bw := barValue(bar.v) / maxVal * plotW
			fmt.Fprintf(&sb, `<rect x="%d" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2"/>`,
				cfg.MarginLeft, by, bw, barH-1, bar.color)
			fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="%d" fill="%s">%s</text>`,
				float64(cfg.MarginLeft)+bw+4, by+barH-3, cfg.FontSize-1, cfg.TextColor, fixed(bar.v, 4))
		}
	}

	ly := height - cfg.MarginBottom/2
	fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="10" height="10" fill="%s"/><text x="%d" y="%d" font-size="%d" fill="%s">%s</text>`,
		cfg.MarginLeft, ly-8, colorLinear, cfg.MarginLeft+14, ly+1, cfg.FontSize, cfg.TextColor, models.ModelLinear)
	fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="10" height="10" fill="%s"/><text x="%d" y="%d" font-size="%d" fill="%s">%s</text>`,
		cfg.MarginLeft+50, ly-8, colorNeural, cfg.MarginLeft+64, ly+1, cfg.FontSize, cfg.TextColor, models.ModelNeural)
	sb.WriteString("</svg>")
	return sb.String()
}

// barValue maps values a bar cannot show to zero.
func barValue(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func svgHeader(w, h int) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		w, h, w, h)
}

func emptySVG(w, h int, msg string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		w, h, w, h, w/2, h/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
