package report

// pageTemplate is the HTML summary page.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    line-height: 1.6;
    max-width: 960px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; margin-bottom: 4px; }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }
  table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
  th, td { padding: 6px 8px; border-bottom: 1px solid var(--border); text-align: right; }
  th:first-child, td:first-child { text-align: left; }
  .Buy { color: var(--green); font-weight: 600; }
  .Sell { color: var(--red); font-weight: 600; }
  .Hold { color: var(--muted); }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="muted">Generated {{.GeneratedAt}} · {{len .Rows}} tickers</p>

<h2>Model error</h2>
{{.Chart}}

<h2>Forecasts</h2>
<table>
<thead><tr>
  <th>Symbol</th><th>Close</th><th>Sentiment</th><th>LR MSE</th><th>NN MSE</th>
  {{range .Horizons}}<th>{{.}} LR</th><th>{{.}} NN</th>{{end}}
</tr></thead>
<tbody>
{{range .Rows}}<tr>
  <td>{{.Symbol}}</td><td>{{.Close}}</td><td>{{.Sentiment}}</td><td>{{.LinearMSE}}</td><td>{{.NeuralMSE}}</td>
  {{range .Actions}}<td class="{{.Linear}}">{{.Linear}}</td><td class="{{.Neural}}">{{.Neural}}</td>{{end}}
</tr>
{{end}}</tbody>
</table>
</body>
</html>
`
