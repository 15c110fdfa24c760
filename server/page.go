package server

import "html/template"

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>COVID-19 Dashboard</title>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f4f6f9; color: #222; }
header { background: #1f3b57; color: #fff; padding: 16px 24px; display: flex; gap: 24px; align-items: center; flex-wrap: wrap; }
header h1 { font-size: 20px; margin: 0 auto 0 0; }
main { padding: 24px; }
.stats { display: grid; grid-template-columns: repeat(4, 1fr); gap: 16px; margin-bottom: 24px; }
.stat-card { background: #fff; border-radius: 8px; padding: 16px; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
.stat-card h3 { margin: 0 0 8px; font-size: 14px; color: #666; }
.stat-value { font-size: 28px; font-weight: 600; }
.charts { display: grid; grid-template-columns: 2fr 1fr; gap: 16px; }
.chart { background: #fff; border-radius: 8px; padding: 8px; min-height: 120px; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
.chart img { max-width: 100%; }
.empty { color: #888; padding: 40px; text-align: center; }
.meta { font-size: 12px; opacity: .8; }
</style>
</head>
<body>
<header>
  <h1>COVID-19 Dashboard</h1>
  <form action="/upload" method="post" enctype="multipart/form-data">
    <input type="file" id="dataInput" name="dataInput" accept=".csv" onchange="this.form.submit()">
  </form>
  <form action="/region" method="post">
    <select id="regionFilter" name="region" onchange="this.form.submit()"{{if not .Ready}} disabled{{end}}>
      <option value="">Select State</option>
      {{- range .View.Regions}}
      <option value="{{.}}"{{if eq . $.View.Selection}} selected{{end}}>{{.}}</option>
      {{- end}}
    </select>
  </form>
  {{if not .View.LastUpdated.IsZero}}<span class="meta">Last updated {{.View.LastUpdated.Format "2006-01-02 15:04:05 MST"}}</span>{{end}}
</header>
<main>
  <section class="stats">
    <div class="stat-card" id="confirmedCases"><h3>Confirmed Cases</h3><div class="stat-value">{{.View.Stats.Confirmed}}</div></div>
    <div class="stat-card" id="activeCases"><h3>Active Cases</h3><div class="stat-value">{{.View.Stats.Active}}</div></div>
    <div class="stat-card" id="recoveredCases"><h3>Recovered</h3><div class="stat-value">{{.View.Stats.Recovered}}</div></div>
    <div class="stat-card" id="deaths"><h3>Deaths</h3><div class="stat-value">{{.View.Stats.Deaths}}</div></div>
  </section>
  <section class="charts">
    {{- range .Charts}}
    <div class="chart" id="{{.Mount}}">
      {{if .Ready}}<img src="/charts/{{.Mount}}.png?v={{$.Version}}" alt="{{.Mount}}">{{else}}<div class="empty">No data</div>{{end}}
    </div>
    {{- end}}
  </section>
</main>
</body>
</html>
`))

type chartSlot struct {
	Mount string
	Ready bool
}
