package core

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/indicesp/indicesp/pkg/dashboard"
)

// trendStyle colours a change the economic way: rising prices are bad news.
func trendStyle(t dashboard.Trend) (color, arrow string) {
	switch t {
	case dashboard.TrendUp:
		return "text-sp-up", "▲"
	case dashboard.TrendDown:
		return "text-sp-down", "▼"
	}
	return "text-slate-400", "–"
}

func metricCard(m dashboard.MetricCard) g.Node {
	classes := "rounded-xl border p-5 "
	switch m.Variant {
	case dashboard.VariantHighlight:
		classes += "border-teal-200 bg-gradient-to-br from-white to-teal-50 shadow-md"
	case dashboard.VariantCritical:
		classes += "border-red-200 bg-gradient-to-br from-white to-red-50"
	default:
		classes += "border-slate-200 bg-white shadow-sm hover:shadow-md transition-shadow duration-300"
	}
	color, arrow := trendStyle(m.Trend)
	period := m.Period
	if period == "" {
		period = "vs mês anterior"
	}

	return Div(Class(classes),
		P(Class("text-sm font-medium text-slate-500"), g.Text(m.Title)),
		Div(Class("text-3xl font-bold mt-2 tabular-nums"), g.Text(m.Value)),
		Div(Class("flex items-center gap-2 mt-2 text-sm"),
			Span(Class(color), g.Textf("%s %.1f%%", arrow, math.Abs(m.Change))),
			Span(Class("text-slate-400"), g.Text(period)),
		),
	)
}

// seriesScript initialises the Chart.js line chart drawn into canvasID.
func seriesScript(canvasID string, series []dashboard.Point) (g.Node, error) {
	labels := make([]string, 0, len(series))
	values := make([]float64, 0, len(series))
	for _, p := range series {
		labels = append(labels, p.Date)
		values = append(values, p.Index)
	}
	l, err := json.Marshal(labels)
	if err != nil {
		return nil, err
	}
	v, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}

	return Script(g.Raw(fmt.Sprintf(`
		new Chart(document.getElementById('%s'), {
			type: 'line',
			data: {
				labels: %s,
				datasets: [{
					label: 'Índice SP',
					data: %s,
					borderColor: '#0f766e',
					backgroundColor: 'rgba(20,184,166,0.15)',
					fill: true,
					tension: 0.3,
					pointRadius: 4
				}]
			},
			options: {
				responsive: true,
				maintainAspectRatio: false,
				scales: {
					x: { ticks: { color: '#64748b' }, grid: { color: '#e2e8f0' } },
					y: { ticks: { color: '#64748b' }, grid: { color: '#e2e8f0' } }
				},
				plugins: {
					legend: { display: false },
					tooltip: {
						backgroundColor: '#ffffff',
						titleColor: '#0f172a',
						bodyColor: '#334155',
						borderColor: '#e2e8f0',
						borderWidth: 1
					}
				}
			}
		});
	`, canvasID, l, v))), nil
}

// DashboardContent renders the metric cards and the index chart.
func DashboardContent(snap dashboard.Snapshot, statsErr error) g.Node {
	content := []g.Node{errorLine(statsErr)}

	var cards []g.Node
	for _, m := range snap.Metrics {
		cards = append(cards, metricCard(m))
	}
	content = append(content,
		Div(Class("grid grid-cols-1 md:grid-cols-2 lg:grid-cols-4 gap-6 mb-8"), g.Group(cards)),
	)

	chart := card("Evolução do Índice de Inflação - São Paulo",
		Div(Class("relative h-96"), Canvas(ID("inflationChart"))),
	)
	content = append(content, chart)

	if script, err := seriesScript("inflationChart", snap.Series); err == nil {
		content = append(content,
			Script(Src("https://cdn.jsdelivr.net/npm/chart.js@4/dist/chart.umd.min.js")),
			script,
		)
	} else {
		content = append(content, P(Class("text-slate-500 mt-4"), g.Text("Não foi possível montar o gráfico.")))
	}

	content = append(content,
		P(Class("text-sm text-slate-500 mt-6"),
			g.Textf("%d contribuições aguardando validação. ", snap.Pending()),
			A(Href("/validation"), Class("text-sp-primary underline"), g.Text("Ver fila")),
		),
	)

	return Main(Class("max-w-7xl mx-auto px-4 py-8"), g.Group(content))
}

func (s *Site) snapshot(r *http.Request) (dashboard.Snapshot, error) {
	stats, err := s.queue.QueueStats(r.Context())
	if err != nil {
		s.log.Errorf("Loading queue stats: %v", err)
		return dashboard.Mock(), err
	}
	return dashboard.Mock().WithQueue(stats, s.now().UTC()), nil
}

func (s *Site) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	s.render(w, "Índice SP - Inflação colaborativa em São Paulo", "/", DashboardContent(snap, err))
}
