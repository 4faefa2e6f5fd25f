package core

import (
	"math"
	"net/http"
	"net/url"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/indicesp/indicesp/pkg/dashboard"
)

func supermarketCard(m dashboard.SupermarketSummary) g.Node {
	badge := "bg-slate-100 text-slate-600"
	_, arrow := trendStyle(m.Trend())
	if m.Trend() == dashboard.TrendUp {
		badge = "bg-red-100 text-red-700"
	} else if m.Trend() == dashboard.TrendDown {
		badge = "bg-emerald-100 text-emerald-700"
	}

	stat := func(value int, label, color string) g.Node {
		return Div(
			Div(Class("text-xl font-bold tabular-nums "+color), g.Textf("%d", value)),
			Div(Class("text-xs text-slate-500"), g.Text(label)),
		)
	}

	return Div(Class("bg-white border border-slate-200 rounded-xl shadow-sm p-6 space-y-4 hover:shadow-md transition-all duration-300"),
		Div(Class("flex items-center justify-between"),
			Div(
				H3(Class("text-lg font-semibold"), g.Text(m.Name)),
				P(Class("text-sm text-slate-500"), g.Textf("%d locais em SP", m.Locations)),
			),
			Span(Class("px-2.5 py-0.5 rounded-full text-xs font-semibold "+badge),
				g.Textf("%s %.1f%%", arrow, math.Abs(m.AvgInflation)),
			),
		),
		Div(Class("grid grid-cols-3 gap-4 text-center"),
			stat(m.ProductsTracked, "Produtos", "text-sp-primary"),
			stat(m.ValidatedSubmissions, "Validados", "text-sp-down"),
			stat(m.PendingValidation, "Pendentes", "text-amber-600"),
		),
		A(Href("/submit?supermarket="+url.QueryEscape(m.Name)),
			Class("block text-center px-4 py-2 rounded-md text-sm font-semibold text-white bg-gradient-to-r from-sp-primary to-sp-light hover:opacity-90"),
			g.Text("Enviar Preço"),
		),
		g.If(m.LastUpdate != "",
			P(Class("text-xs text-slate-500 text-center"), g.Textf("Última atualização: %s", m.LastUpdate)),
		),
	)
}

// SupermarketsContent renders one card per chain.
func SupermarketsContent(snap dashboard.Snapshot, statsErr error) g.Node {
	var cards []g.Node
	for _, m := range snap.Supermarkets {
		cards = append(cards, supermarketCard(m))
	}
	return Main(Class("max-w-7xl mx-auto px-4 py-8"),
		errorLine(statsErr),
		H2(Class("text-2xl font-bold mb-6"), g.Text("Supermercados")),
		Div(Class("grid grid-cols-1 md:grid-cols-2 lg:grid-cols-3 gap-6"), g.Group(cards)),
	)
}

func errorLine(err error) g.Node {
	if err == nil {
		return nil
	}
	return errorBox("Erro ao carregar a fila: ", err)
}

func (s *Site) supermarketsHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	s.render(w, "Supermercados - Índice SP", "/supermarkets", SupermarketsContent(snap, err))
}
