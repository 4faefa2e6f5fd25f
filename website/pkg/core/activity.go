package core

import (
	"fmt"
	"net/http"
	"time"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/indicesp/indicesp/pkg/storage"
	"github.com/indicesp/indicesp/pkg/submission"
)

const activityLimit = 50

var eventLabels = map[string]string{
	"submitted": "Enviado",
	"approved":  "Aprovado",
	"rejected":  "Rejeitado",
}

func eventBadge(eventType string) g.Node {
	label, ok := eventLabels[eventType]
	if !ok {
		label = eventType
	}
	classes := "inline-flex items-center px-2.5 py-0.5 rounded-full text-xs font-medium "
	switch eventType {
	case "approved":
		classes += "bg-emerald-50 text-emerald-700 border border-emerald-200"
	case "rejected":
		classes += "bg-red-50 text-red-700 border border-red-200"
	default:
		classes += "bg-slate-100 text-slate-600"
	}
	return Span(Class(classes), g.Text(label))
}

// ActivityContent lists the latest queue events, newest first.
func ActivityContent(events []storage.Event, loadErr error, now time.Time, uptime time.Duration) g.Node {
	th := func(label string) g.Node {
		return Th(Class("px-4 py-3 text-left text-xs font-semibold text-slate-500 uppercase tracking-wider"), g.Text(label))
	}

	var rows []g.Node
	for _, e := range events {
		detail := e.Reason
		if detail == "" {
			detail = "-"
		}
		actor := e.Actor
		if actor == "" {
			actor = "-"
		}
		rows = append(rows, Tr(Class("border-b border-slate-100"),
			Td(Class("px-4 py-3 text-sm text-slate-500 tabular-nums"), Title(e.OccurredAt.UTC().Format(time.RFC3339)), g.Text(submission.Age(e.OccurredAt, now))),
			Td(Class("px-4 py-3"), eventBadge(e.EventType)),
			Td(Class("px-4 py-3 text-sm font-medium"), g.Text(e.Product)),
			Td(Class("px-4 py-3 text-sm"), g.Text(e.Supermarket)),
			Td(Class("px-4 py-3 text-sm text-slate-500"), g.Text(actor)),
			Td(Class("px-4 py-3 text-sm text-slate-500"), g.Text(detail)),
		))
	}

	var body g.Node
	switch {
	case loadErr != nil:
		body = errorBox("Erro ao carregar a atividade: ", loadErr)
	case len(rows) == 0:
		body = P(Class("text-slate-500"), g.Text("Nenhuma atividade registrada ainda."))
	default:
		body = Div(Class("overflow-x-auto"),
			Table(Class("w-full"),
				THead(
					Tr(Class("border-b border-slate-200"),
						th("Quando"), th("Evento"), th("Produto"), th("Supermercado"), th("Por"), th("Motivo"),
					),
				),
				TBody(rows...),
			),
		)
	}

	return Main(Class("max-w-6xl mx-auto px-4 py-8"),
		H2(Class("text-2xl font-bold mb-6"), g.Text("Atividade recente")),
		Section(Class("mb-6"),
			card("Servidor",
				Div(Class("text-sm text-slate-500"), g.Text(fmt.Sprintf("No ar há %s", formatDuration(uptime)))),
			),
		),
		Section(card("Moderação", body)),
	)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func (s *Site) activityHandler(w http.ResponseWriter, r *http.Request) {
	events, err := s.queue.ListRecentEvents(r.Context(), activityLimit)
	if err != nil {
		s.log.Errorf("Loading recent events: %v", err)
	}
	now := s.now()
	s.render(w, "Atividade - Índice SP", "/activity", ActivityContent(events, err, now, now.Sub(s.started).Round(time.Second)))
}
