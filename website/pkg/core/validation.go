package core

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/indicesp/indicesp/pkg/storage"
	"github.com/indicesp/indicesp/pkg/submission"
)

const defaultModerator = "moderador"

// formatBRL renders a price as "R$ 25,90".
func formatBRL(p decimal.Decimal) string {
	return "R$ " + strings.Replace(p.StringFixed(2), ".", ",", 1)
}

func initial(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}

func pendingCard(sub storage.Submission, now time.Time) g.Node {
	detail := func(label, value string) g.Node {
		if value == "" {
			return nil
		}
		return Div(Class("text-sm"),
			Span(Class("font-medium"), g.Text(label+" ")),
			g.Text(value),
		)
	}

	who := sub.SubmittedBy
	if who == "" {
		who = "anônimo"
	}

	return Div(Class("bg-white border border-slate-200 rounded-xl shadow-sm"),
		g.El("details",
			g.El("summary", Class("list-none cursor-pointer p-6 flex items-center justify-between hover:bg-slate-50 rounded-xl"),
				Div(Class("flex items-center gap-4"),
					Div(Class("w-10 h-10 rounded-full bg-teal-100 text-sp-primary font-semibold flex items-center justify-center"), g.Text(initial(who))),
					Div(
						H3(Class("text-lg font-semibold"), g.Text(sub.Product)),
						Div(Class("flex flex-wrap items-center gap-2 text-sm text-slate-500"),
							Span(g.Text(sub.Supermarket)),
							Span(Class("font-medium text-slate-700"), g.Text(formatBRL(sub.Price))),
							g.If(sub.HasImage(), Span(Class("px-2 py-0.5 rounded-full text-xs bg-slate-100 text-slate-600"), g.Text("Com foto"))),
							g.If(sub.CaptureDate != nil, Span(Class("px-2 py-0.5 rounded-full text-xs bg-teal-50 text-sp-primary"), g.Text("Captura arquivada"))),
						),
					),
				),
				Div(Class("text-right text-sm text-slate-500"),
					Div(g.Text("Por "+who)),
					Div(g.Text(submission.Age(sub.SubmittedAt, now))),
				),
			),
			Div(Class("px-6 pb-6 space-y-3 border-t border-slate-100 pt-4"),
				detail("Local:", sub.Location),
				detail("Marca:", sub.Brand),
				detail("Unidade:", sub.Unit),
				g.If(sub.ArchivalURL != "", Div(Class("text-sm"),
					Span(Class("font-medium"), g.Text("Captura: ")),
					A(Href(sub.ArchivalURL), Target("_blank"), Rel("noopener noreferrer"), Class("text-sp-primary underline break-all"), g.Text(sub.ArchivalURL)),
				)),
				g.If(sub.Observations != "", Div(Class("text-sm"),
					Span(Class("font-medium"), g.Text("Observações:")),
					P(Class("mt-1 text-slate-500 whitespace-pre-line"), g.Text(sub.Observations)),
				)),
				Div(Class("flex flex-col md:flex-row gap-3 pt-2"),
					Form(Method("POST"), Action("/validation/"+sub.ID+"/reject"), Class("flex-1 flex flex-col gap-2"),
						Input(Type("text"), Name("moderator"), Placeholder("Seu nome"), Class("border border-slate-300 rounded-md px-3 py-2 text-sm")),
						Input(Type("text"), Name("reason"), Placeholder("Motivo da rejeição"), Class("border border-slate-300 rounded-md px-3 py-2 text-sm")),
						Button(Type("submit"), Class("px-4 py-2 rounded-md text-sm font-medium border border-red-300 text-red-700 hover:bg-red-50"), g.Text("Rejeitar")),
					),
					Form(Method("POST"), Action("/validation/"+sub.ID+"/approve"), Class("flex-1 flex flex-col gap-2"),
						Input(Type("text"), Name("moderator"), Placeholder("Seu nome"), Class("border border-slate-300 rounded-md px-3 py-2 text-sm")),
						Button(Type("submit"), Class("px-4 py-2 rounded-md text-sm font-semibold text-white bg-sp-down hover:opacity-90"), g.Text("Aprovar")),
					),
				),
			),
		),
	)
}

// ValidationContent renders the moderation queue.
func ValidationContent(pending []storage.Submission, notice *Notice, loadErr error, now time.Time) g.Node {
	content := []g.Node{noticeBanner(notice)}
	if loadErr != nil {
		content = append(content, errorBox("Erro ao carregar a fila: ", loadErr))
	}

	if len(pending) == 0 && loadErr == nil {
		content = append(content, Div(Class("bg-white border border-slate-200 rounded-xl shadow-sm p-8 text-center"),
			Div(Class("text-5xl text-sp-down mb-4"), g.Text("✓")),
			H3(Class("text-lg font-semibold mb-2"), g.Text("Todas as validações em dia!")),
			P(Class("text-slate-500"), g.Text("Não há contribuições pendentes de validação no momento.")),
		))
		return Main(Class("max-w-4xl mx-auto px-4 py-8"), g.Group(content))
	}

	var cards []g.Node
	for _, sub := range pending {
		cards = append(cards, pendingCard(sub, now))
	}
	content = append(content,
		Div(Class("flex items-center justify-between mb-4"),
			H2(Class("text-2xl font-bold"), g.Text("Fila de Validação")),
			Span(Class("px-2.5 py-0.5 rounded-full text-xs font-semibold bg-amber-100 text-amber-700"), g.Textf("%d pendentes", len(pending))),
		),
		Div(Class("space-y-4"), g.Group(cards)),
	)
	return Main(Class("max-w-4xl mx-auto px-4 py-8"), g.Group(content))
}

func (s *Site) validationHandler(w http.ResponseWriter, r *http.Request) {
	pending, err := s.subs.Pending(r.Context())
	if err != nil {
		s.log.Errorf("Loading pending submissions: %v", err)
	}
	s.render(w, "Validação - Índice SP", "/validation", ValidationContent(pending, s.noticeFromQuery(r), err, s.now()))
}

func (s *Site) approveHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	_, err := s.subs.Approve(r.Context(), id, moderatorFrom(r))
	s.afterDecision(w, r, id, "approved", err)
}

func (s *Site) rejectHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	_, err := s.subs.Reject(r.Context(), id, moderatorFrom(r), r.FormValue("reason"))
	s.afterDecision(w, r, id, "rejected", err)
}

func moderatorFrom(r *http.Request) string {
	if m := strings.TrimSpace(r.FormValue("moderator")); m != "" {
		return m
	}
	return defaultModerator
}

func (s *Site) afterDecision(w http.ResponseWriter, r *http.Request, id, code string, err error) {
	switch {
	case err == nil:
		redirectWithNotice(w, r, "/validation", code, id)
	case errors.Is(err, submission.ErrAlreadyDecided):
		redirectWithNotice(w, r, "/validation", "already_decided", id)
	case errors.Is(err, submission.ErrNotFound):
		redirectWithNotice(w, r, "/validation", "not_found", "")
	default:
		http.Error(w, "Erro interno", http.StatusInternalServerError)
	}
}
