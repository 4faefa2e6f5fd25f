package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html" // Using . import for convenience with html tags

	"github.com/indicesp/indicesp/pkg/storage"
	"github.com/indicesp/indicesp/pkg/submission"
)

// QueueReader is the statistics side of the submission store.
type QueueReader interface {
	QueueStats(ctx context.Context) ([]storage.QueueStats, error)
	ListRecentEvents(ctx context.Context, limit int) ([]storage.Event, error)
}

// Config holds what the pages need.
type Config struct {
	Submissions *submission.Service
	Queue       QueueReader
	Domain      string // for sitemap/robots.txt
	Log         *logrus.Logger
	Now         func() time.Time
}

// Site renders the public pages.
type Site struct {
	subs    *submission.Service
	queue   QueueReader
	domain  string
	log     *logrus.Logger
	now     func() time.Time
	started time.Time
}

func New(cfg Config) (*Site, error) {
	if cfg.Submissions == nil || cfg.Queue == nil {
		return nil, errors.New("website: submission service and queue reader are required")
	}
	s := &Site{
		subs:   cfg.Submissions,
		queue:  cfg.Queue,
		domain: cfg.Domain,
		log:    cfg.Log,
		now:    cfg.Now,
	}
	if s.domain == "" {
		s.domain = "localhost"
	}
	if s.log == nil {
		s.log = logrus.New()
		s.log.SetOutput(io.Discard)
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.started = s.now()
	return s, nil
}

// Handler routes the pages.
func (s *Site) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.dashboardHandler)
	mux.HandleFunc("GET /supermarkets", s.supermarketsHandler)
	mux.HandleFunc("GET /validation", s.validationHandler)
	mux.HandleFunc("POST /validation/{id}/approve", s.approveHandler)
	mux.HandleFunc("POST /validation/{id}/reject", s.rejectHandler)
	mux.HandleFunc("GET /submit", s.submitFormHandler)
	mux.HandleFunc("POST /submit", s.submitHandler)
	mux.HandleFunc("POST /submit/check", s.checkCaptureHandler)
	mux.HandleFunc("GET /activity", s.activityHandler)
	mux.HandleFunc("GET /about", s.aboutHandler)
	mux.HandleFunc("GET /robots.txt", s.robotsTxtHandler)
	mux.HandleFunc("GET /sitemap.xml", s.sitemapHandler)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		s.render(w, "Página não encontrada - Índice SP", "", notFoundContent())
	})
	return mux
}

func (s *Site) render(w http.ResponseWriter, title, currentPath string, content g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := PageLayout(title, "Inflação colaborativa nos supermercados de São Paulo", Navbar(currentPath), content, FooterEl(s.now())).Render(w); err != nil {
		s.log.Errorf("Rendering %s: %v", currentPath, err)
	}
}

// Page layout component
func PageLayout(title, description string, navbar g.Node, content g.Node, footer g.Node) g.Node {
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(Lang("pt-BR"),
			Head(
				Meta(Charset("UTF-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				Meta(Name("description"), Content(description)),
				TitleEl(g.Text(title)),
				Link(Rel("preconnect"), Href("https://fonts.googleapis.com")),
				Link(Rel("preconnect"), Href("https://fonts.gstatic.com"), g.Attr("crossorigin", "")),
				Link(Rel("stylesheet"), Href("https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700;800&display=swap")),
				Script(Src("https://cdn.tailwindcss.com")),
				Script(Src("https://unpkg.com/htmx.org@2.0.4")),
				Script(g.Raw(`tailwind.config={theme:{extend:{fontFamily:{sans:['Inter','ui-sans-serif','system-ui','sans-serif']},colors:{'sp-primary':'#0f766e','sp-light':'#14b8a6','sp-up':'#dc2626','sp-down':'#16a34a'}}}}`)),
				StyleEl(g.Raw(`
					* { scroll-behavior: smooth; }
					::selection { background: #0f766e; color: white; }
					a:focus-visible, button:focus-visible, input:focus-visible, select:focus-visible, textarea:focus-visible {
						outline: 2px solid #14b8a6;
						outline-offset: 2px;
					}
				`)),
			),
			Body(Class("bg-gradient-to-br from-white to-slate-100 font-sans antialiased leading-normal flex flex-col min-h-screen text-slate-800"),
				navbar,
				Div(Class("flex-grow"), content),
				footer,
			),
		),
	})
}

// Navbar component
func Navbar(currentPath string) g.Node {
	navLink := func(href, label string) g.Node {
		isActive := currentPath == href
		base := "block text-center md:inline-block transition-all duration-200 px-3 py-2 rounded-md text-sm font-medium "
		if isActive {
			base += "text-sp-primary bg-teal-50"
		} else {
			base += "text-slate-500 hover:text-slate-900 hover:bg-slate-100"
		}
		return A(Href(href), Class(base), g.Text(label))
	}

	return Header(Class("border-b bg-white/80 backdrop-blur-sm sticky top-0 z-50"),
		Div(Class("max-w-7xl mx-auto px-4 py-4 flex flex-col md:flex-row md:items-center md:justify-between gap-4"),
			A(Href("/"), Class("flex items-center space-x-3"),
				Div(Class("w-10 h-10 bg-gradient-to-br from-sp-primary to-sp-light rounded-lg flex items-center justify-center text-white font-bold"), g.Text("SP")),
				Div(
					H1(Class("text-2xl font-bold"), g.Text("Índice SP")),
					P(Class("text-sm text-slate-500"), g.Text("Inflação Colaborativa São Paulo")),
				),
			),
			Nav(Class("flex flex-wrap items-center gap-1"),
				navLink("/", "Dashboard"),
				navLink("/supermarkets", "Supermercados"),
				navLink("/validation", "Validação"),
				navLink("/activity", "Atividade"),
				navLink("/about", "Sobre"),
				A(Href("/submit"), Class("ml-2 px-4 py-2 rounded-md text-sm font-semibold text-white bg-gradient-to-r from-sp-primary to-sp-light hover:opacity-90"), g.Text("+ Contribuir")),
			),
		),
	)
}

// FooterEl component (using El suffix to avoid conflict with html.Footer)
func FooterEl(now time.Time) g.Node {
	return Footer(Class("text-slate-500 mt-auto border-t border-slate-200"),
		Div(Class("max-w-7xl mx-auto px-4 py-6 text-sm"),
			g.Textf("© %d Índice SP. Dados enviados pela comunidade.", now.Year()),
		),
	)
}

// Notice replaces a toast: a coloured banner shown above the page content.
type Notice struct {
	Title       string
	Description string
	Destructive bool
}

func noticeBanner(n *Notice) g.Node {
	if n == nil {
		return nil
	}
	classes := "border px-4 py-3 rounded-lg mb-6 "
	if n.Destructive {
		classes += "bg-red-50 border-red-200 text-red-700"
	} else {
		classes += "bg-emerald-50 border-emerald-200 text-emerald-800"
	}
	return Div(Class(classes), Role("status"),
		Strong(g.Text(n.Title)),
		g.If(n.Description != "", P(Class("text-sm mt-1"), g.Text(n.Description))),
	)
}

// redirectWithNotice sends the browser to path with a notice code and
// optional submission id in the query string.
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, code, id string) {
	q := url.Values{}
	q.Set("notice", code)
	if id != "" {
		q.Set("id", id)
	}
	http.Redirect(w, r, path+"?"+q.Encode(), http.StatusSeeOther)
}

// noticeFromQuery rebuilds the notice a redirect asked for.
func (s *Site) noticeFromQuery(r *http.Request) *Notice {
	code := r.URL.Query().Get("notice")
	if code == "" {
		return nil
	}
	var sub *storage.Submission
	if id := r.URL.Query().Get("id"); id != "" {
		sub, _ = s.subs.Get(r.Context(), id)
	}
	switch code {
	case "submitted":
		return &Notice{Title: "Preço enviado!", Description: "Sua contribuição foi registrada e aguarda validação"}
	case "approved":
		n := &Notice{Title: "Preço aprovado"}
		if sub != nil {
			n.Description = fmt.Sprintf("%s no %s foi validado", sub.Product, sub.Supermarket)
		}
		return n
	case "rejected":
		n := &Notice{Title: "Preço rejeitado", Destructive: true}
		if sub != nil && sub.SubmittedBy != "" {
			n.Description = fmt.Sprintf("Contribuição de %s foi rejeitada", sub.SubmittedBy)
		}
		return n
	case "already_decided":
		return &Notice{Title: "Contribuição já moderada", Description: "Aprovações e rejeições não podem ser alteradas", Destructive: true}
	case "not_found":
		return &Notice{Title: "Contribuição não encontrada", Destructive: true}
	}
	return nil
}

func notFoundContent() g.Node {
	return Main(Class("max-w-3xl mx-auto px-4 py-16 text-center"),
		H1(Class("text-3xl font-bold mb-4"), g.Text("Página não encontrada")),
		A(Href("/"), Class("text-sp-primary underline"), g.Text("Voltar ao dashboard")),
	)
}

func errorBox(prefix string, err error) g.Node {
	return Div(Class("bg-red-50 border border-red-200 text-red-700 px-4 py-3 rounded-lg mb-6"),
		Strong(g.Text(prefix)),
		g.Text(err.Error()),
	)
}

func card(title string, children ...g.Node) g.Node {
	return Div(Class("bg-white border border-slate-200 rounded-xl shadow-sm"),
		g.If(title != "", Div(Class("px-6 pt-6 pb-2"), H3(Class("text-lg font-semibold"), g.Text(title)))),
		Div(Class("px-6 pb-6 pt-2"), g.Group(children)),
	)
}
