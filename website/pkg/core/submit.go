package core

import (
	"errors"
	"net/http"
	"strings"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/indicesp/indicesp/pkg/archival"
	"github.com/indicesp/indicesp/pkg/catalog"
	"github.com/indicesp/indicesp/pkg/submission"
)

const maxUploadBytes = 10 << 20

const (
	inputClass = "w-full border border-slate-300 rounded-md px-3 py-2 text-sm focus:border-sp-primary"
	labelClass = "block text-sm font-medium text-slate-700 mb-1.5"
)

func selectField(id, label, placeholder, current string, options []string) g.Node {
	opts := []g.Node{Option(Value(""), g.Text(placeholder))}
	for _, o := range options {
		if o == current {
			opts = append(opts, Option(Value(o), g.Text(o), Selected()))
		} else {
			opts = append(opts, Option(Value(o), g.Text(o)))
		}
	}
	return Div(
		Label(For(id), Class(labelClass), g.Text(label)),
		Select(ID(id), Name(id), Class(inputClass), g.Group(opts)),
	)
}

func textField(id, label, placeholder, current string) g.Node {
	return Div(
		Label(For(id), Class(labelClass), g.Text(label)),
		Input(Type("text"), ID(id), Name(id), Placeholder(placeholder), Value(current), Class(inputClass)),
	)
}

// SubmitContent renders the contribution form. f carries the values to keep
// after a failed attempt and formErr the reason it failed.
func SubmitContent(c *catalog.Catalog, f submission.Form, formErr *submission.FieldError) g.Node {
	var errNode g.Node
	if formErr != nil {
		errNode = Div(Class("bg-red-50 border border-red-200 text-red-700 px-4 py-3 rounded-lg"), Role("alert"),
			g.Text(formErr.Message()),
		)
	}

	return Main(Class("max-w-2xl mx-auto px-4 py-8"),
		card("Contribuir com Preço",
			Form(Method("POST"), Action("/submit"), g.Attr("enctype", "multipart/form-data"), Class("space-y-5"),
				errNode,
				Div(Class("grid grid-cols-1 md:grid-cols-2 gap-4"),
					selectField("supermarket", "Supermercado *", "Selecione o supermercado", f.Supermarket, c.SupermarketNames().Items()),
					selectField("product", "Produto *", "Selecione o produto", f.Product, c.Products().Items()),
				),
				Div(Class("grid grid-cols-1 md:grid-cols-2 gap-4"),
					Div(
						Label(For("price"), Class(labelClass), g.Text("Preço (R$) *")),
						Input(Type("text"), ID("price"), Name("price"), Placeholder("0,00"), Value(f.Price), g.Attr("inputmode", "decimal"), Class(inputClass)),
					),
					selectField("unit", "Unidade", "Selecione a unidade", f.Unit, c.Units().Items()),
				),
				Div(Class("grid grid-cols-1 md:grid-cols-2 gap-4"),
					textField("brand", "Marca", "Ex: Tio João", f.Brand),
					textField("location", "Região/Bairro", "Ex: Vila Madalena", f.Location),
				),
				Div(
					Label(For("archival_url"), Class(labelClass), g.Text("Snapshot do Wayback Machine")),
					Input(Type("url"), ID("archival_url"), Name("archival_url"), Value(f.ArchivalURL),
						Placeholder("https://web.archive.org/web/AAAAMMDDhhmmss/..."), Class(inputClass),
						g.Attr("hx-post", "/submit/check"),
						g.Attr("hx-trigger", "change, keyup changed delay:500ms"),
						g.Attr("hx-include", "#brand"),
						g.Attr("hx-target", "#capture-check"),
					),
					Div(ID("capture-check"), Class("mt-2")),
					P(Class("text-xs text-slate-500 mt-1"), g.Text("Opcional. O snapshot precisa ser do último sábado do mês.")),
				),
				Div(
					Label(For("observations"), Class(labelClass), g.Text("Observações")),
					g.El("textarea", ID("observations"), Name("observations"), g.Attr("rows", "3"),
						Placeholder("Informações adicionais, promoções, etc."), Class(inputClass),
						g.Text(f.Observations),
					),
				),
				Div(
					Label(For("image"), Class(labelClass), g.Text("Foto da Etiqueta de Preço")),
					Input(Type("file"), ID("image"), Name("image"), g.Attr("accept", "image/*"), Class("text-sm")),
					P(Class("text-xs text-slate-500 mt-1"), g.Text("A foto ajuda na validação dos dados e aumenta a confiabilidade")),
				),
				textField("submitted_by", "Seu nome", "Como quer aparecer na fila", f.SubmittedBy),
				Div(Class("flex gap-3 pt-2"),
					A(Href("/"), Class("flex-1 text-center px-4 py-2 rounded-md text-sm font-medium border border-slate-300 hover:bg-slate-50"), g.Text("Cancelar")),
					Button(Type("submit"), Class("flex-1 px-4 py-2 rounded-md text-sm font-semibold text-white bg-gradient-to-r from-sp-primary to-sp-light hover:opacity-90"), g.Text("Enviar Contribuição")),
				),
			),
		),
	)
}

func (s *Site) submitFormHandler(w http.ResponseWriter, r *http.Request) {
	f := submission.Form{Supermarket: r.URL.Query().Get("supermarket")}
	s.render(w, "Contribuir - Índice SP", "/submit", SubmitContent(s.subs.Catalog(), f, nil))
}

// formFrom reads the contribution from a urlencoded or multipart body. The
// photo itself is not kept, only its file name as a reference.
func formFrom(r *http.Request) submission.Form {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		r.ParseForm()
	}
	f := submission.Form{
		Supermarket:  r.FormValue("supermarket"),
		Product:      r.FormValue("product"),
		Price:        r.FormValue("price"),
		Unit:         r.FormValue("unit"),
		Location:     r.FormValue("location"),
		Brand:        r.FormValue("brand"),
		Observations: r.FormValue("observations"),
		ArchivalURL:  r.FormValue("archival_url"),
		SubmittedBy:  r.FormValue("submitted_by"),
	}
	if file, hdr, err := r.FormFile("image"); err == nil {
		f.ImageRef = hdr.Filename
		file.Close()
	}
	return f
}

func (s *Site) submitHandler(w http.ResponseWriter, r *http.Request) {
	f := formFrom(r)
	sub, err := s.subs.Submit(r.Context(), f)
	if err == nil {
		redirectWithNotice(w, r, "/validation", "submitted", sub.ID)
		return
	}

	var fe *submission.FieldError
	if !errors.As(err, &fe) {
		http.Error(w, "Erro interno", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnprocessableEntity)
	if err := PageLayout("Contribuir - Índice SP", "Envie um preço observado", Navbar("/submit"), SubmitContent(s.subs.Catalog(), f, fe), FooterEl(s.now())).Render(w); err != nil {
		s.log.Errorf("Rendering /submit: %v", err)
	}
}

// CaptureCheck is the fragment htmx swaps under the snapshot field.
func CaptureCheck(d archival.Date, err error) g.Node {
	if err != nil {
		return P(Class("text-sm text-red-700"), g.Text(archival.KindOf(err).Message()))
	}
	return P(Class("text-sm text-sp-down"), g.Textf("Snapshot de %s aceito", d.Time().Format("02/01/2006")))
}

func (s *Site) checkCaptureHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if strings.TrimSpace(r.FormValue("archival_url")) == "" {
		return
	}
	d, err := s.subs.CheckCapture(r.FormValue("archival_url"), r.FormValue("brand"))
	if err := CaptureCheck(d, err).Render(w); err != nil {
		s.log.Errorf("Rendering capture check: %v", err)
	}
}
