package core

import (
	"net/http"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/indicesp/indicesp/pkg/catalog"
)

// --- About Content ---

const aboutMarkdownContent = `
# Sobre o Índice SP

O **Índice SP** é uma iniciativa colaborativa para monitorar a inflação em tempo real
nos principais supermercados de São Paulo. Através da contribuição da comunidade,
coletamos preços de produtos essenciais e calculamos um índice local de inflação.

## Como funciona:

*   Colaboradores enviam preços de produtos básicos
*   Cada contribuição é validada pela comunidade
*   Calculamos médias ponderadas por região e categoria
*   Geramos um índice de inflação atualizado semanalmente

## Produtos monitorados:

Arroz, feijão, leite, açúcar, óleo, café, farinha de trigo e outros itens da cesta
básica paulistana.

## Snapshots arquivados

Uma contribuição pode trazer um link do [Wayback Machine](https://web.archive.org/) como
prova do preço no site do supermercado. O link só é aceito quando:

1.  é um snapshot no formato ` + "`https://web.archive.org/web/AAAAMMDDhhmmss/...`" + `;
2.  a data do snapshot existe no calendário;
3.  a data é o **último sábado do mês**;
4.  a marca informada está na lista de marcas aceitas.

## API

Os mesmos dados estão disponíveis em JSON em ` + "`/api/dashboard`, `/api/submissions` e `/api/catalog`" + `.
`

// AboutContent renders the about page, followed by the accepted brands.
func AboutContent(c *catalog.Catalog) g.Node {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)

	htmlOutput := markdown.ToHTML([]byte(aboutMarkdownContent), p, nil)

	return Main(Class("max-w-4xl mx-auto px-4 py-8"),
		Section(Class("bg-white border border-slate-200 rounded-xl shadow-sm p-6 md:p-8 lg:p-12 prose max-w-none"),
			g.Raw(string(htmlOutput)),
			H3(g.Text("Marcas aceitas")),
			P(g.Text(strings.Join(c.Brands().Items(), ", "))),
		),
	)
}

func (s *Site) aboutHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, "Sobre - Índice SP", "/about", AboutContent(s.subs.Catalog()))
}
