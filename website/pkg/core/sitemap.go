package core

import (
	"fmt"
	"html"
	"net/http"
)

func (s *Site) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprint(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)

	baseURL := fmt.Sprintf("https://%s", s.domain)

	addSitemapURLEntry := func(path string, changefreq string, priority float64) {
		escapedPath := html.EscapeString(path)
		fmt.Fprintf(w, "<url><loc>%s%s</loc><changefreq>%s</changefreq><priority>%.1f</priority></url>\n", baseURL, escapedPath, changefreq, priority)
	}

	addSitemapURLEntry("/", "daily", 1.0)
	addSitemapURLEntry("/supermarkets", "daily", 0.9)
	addSitemapURLEntry("/submit", "monthly", 0.8)
	addSitemapURLEntry("/about", "monthly", 0.6)

	fmt.Fprint(w, `</urlset>`)
}

func (s *Site) robotsTxtHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "User-agent: *\nDisallow: /validation\nDisallow: /activity\nDisallow: /api/\n\nSitemap: https://%s/sitemap.xml\n", s.domain)
}
