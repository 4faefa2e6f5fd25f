// Package dashboard holds the figures shown on the public dashboard. The
// index and inflation numbers are fixed demonstration values; only the queue
// counters come from real submissions.
package dashboard

import (
	"time"

	"github.com/indicesp/indicesp/pkg/storage"
)

type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

type Variant string

const (
	VariantDefault   Variant = "default"
	VariantHighlight Variant = "highlight"
	VariantCritical  Variant = "critical"
)

// MetricCard is one headline number.
type MetricCard struct {
	Title   string  `json:"title"`
	Value   string  `json:"value"`
	Change  float64 `json:"change"`
	Trend   Trend   `json:"trend"`
	Period  string  `json:"period"`
	Variant Variant `json:"variant"`
}

// Point is one weekly reading of the index.
type Point struct {
	Date   string  `json:"date"` // dd/mm
	Index  float64 `json:"index"`
	Change float64 `json:"change"`
}

// SupermarketSummary is a chain's card on the Supermercados tab.
type SupermarketSummary struct {
	Name                 string  `json:"name"`
	LastUpdate           string  `json:"last_update"` // dd/mm/yyyy
	AvgInflation         float64 `json:"avg_inflation"`
	ProductsTracked      int     `json:"products_tracked"`
	ValidatedSubmissions int     `json:"validated_submissions"`
	PendingValidation    int     `json:"pending_validation"`
	Locations            int     `json:"locations"`
}

// Trend of a chain's average inflation, as coloured on its card.
func (s SupermarketSummary) Trend() Trend {
	switch {
	case s.AvgInflation > 0:
		return TrendUp
	case s.AvgInflation < 0:
		return TrendDown
	}
	return TrendNeutral
}

type Snapshot struct {
	Metrics      []MetricCard         `json:"metrics"`
	Series       []Point              `json:"series"`
	Supermarkets []SupermarketSummary `json:"supermarkets"`
	GeneratedAt  time.Time            `json:"generated_at"`
}

// Mock returns the demonstration dashboard.
func Mock() Snapshot {
	return Snapshot{
		Metrics: []MetricCard{
			{Title: "Índice SP Atual", Value: "107.1", Change: 1.2, Trend: TrendUp, Period: "vs semana anterior", Variant: VariantHighlight},
			{Title: "Inflação Mensal", Value: "7.1%", Change: 0.3, Trend: TrendUp, Period: "Janeiro 2025", Variant: VariantDefault},
			{Title: "Contribuições", Value: "579", Change: 12, Trend: TrendUp, Period: "esta semana", Variant: VariantDefault},
			{Title: "Taxa Validação", Value: "94.2%", Change: 2.1, Trend: TrendUp, Period: "últimos 30 dias", Variant: VariantDefault},
		},
		Series: []Point{
			{"01/12", 100.0, 0},
			{"08/12", 101.2, 1.2},
			{"15/12", 102.8, 1.6},
			{"22/12", 103.5, 0.7},
			{"29/12", 104.2, 0.7},
			{"05/01", 105.8, 1.5},
			{"12/01", 107.1, 1.2},
		},
		Supermarkets: []SupermarketSummary{
			{Name: "Atacadão", LastUpdate: "12/01/2025", AvgInflation: 2.3, ProductsTracked: 15, ValidatedSubmissions: 234, PendingValidation: 12, Locations: 45},
			{Name: "Assaí Atacadista", LastUpdate: "12/01/2025", AvgInflation: 1.8, ProductsTracked: 18, ValidatedSubmissions: 189, PendingValidation: 8, Locations: 32},
			{Name: "Carrefour", LastUpdate: "11/01/2025", AvgInflation: 2.7, ProductsTracked: 12, ValidatedSubmissions: 156, PendingValidation: 15, Locations: 28},
		},
	}
}

// WithQueue adds live queue counts on top of the demonstration numbers:
// pending and approved submissions and distinct locations per chain. Chains
// the snapshot doesn't list yet get their own card. The receiver is not
// modified.
func (s Snapshot) WithQueue(stats []storage.QueueStats, at time.Time) Snapshot {
	out := s
	out.Supermarkets = append([]SupermarketSummary(nil), s.Supermarkets...)
	out.GeneratedAt = at

	idx := make(map[string]int, len(out.Supermarkets))
	for i, m := range out.Supermarkets {
		idx[m.Name] = i
	}
	for _, st := range stats {
		i, ok := idx[st.Supermarket]
		if !ok {
			out.Supermarkets = append(out.Supermarkets, SupermarketSummary{Name: st.Supermarket})
			i = len(out.Supermarkets) - 1
			idx[st.Supermarket] = i
		}
		m := &out.Supermarkets[i]
		m.PendingValidation += st.Pending
		m.ValidatedSubmissions += st.Approved
		m.Locations += st.Locations
		if st.Total() > 0 && !at.IsZero() {
			m.LastUpdate = at.Format("02/01/2006")
		}
	}
	return out
}

// Pending sums the pending counters over all chains.
func (s Snapshot) Pending() int {
	n := 0
	for _, m := range s.Supermarkets {
		n += m.PendingValidation
	}
	return n
}
