package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/indicesp/indicesp/pkg/storage"
)

type seedEntry struct {
	ago  time.Duration
	form Form
}

var demoQueue = []seedEntry{
	{2 * time.Hour, Form{
		Supermarket:  "Atacadão",
		Product:      "Arroz branco tipo 1 - 5kg",
		Price:        "25.90",
		Location:     "Vila Madalena",
		Brand:        "Tio João",
		Observations: "Promoção até o final da semana",
		ImageRef:     "etiqueta-arroz.jpg",
		SubmittedBy:  "João Silva",
	}},
	{4 * time.Hour, Form{
		Supermarket: "Carrefour",
		Product:     "Leite integral - 1L",
		Price:       "4.89",
		Location:    "Pinheiros",
		SubmittedBy: "Maria Santos",
	}},
	{6 * time.Hour, Form{
		Supermarket: "Assaí Atacadista",
		Product:     "Feijão carioca - 1kg",
		Price:       "7.50",
		Location:    "Liberdade",
		Brand:       "Camil",
		ImageRef:    "etiqueta-feijao.jpg",
		SubmittedBy: "Carlos Lima",
	}},
}

// Seed queues the demonstration contributions shown on a fresh dashboard,
// dated two, four and six hours before now. It goes through the normal
// intake path, so a catalog without these entries makes it fail.
func (s *Service) Seed(ctx context.Context) ([]storage.Submission, error) {
	now := s.now()
	out := make([]storage.Submission, 0, len(demoQueue))
	for _, e := range demoQueue {
		sub, err := s.submitAt(ctx, e.form, now.Add(-e.ago))
		if err != nil {
			return out, fmt.Errorf("seeding %q: %w", e.form.Product, err)
		}
		out = append(out, *sub)
	}
	return out, nil
}
