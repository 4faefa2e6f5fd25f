package submission

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/indicesp/indicesp/pkg/archival"
	"github.com/indicesp/indicesp/pkg/storage"
)

// Form is what a contributor sends. Everything arrives as text, the way an
// HTML form or a JSON body would carry it.
type Form struct {
	Supermarket  string `json:"supermarket"`
	Product      string `json:"product"`
	Price        string `json:"price"`
	Unit         string `json:"unit,omitempty"`
	Location     string `json:"location,omitempty"`
	Brand        string `json:"brand,omitempty"`
	Observations string `json:"observations,omitempty"`
	ImageRef     string `json:"image_ref,omitempty"`
	ArchivalURL  string `json:"archival_url,omitempty"`
	SubmittedBy  string `json:"submitted_by,omitempty"`
}

// Normalize trims every field and strips markup from the free-text ones.
func (f Form) Normalize() Form {
	return Form{
		Supermarket:  strings.TrimSpace(f.Supermarket),
		Product:      strings.TrimSpace(f.Product),
		Price:        strings.TrimSpace(f.Price),
		Unit:         strings.TrimSpace(f.Unit),
		Location:     storage.SanitizeText(f.Location),
		Brand:        strings.TrimSpace(f.Brand),
		Observations: storage.SanitizeText(f.Observations),
		ImageRef:     strings.TrimSpace(f.ImageRef),
		ArchivalURL:  strings.TrimSpace(f.ArchivalURL),
		SubmittedBy:  storage.NormalizeText(f.SubmittedBy),
	}
}

var (
	ErrMissingRequired    = errors.New("supermarket, product and price are required")
	ErrInvalidPrice       = errors.New("price must be a positive amount")
	ErrUnknownSupermarket = errors.New("supermarket is not in the catalog")
	ErrUnknownProduct     = errors.New("product is not in the catalog")
	ErrUnknownUnit        = errors.New("unit is not in the catalog")

	ErrNotFound       = storage.ErrNotFound
	ErrAlreadyDecided = storage.ErrAlreadyDecided
)

// FieldError ties an intake failure to the form field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Message is the Portuguese text shown next to the form.
func (e *FieldError) Message() string {
	switch {
	case errors.Is(e.Err, ErrMissingRequired):
		return "Preencha supermercado, produto e preço"
	case errors.Is(e.Err, ErrInvalidPrice):
		return "Informe um preço válido, por exemplo 25,90"
	case errors.Is(e.Err, ErrUnknownSupermarket):
		return "Supermercado não cadastrado"
	case errors.Is(e.Err, ErrUnknownProduct):
		return "Produto não cadastrado"
	case errors.Is(e.Err, ErrUnknownUnit):
		return "Unidade não reconhecida"
	}
	if k := archival.KindOf(e.Err); k != 0 {
		return k.Message()
	}
	return "Não foi possível registrar a contribuição"
}

// dotThousands matches amounts like "1.234" or "12.345.678", where every dot
// groups thousands.
var dotThousands = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

// ParsePrice reads a price typed as "25.90", "25,90", "R$ 1.234,56",
// "R$ 1.234" or similar. The result is rounded to centavos and must be positive.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if s == "" {
		return decimal.Zero, ErrInvalidPrice
	}
	if strings.Contains(s, ",") {
		// Brazilian notation: dots group thousands, the comma is decimal.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else if dotThousands.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidPrice
	}
	return d, nil
}
