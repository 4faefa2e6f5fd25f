package archival

import "github.com/indicesp/indicesp/pkg/catalog"

var defaultValidator = NewValidator(catalog.Default().Brands())

// ValidateCapture checks url and brand against the built-in accepted brands.
func ValidateCapture(url, brand string) (Date, error) {
	return defaultValidator.Validate(url, brand)
}
