package archival

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indicesp/indicesp/pkg/catalog"
)

const page = "https://www.carrefour.com.br/arroz-tio-joao-5kg"

func TestValidateCapture_LastSaturdayAccepted(t *testing.T) {
	got, err := ValidateCapture("https://web.archive.org/web/20241228120000/"+page, "Tio João")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.December, 28), got)
}

func TestValidateCapture_TimeOfDayIgnored(t *testing.T) {
	for _, ts := range []string{"20241228000000", "20241228246000", "20241228999999"} {
		t.Run(ts, func(t *testing.T) {
			got, err := ValidateCapture("https://web.archive.org/web/"+ts+"/"+page, "Tio João")
			require.NoError(t, err)
			assert.Equal(t, NewDate(2024, time.December, 28), got)
		})
	}
}

func TestValidateCapture_Failures(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		brand string
		kind  Kind
		is    error
	}{
		{"empty", "", "Tio João", InvalidURLFormat, ErrInvalidURLFormat},
		{"other host", "https://archive.org/web/20241228120000/" + page, "Tio João", InvalidURLFormat, ErrInvalidURLFormat},
		{"short timestamp", "https://web.archive.org/web/2024122812000/" + page, "Tio João", InvalidURLFormat, ErrInvalidURLFormat},
		{"missing trailing slash", "https://web.archive.org/web/20241228120000", "Tio João", InvalidURLFormat, ErrInvalidURLFormat},
		{"ftp scheme", "ftp://web.archive.org/web/20241228120000/" + page, "Tio João", InvalidURLFormat, ErrInvalidURLFormat},
		{"leading space", " https://web.archive.org/web/20241228120000/" + page, "Tio João", InvalidURLFormat, ErrInvalidURLFormat},
		{"dot is literal", "https://webXarchive.org/web/20241228120000/" + page, "Tio João", InvalidURLFormat, ErrInvalidURLFormat},
		{"all nines", "https://web.archive.org/web/99999999999999/" + page, "Tio João", UnparsableDate, ErrUnparsableDate},
		{"february 30", "https://web.archive.org/web/20240230120000/" + page, "Tio João", UnparsableDate, ErrUnparsableDate},
		{"month zero", "https://web.archive.org/web/20240028120000/" + page, "Tio João", UnparsableDate, ErrUnparsableDate},
		{"not last saturday", "https://web.archive.org/web/20241221120000/" + page, "Tio João", NotLastSaturday, ErrNotLastSaturday},
		{"last day but tuesday", "https://web.archive.org/web/20241231120000/" + page, "Tio João", NotLastSaturday, ErrNotLastSaturday},
		{"unknown brand", "https://web.archive.org/web/20241228120000/" + page, "MarcaDesconhecida", BrandNotAccepted, ErrBrandNotAccepted},
		{"brand case differs", "https://web.archive.org/web/20241228120000/" + page, "tio joão", BrandNotAccepted, ErrBrandNotAccepted},
		{"brand empty", "https://web.archive.org/web/20241228120000/" + page, "", BrandNotAccepted, ErrBrandNotAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateCapture(tt.url, tt.brand)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.True(t, errors.Is(err, tt.is), "errors.Is(%v, %v)", err, tt.is)
		})
	}
}

func TestValidate_FirstFailureWins(t *testing.T) {
	// Bad date and bad brand together: only the date is reported.
	_, err := ValidateCapture("https://web.archive.org/web/20241221120000/"+page, "MarcaDesconhecida")
	assert.Equal(t, NotLastSaturday, KindOf(err))

	_, err = ValidateCapture("http://web.archive.org/web/99999999999999/"+page, "MarcaDesconhecida")
	assert.Equal(t, UnparsableDate, KindOf(err))
}

func TestValidate_Idempotent(t *testing.T) {
	v := NewValidator(catalog.NewSet("Camil"))
	url := "http://web.archive.org/web/20240831235959/" + page

	d1, err1 := v.Validate(url, "Camil")
	d2, err2 := v.Validate(url, "Camil")
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, d1, d2)

	_, err1 = v.Validate(url, "Tio João")
	_, err2 = v.Validate(url, "Tio João")
	assert.Equal(t, err1.Error(), err2.Error())
	assert.Equal(t, KindOf(err1), KindOf(err2))
}

func TestValidate_MonthEndingOnSaturday(t *testing.T) {
	v := NewValidator(catalog.NewSet("Camil"))

	d, err := v.Validate("https://web.archive.org/web/20240831000000/"+page, "Camil")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.August, 31), d)

	_, err = v.Validate("https://web.archive.org/web/20240824000000/"+page, "Camil")
	assert.ErrorIs(t, err, ErrNotLastSaturday)
}

func TestValidate_NilBrandsRejectsEverything(t *testing.T) {
	_, err := NewValidator(nil).Validate("https://web.archive.org/web/20241228120000/"+page, "Tio João")
	assert.Equal(t, BrandNotAccepted, KindOf(err))
}

func TestCaptureError_UnwrapsParseError(t *testing.T) {
	_, err := ValidateCapture("https://web.archive.org/web/20241328120000/"+page, "Tio João")

	var ce *CaptureError
	require.True(t, errors.As(err, &ce))
	require.NotNil(t, ce.Err)
	assert.Contains(t, err.Error(), "month 13")
}

func TestKindOf_ForeignError(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(errors.New("boom")))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestKindMessagesAreDistinct(t *testing.T) {
	seen := map[string]Kind{}
	for _, k := range []Kind{InvalidURLFormat, UnparsableDate, NotLastSaturday, BrandNotAccepted} {
		prev, dup := seen[k.Message()]
		assert.False(t, dup, "%v shares its message with %v", k, prev)
		seen[k.Message()] = k
	}
}

func TestCaptureURL_RoundTrips(t *testing.T) {
	d := LastSaturday(2025, time.May)
	url := CaptureURL(d, page)
	assert.Equal(t, "https://web.archive.org/web/20250531120000/"+page, url)

	got, err := ValidateCapture(url, "Camil")
	require.NoError(t, err)
	assert.Equal(t, d, got)
}
