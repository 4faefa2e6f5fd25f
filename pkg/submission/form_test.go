package submission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"25.90", "25.90", true},
		{"25,90", "25.90", true},
		{"R$ 4,89", "4.89", true},
		{"1.234,56", "1234.56", true},
		{"R$ 1.234", "1234.00", true},
		{"1.234.567", "1234567.00", true},
		{"12.50", "12.50", true},
		{"7.5", "7.50", true},
		{"3.14159", "3.14", true},
		{"0", "", false},
		{"-2,00", "", false},
		{"", "", false},
		{"vinte", "", false},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if !tt.ok {
			assert.ErrorIs(t, err, ErrInvalidPrice, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.StringFixed(2), tt.in)
	}
}

func TestForm_Normalize(t *testing.T) {
	f := Form{
		Supermarket:  " Carrefour ",
		Brand:        " Italac\t",
		Observations: "<script>alert(1)</script>leve 3 pague 2",
		SubmittedBy:  "  Maria   Santos ",
	}.Normalize()
	assert.Equal(t, "Carrefour", f.Supermarket)
	assert.Equal(t, "Italac", f.Brand)
	assert.NotContains(t, f.Observations, "<script>")
	assert.Contains(t, f.Observations, "leve 3 pague 2")
	assert.Equal(t, "Maria Santos", f.SubmittedBy)
}

func TestAge(t *testing.T) {
	now := time.Date(2025, 1, 12, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "agora"},
		{30 * time.Second, "há 30 segundos"},
		{90 * time.Second, "há 1 minuto"},
		{45 * time.Minute, "há 45 minutos"},
		{time.Hour, "há 1 hora"},
		{4 * time.Hour, "há 4 horas"},
		{30 * time.Hour, "há 1 dia"},
		{72 * time.Hour, "há 3 dias"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Age(now.Add(-tt.ago), now), tt.ago.String())
	}
	assert.Equal(t, "daqui a 2 horas", Age(now.Add(2*time.Hour), now))
}
