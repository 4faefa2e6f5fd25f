package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indicesp/indicesp/pkg/archival"
	"github.com/indicesp/indicesp/pkg/catalog"
	"github.com/indicesp/indicesp/pkg/wayback"
)

func TestParseMonth(t *testing.T) {
	y, m, err := parseMonth("2024-12")
	require.NoError(t, err)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.December, m)

	for _, bad := range []string{"2024-13", "12/2024", "2024", ""} {
		_, _, err := parseMonth(bad)
		assert.Error(t, err, bad)
	}
}

func TestPrintLastSaturdays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printLastSaturdays(&buf, 2024, time.December, 3, ""))
	assert.Equal(t, "2024-12-28\n2025-01-25\n2025-02-22\n", buf.String())

	buf.Reset()
	require.NoError(t, printLastSaturdays(&buf, 2024, time.December, 1, "https://www.atacadao.com.br/arroz"))
	assert.Equal(t, "2024-12-28\thttps://web.archive.org/web/20241228120000/https://www.atacadao.com.br/arroz\n", buf.String())

	assert.Error(t, printLastSaturdays(&buf, 2024, time.December, 0, ""))
}

func TestRunValidate(t *testing.T) {
	v := archival.NewValidator(catalog.Default().Brands())
	var buf bytes.Buffer

	err := runValidate(&buf, v, "https://web.archive.org/web/20241228120000/https://www.atacadao.com.br/arroz", "Tio João")
	require.NoError(t, err)
	assert.Equal(t, "OK\t2024-12-28\tSaturday\n", buf.String())

	buf.Reset()
	err = runValidate(&buf, v, "https://web.archive.org/web/20241221120000/https://www.atacadao.com.br/arroz", "Tio João")
	assert.ErrorIs(t, err, archival.ErrNotLastSaturday)
	assert.Contains(t, buf.String(), "REJECTED\tnot_last_saturday")
}

func TestLoadCatalog(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Reset()
	viper.Set("catalog.brands", []string{"Marca Própria"})

	cat, err := loadCatalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"Marca Própria"}, cat.Brands().Items())
	assert.Equal(t, 7, cat.Products().Len())
	assert.True(t, cat.SupermarketNames().Contains("Carrefour"))
}

func TestPrintCatalog(t *testing.T) {
	var buf bytes.Buffer
	printCatalog(&buf, catalog.Default())
	out := buf.String()
	assert.Contains(t, out, "  Atacadão (atacadao.com.br)\n")
	assert.Contains(t, out, "Units:\n  kg\n  L\n  unidade\n  pacote\n")
	assert.Contains(t, out, "  3 Corações\n")
}

func TestPrintFindResult(t *testing.T) {
	var buf bytes.Buffer
	printFindResult(&buf, &wayback.LastSaturdayResult{Target: archival.NewDate(2025, time.May, 31)})
	assert.Contains(t, buf.String(), "none archived")

	buf.Reset()
	printFindResult(&buf, &wayback.LastSaturdayResult{
		Target: archival.NewDate(2024, time.December, 28),
		Capture: &wayback.Capture{
			URL:  "http://web.archive.org/web/20241228093015/https://www.atacadao.com.br/arroz",
			Date: archival.NewDate(2024, time.December, 28),
		},
		Match: true,
	})
	assert.Contains(t, buf.String(), "Usable")
	assert.Contains(t, buf.String(), "yes")
}
