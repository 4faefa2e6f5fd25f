package catalog

// DefaultConfig is the catalog used when the config file leaves a section out.
func DefaultConfig() Config {
	return Config{
		Supermarkets: []SupermarketConfig{
			{Name: "Atacadão", Domains: []string{"atacadao.com.br"}},
			{Name: "Assaí Atacadista", Domains: []string{"assai.com.br"}},
			{Name: "Carrefour", Domains: []string{"carrefour.com.br"}},
		},
		Products: []string{
			"Arroz branco tipo 1 - 5kg",
			"Feijão carioca - 1kg",
			"Leite integral - 1L",
			"Açúcar cristal - 1kg",
			"Óleo de soja - 900ml",
			"Café torrado - 500g",
			"Farinha de trigo - 1kg",
		},
		Units: []string{"kg", "L", "unidade", "pacote"},
		Brands: []string{
			"Tio João",
			"Camil",
			"Prato Fino",
			"Kicaldo",
			"Piracanjuba",
			"Italac",
			"União",
			"Caravelas",
			"Soya",
			"Liza",
			"Pilão",
			"3 Corações",
			"Melitta",
			"Dona Benta",
			"Renata",
		},
	}
}
