// Package catalog holds the fixed lists a submission is checked against:
// supermarkets, products, units and the brands accepted for archival evidence.
// Every value is immutable once built.
package catalog

import "strings"

// Set is an immutable, insertion-ordered set of strings. The zero value is empty.
type Set struct {
	items []string
	index map[string]struct{}
}

// NewSet builds a set from items, dropping blanks and duplicates. Items are
// kept verbatim; membership is exact and case-sensitive.
func NewSet(items ...string) Set {
	s := Set{index: make(map[string]struct{}, len(items))}
	for _, it := range items {
		if strings.TrimSpace(it) == "" {
			continue
		}
		if _, dup := s.index[it]; dup {
			continue
		}
		s.index[it] = struct{}{}
		s.items = append(s.items, it)
	}
	return s
}

func (s Set) Contains(v string) bool {
	_, ok := s.index[v]
	return ok
}

func (s Set) Len() int { return len(s.items) }

// Items returns a copy of the members in insertion order.
func (s Set) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Supermarket is a chain whose prices are tracked, with the web domains its
// online store is served from.
type Supermarket struct {
	Name    string
	Domains []string
}

// OwnsDomain reports whether registrable domain d belongs to the chain.
func (s Supermarket) OwnsDomain(d string) bool {
	d = strings.ToLower(strings.TrimSpace(d))
	for _, own := range s.Domains {
		if strings.EqualFold(own, d) {
			return true
		}
	}
	return false
}

// Catalog bundles the configuration sets.
type Catalog struct {
	supermarkets []Supermarket
	names        Set
	products     Set
	units        Set
	brands       Set
}

// SupermarketConfig and Config are the externalised form, decoded from the
// config file.
type SupermarketConfig struct {
	Name    string   `mapstructure:"name"`
	Domains []string `mapstructure:"domains"`
}

type Config struct {
	Supermarkets []SupermarketConfig `mapstructure:"supermarkets"`
	Products     []string            `mapstructure:"products"`
	Units        []string            `mapstructure:"units"`
	Brands       []string            `mapstructure:"brands"`
}

// New builds a catalog from cfg. Sections left empty take the defaults.
func New(cfg Config) *Catalog {
	def := DefaultConfig()
	if len(cfg.Supermarkets) == 0 {
		cfg.Supermarkets = def.Supermarkets
	}
	if len(cfg.Products) == 0 {
		cfg.Products = def.Products
	}
	if len(cfg.Units) == 0 {
		cfg.Units = def.Units
	}
	if len(cfg.Brands) == 0 {
		cfg.Brands = def.Brands
	}

	c := &Catalog{
		products: NewSet(cfg.Products...),
		units:    NewSet(cfg.Units...),
		brands:   NewSet(cfg.Brands...),
	}
	var names []string
	for _, sc := range cfg.Supermarkets {
		name := strings.TrimSpace(sc.Name)
		if name == "" {
			continue
		}
		domains := make([]string, 0, len(sc.Domains))
		for _, d := range sc.Domains {
			if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
				domains = append(domains, d)
			}
		}
		c.supermarkets = append(c.supermarkets, Supermarket{Name: name, Domains: domains})
		names = append(names, name)
	}
	c.names = NewSet(names...)
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(Config{})
}

func (c *Catalog) Products() Set { return c.products }
func (c *Catalog) Units() Set    { return c.units }
func (c *Catalog) Brands() Set   { return c.brands }

// SupermarketNames is the set of chain names.
func (c *Catalog) SupermarketNames() Set { return c.names }

// Supermarkets returns a copy of the configured chains.
func (c *Catalog) Supermarkets() []Supermarket {
	out := make([]Supermarket, len(c.supermarkets))
	for i, s := range c.supermarkets {
		out[i] = Supermarket{Name: s.Name, Domains: append([]string(nil), s.Domains...)}
	}
	return out
}

func (c *Catalog) Supermarket(name string) (Supermarket, bool) {
	for _, s := range c.supermarkets {
		if s.Name == name {
			return Supermarket{Name: s.Name, Domains: append([]string(nil), s.Domains...)}, true
		}
	}
	return Supermarket{}, false
}

// SupermarketForDomain finds the chain that owns a registrable domain.
func (c *Catalog) SupermarketForDomain(domain string) (Supermarket, bool) {
	for _, s := range c.supermarkets {
		if s.OwnsDomain(domain) {
			return c.Supermarket(s.Name)
		}
	}
	return Supermarket{}, false
}
