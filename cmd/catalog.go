package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/indicesp/indicesp/pkg/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the supermarkets, products, units and brands accepted at intake",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		printCatalog(cmd.OutOrStdout(), cat)
		return nil
	},
}

func printCatalog(w io.Writer, c *catalog.Catalog) {
	fmt.Fprintln(w, "Supermarkets:")
	for _, m := range c.Supermarkets() {
		fmt.Fprintf(w, "  %s (%s)\n", m.Name, strings.Join(m.Domains, ", "))
	}
	section := func(title string, s catalog.Set) {
		fmt.Fprintf(w, "%s:\n", title)
		for _, item := range s.Items() {
			fmt.Fprintf(w, "  %s\n", item)
		}
	}
	section("Products", c.Products())
	section("Units", c.Units())
	section("Brands", c.Brands())
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
