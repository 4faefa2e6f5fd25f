package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/indicesp/indicesp/pkg/archival"
)

var validateCmd = &cobra.Command{
	Use:   "validate <capture-url>",
	Short: "Check a Wayback Machine snapshot the way price intake does",
	Long: `Checks, in order, that the URL is a web.archive.org snapshot, that its
timestamp is a real date, that the date is the last Saturday of its month and
that --brand is one of the accepted brands. Only the first failure is shown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		brand, _ := cmd.Flags().GetString("brand")
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		return runValidate(cmd.OutOrStdout(), archival.NewValidator(cat.Brands()), args[0], brand)
	},
}

// runValidate prints the verdict and returns the capture error, if any, so
// that the process exits non-zero.
func runValidate(w io.Writer, v *archival.Validator, url, brand string) error {
	d, err := v.Validate(url, brand)
	if err != nil {
		k := archival.KindOf(err)
		fmt.Fprintf(w, "REJECTED\t%s\t%s\n", k, k.Message())
		return err
	}
	fmt.Fprintf(w, "OK\t%s\t%s\n", d, d.Weekday())
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("brand", "b", "", "Brand of the product shown in the snapshot")
}
