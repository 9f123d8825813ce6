package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleanline/opsdesk/internal/pricing"
)

// PriceCmd returns the price command.
func PriceCmd() *cobra.Command {
	var (
		in           pricing.Input
		taxInclusive bool
		commit       bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a single order line",
		Long: `Compute the discounted unit price, gross profit and RRP comparison for one
order line.

With --commit the discount is clamped to 0-100 the way a saved price is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tax := pricing.TaxExclusive
			if taxInclusive {
				tax = pricing.TaxInclusive
			}
			line := pricing.Compute(in, tax)
			if commit {
				line = pricing.Commit(in, tax)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(line)
			}
			renderLine(cmd.OutOrStdout(), line)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.SKU, "sku", "", "product code")
	cmd.Flags().Float64Var(&in.UnitPrice, "unit", 0, "unit price")
	cmd.Flags().Float64Var(&in.CostPrice, "cost", 0, "cost price")
	cmd.Flags().Float64Var(&in.RRP, "rrp", 0, "recommended retail price incl. GST")
	cmd.Flags().Float64Var(&in.Quantity, "qty", 1, "quantity")
	cmd.Flags().Float64Var(&in.PercentDiscount, "discount", 0, "percent discount")
	cmd.Flags().BoolVar(&taxInclusive, "tax-inclusive", false, "unit prices include GST")
	cmd.Flags().BoolVar(&commit, "commit", false, "clamp the discount as when saving")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func renderLine(out io.Writer, l pricing.Line) {
	if l.SKU != "" {
		fmt.Fprintf(out, "SKU:              %s\n", l.SKU)
	}
	fmt.Fprintf(out, "Unit price:       %s\n", pricing.FormatMoney(l.UnitPrice))
	fmt.Fprintf(out, "Discount:         %s\n", pricing.FormatPercent(l.PercentDiscount, 2))
	d := l.Display()
	fmt.Fprintf(out, "Discounted price: %s\n", d.UnitPriceDiscounted)
	fmt.Fprintf(out, "GPP ex GST:       %s%%\n", d.GPPExGST)
	fmt.Fprintf(out, "Off RRP:          %s\n", d.AccumulatedDiscount)
	fmt.Fprintf(out, "Total ex GST:     %s\n", pricing.FormatMoney(l.TotalExGST))
	fmt.Fprintf(out, "Highlight:        %s\n", highlightLabel(l.Highlight))
}
