package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleanline/opsdesk/internal/workshop"
)

// EvaluateCmd returns the evaluate command.
func EvaluateCmd() *cobra.Command {
	var (
		sc     workshop.StatusContext
		status string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Show which job form sections are editable for a status",
		Long: `Evaluate the job form state the same way the API does and print the
editable flags, button label and status display.

Leave --id empty to evaluate a job that has not been saved yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc.WorkshopStatus = workshop.Status(status)
			result := workshop.Evaluate(sc)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			renderEvaluation(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&sc.ExistingWorkshopID, "id", "", "existing workshop job id")
	cmd.Flags().StringVar(&status, "status", "", "current workshop status, e.g. to_be_quoted")
	cmd.Flags().StringVar(&sc.ExistingOrderID, "order", "", "attached sales order id")
	cmd.Flags().StringVar(&sc.LocationOfRepair, "location", "", "Site or Workshop")
	cmd.Flags().StringVar(&sc.SiteLocation, "site", "", "site location")
	cmd.Flags().StringVar(&sc.QuoteOrRepair, "quote-or-repair", "", "Quote or Repaired")
	cmd.Flags().StringVar(&sc.Action, "action", "", "form action, e.g. Pickup or Deliver")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func renderEvaluation(out io.Writer, r workshop.StatusResult) {
	fmt.Fprintf(out, "Status:   %s\n", r.StatusDisplay)
	fmt.Fprintf(out, "Button:   %s\n", r.ButtonText)
	fmt.Fprintf(out, "Priority: %g\n", r.Priority)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  machine info  %s\n", flag(r.CanEditMachineInfo))
	fmt.Fprintf(out, "  user info     %s\n", flag(r.CanEditUserInfo))
	fmt.Fprintf(out, "  contacts      %s\n", flag(r.CanEditContacts))
	fmt.Fprintf(out, "  create order  %s\n", flag(r.CanCreateOrder))
	fmt.Fprintf(out, "  pickup        %s\n", flag(r.CanPickup))
}
