package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleanline/opsdesk/internal/workshop"
)

// NextCmd returns the next command.
func NextCmd() *cobra.Command {
	var status, quoteOrRepair string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Print the status a job advances to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := workshop.Next(workshop.Status(status), quoteOrRepair)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), next)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "current workshop status")
	cmd.Flags().StringVar(&quoteOrRepair, "quote-or-repair", "", "Quote or Repaired")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}
