package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleanline/opsdesk/cmd/workshopctl/cli"
)

func main() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	rootCmd := &cobra.Command{
		Use:           "workshopctl",
		Short:         "Operator tools for workshop jobs and pricing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", redisAddr, "redis address used by the job queue")

	rootCmd.AddCommand(cli.EvaluateCmd())
	rootCmd.AddCommand(cli.NextCmd())
	rootCmd.AddCommand(cli.PriceCmd())
	rootCmd.AddCommand(cli.JobsCmd(func() (*cli.JobsCLI, error) {
		return cli.NewJobsCLI(redisAddr)
	}))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
