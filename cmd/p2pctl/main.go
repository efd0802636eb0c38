package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "p2pctl",
		Short:         "p2pctl - run PlacetoPay gateway operations from the shell",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Bool("json", false, "Print the processor response as JSON")

	rootCmd.AddCommand(purchaseCmd())
	rootCmd.AddCommand(refundCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(cardsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
