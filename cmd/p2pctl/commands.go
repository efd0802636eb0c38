package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/placetopay"
	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/placetopay/sandbox"
	"github.com/DanielPopoola/placetopay-gateway/internal/config"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
	"github.com/spf13/cobra"
)

const referencePrefix = "P2P"

// newProcessor builds a retrying client from GATEWAY_* variables.
func newProcessor() (*placetopay.RetryClient, error) {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := cfg.Logger.NewLogger()
	client := placetopay.NewClient(cfg.PlaceToPay, logger)
	return placetopay.NewRetryClient(client, cfg.Retry, logger), nil
}

func purchaseCmd() *cobra.Command {
	var (
		cardName  string
		number    string
		cvv       string
		month     int
		year      int
		amount    int64
		currency  string
		reference string
		use3DS    bool
		returnURL string
	)

	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Charge a card",
		Long: `Charge a card through PlacetoPay.

Use --card with a sandbox card name (see "p2pctl cards") or pass the card
with --number, --cvv, --month and --year.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := resolveCard(cardName, number, cvv, month, year)
			if err != nil {
				return err
			}

			opts := sandbox.PurchaseOptions(referencePrefix, use3DS)
			opts.Payment.Currency = currency
			if reference != "" {
				opts.Payment.Reference = reference
			}
			if use3DS && returnURL != "" {
				opts.ThreeDS.ReturnURL = returnURL
			}

			processor, err := newProcessor()
			if err != nil {
				return err
			}
			resp, err := processor.Purchase(cmd.Context(), amount, card, opts)
			if err != nil {
				return err
			}
			return printResponse(cmd, resp)
		},
	}

	cmd.Flags().StringVarP(&cardName, "card", "c", "", "Sandbox card name")
	cmd.Flags().StringVar(&number, "number", "", "Card number")
	cmd.Flags().StringVar(&cvv, "cvv", "", "Card verification value")
	cmd.Flags().IntVar(&month, "month", 12, "Expiry month")
	cmd.Flags().IntVar(&year, "year", 2030, "Expiry year")
	cmd.Flags().Int64VarP(&amount, "amount", "a", sandbox.Amount, "Amount in minor units")
	cmd.Flags().StringVar(&currency, "currency", "", "ISO 4217 currency (default from config)")
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "Payment reference (generated when empty)")
	cmd.Flags().BoolVar(&use3DS, "3ds", false, "Request 3-D Secure")
	cmd.Flags().StringVar(&returnURL, "return-url", "", "3-D Secure return URL")

	return cmd
}

func refundCmd() *cobra.Command {
	var (
		amount            int64
		authorization     string
		internalReference int64
		currency          string
	)

	cmd := &cobra.Command{
		Use:   "refund",
		Short: "Reverse a purchase",
		RunE: func(cmd *cobra.Command, args []string) error {
			processor, err := newProcessor()
			if err != nil {
				return err
			}
			resp, err := processor.Refund(cmd.Context(), amount, authorization, domain.RefundOptions{
				InternalReference: internalReference,
				Currency:          currency,
			})
			if err != nil {
				return err
			}
			return printResponse(cmd, resp)
		},
	}

	cmd.Flags().Int64VarP(&amount, "amount", "a", sandbox.Amount, "Amount in minor units")
	cmd.Flags().StringVar(&authorization, "authorization", "", "Authorization code of the purchase")
	cmd.Flags().Int64Var(&internalReference, "internal-reference", 0, "Processor internal reference of the purchase")
	cmd.Flags().StringVar(&currency, "currency", "", "ISO 4217 currency (default from config)")
	_ = cmd.MarkFlagRequired("authorization")
	_ = cmd.MarkFlagRequired("internal-reference")

	return cmd
}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query [internal-reference]",
		Short: "Show the processor's view of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			internalReference, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("internal reference must be an integer: %w", err)
			}
			processor, err := newProcessor()
			if err != nil {
				return err
			}
			resp, err := processor.Query(cmd.Context(), internalReference)
			if err != nil {
				return err
			}
			return printResponse(cmd, resp)
		},
	}
}

func cardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cards",
		Short: "List the sandbox test cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(sandbox.Cards))
			for name := range sandbox.Cards {
				names = append(names, name)
			}
			sort.Strings(names)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tNUMBER\tOUTCOME")
			for _, name := range names {
				card := sandbox.Cards[name]
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name, card.CardNumber, card.Description)
			}
			return tw.Flush()
		},
	}
}

func resolveCard(name, number, cvv string, month, year int) (domain.Card, error) {
	if name != "" {
		tc, ok := sandbox.Cards[name]
		if !ok {
			return domain.Card{}, fmt.Errorf("unknown sandbox card %q", name)
		}
		return tc.Card(), nil
	}
	if number == "" {
		return domain.Card{}, fmt.Errorf("either --card or --number is required")
	}
	payer := sandbox.Payer()
	return domain.Card{
		Number:            number,
		ExpiryMonth:       month,
		ExpiryYear:        year,
		VerificationValue: cvv,
		FirstName:         payer.Name,
		LastName:          payer.Surname,
	}, nil
}

func printResponse(cmd *cobra.Command, resp *domain.Response) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	return writeResponse(cmd.OutOrStdout(), resp, asJSON)
}

func writeResponse(w io.Writer, resp *domain.Response, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Status:\t%s\n", resp.Status)
	fmt.Fprintf(tw, "Message:\t%s\n", resp.Message)
	fmt.Fprintf(tw, "Authorization:\t%s\n", resp.Authorization)
	fmt.Fprintf(tw, "Internal reference:\t%d\n", resp.NetworkTransactionID)
	if resp.Reference != "" {
		fmt.Fprintf(tw, "Reference:\t%s\n", resp.Reference)
	}
	if resp.Refunded {
		fmt.Fprintln(tw, "Refunded:\tyes")
	}
	return tw.Flush()
}
