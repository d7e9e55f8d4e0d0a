package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := donateOptions{}
	cmd := &cobra.Command{
		Use:   "donate",
		Short: "Make a one-time donation from the terminal",
		Long: `Runs the donation checkout against a K9 Medics backend:
picks an amount, opens a payment session, prints the payment link
and waits until the payment is confirmed.`,
		Version:      Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.out = cmd.OutOrStdout()
			return runDonate(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.server, "server", "http://localhost:8080", "Backend base URL")
	f.Int64Var(&opts.preset, "preset", 0, "Preset amount in minor units (e.g. 5000)")
	f.StringVar(&opts.amount, "amount", "", "Custom amount in major units (e.g. 42.50)")
	f.StringVar(&opts.email, "email", "", "Donor email for the receipt")
	f.StringVar(&opts.strategy, "strategy", "hosted", "Confirmation strategy (hosted, embedded)")
	f.StringVar(&opts.returnURL, "return-url", "http://localhost:3000/donate/thank-you", "Confirmation page URL")
	f.DurationVar(&opts.poll, "poll", defaultPollInterval, "How often to check the payment status")
	f.DurationVar(&opts.timeout, "timeout", defaultConfirmTimeout, "How long to wait for the payment")

	cmd.MarkFlagsMutuallyExclusive("preset", "amount")
	cmd.MarkFlagsOneRequired("preset", "amount")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
