package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"k9medics_backend/internals/features/donations/checkout"
)

const (
	defaultPollInterval   = 3 * time.Second
	defaultConfirmTimeout = 15 * time.Minute
)

type donateOptions struct {
	server    string
	preset    int64
	amount    string
	email     string
	strategy  string
	returnURL string
	poll      time.Duration
	timeout   time.Duration

	out io.Writer
}

func pickStrategy(name, returnURL string) (checkout.Strategy, error) {
	switch name {
	case "hosted":
		return checkout.HostedStrategy{ReturnURL: returnURL}, nil
	case "embedded":
		return checkout.EmbeddedStrategy{ReturnURL: returnURL}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q (want hosted or embedded)", name)
}

func runDonate(ctx context.Context, o donateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	strategy, err := pickStrategy(o.strategy, o.returnURL)
	if err != nil {
		return err
	}

	client := checkout.NewClient(o.server)
	amounts, err := client.AmountConfig(ctx)
	if err != nil {
		log.Printf("[WARN] could not load checkout config, using defaults: %v", err)
		amounts = checkout.DefaultAmountConfig()
	}

	flow := checkout.NewFlow(checkout.Options{
		Amounts:        amounts,
		Sessions:       client,
		Widgets:        &terminalWidgets{client: client, out: o.out, poll: o.poll},
		Strategy:       strategy,
		Navigator:      checkout.NavigatorFunc(func(url string) { fmt.Fprintf(o.out, "Confirmation: %s\n", url) }),
		ConfirmTimeout: o.timeout,
	})
	flow.OnChange(newPrinter(o.out))

	flow.Open()
	defer flow.Close()

	if o.preset > 0 {
		err = flow.SelectPreset(o.preset)
	} else {
		err = flow.EnterAmount(o.amount)
	}
	if err != nil {
		return err
	}
	flow.Wait()

	s := flow.Snapshot()
	if s.AmountError != "" {
		return errors.New(s.AmountError)
	}
	if s.State != checkout.StateFormReady {
		return fmt.Errorf("checkout stopped in %s: %s", s.State, s.Error)
	}

	if err := flow.SetEmail(o.email); err != nil {
		return err
	}
	if err := flow.Submit(); err != nil {
		var ce *checkout.Error
		if errors.As(err, &ce) {
			return errors.New(ce.Message)
		}
		return err
	}
	flow.Wait()

	if s := flow.Snapshot(); s.State != checkout.StateSuccess {
		return fmt.Errorf("donation not completed: %s", s.Error)
	}
	return nil
}

// newPrinter writes the rendered view each time the state changes.
func newPrinter(out io.Writer) func(checkout.Snapshot) {
	last := checkout.State(-1)
	return func(s checkout.Snapshot) {
		if !s.Open || s.State == last {
			return
		}
		last = s.State
		v := checkout.Render(s)
		switch {
		case v.Message != "" && v.AmountLabel != "":
			fmt.Fprintf(out, "[%s] %s (%s)\n", s.State, v.Message, v.AmountLabel)
		case v.Message != "":
			fmt.Fprintf(out, "[%s] %s\n", s.State, v.Message)
		case v.ShowForm:
			fmt.Fprintf(out, "[%s] %s\n", s.State, v.SubmitLabel)
		}
	}
}
