package rewards

import (
	"fmt"
	"text/tabwriter"

	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/models"
)

type RewardCmd struct {
	Balance   BalanceCmd   `cmd:"" help:"Show the reward balance." default:"1"`
	Ledger    LedgerCmd    `cmd:"" help:"List withdrawals."`
	Reconcile ReconcileCmd `cmd:"" help:"Recompute the balance from history and repair drift."`
	Withdraw  WithdrawCmd  `cmd:"" help:"Spend part of the balance."`
}

type BalanceCmd struct{}

func (c *BalanceCmd) Run(ctx *cli.Context) error {
	balance, err := ctx.Tracker.Balance()
	if err != nil {
		return err
	}
	ctx.Printf("Balance: %s\n", balance)
	return nil
}

type LedgerCmd struct{}

func (c *LedgerCmd) Run(ctx *cli.Context) error {
	entries, err := ctx.Tracker.Ledger()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ctx.Println("No withdrawals yet.")
		return nil
	}

	var total models.Cents
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "DAY\tAMOUNT\t")
	for _, e := range entries {
		total += e.Amount
		fmt.Fprintf(w, "%s\t%s\t\n", e.Date, e.Amount)
	}
	fmt.Fprintf(w, "total\t%s\t\n", total)
	return w.Flush()
}

type ReconcileCmd struct{}

func (c *ReconcileCmd) Run(ctx *cli.Context) error {
	drift, balance, err := ctx.Tracker.Reconcile()
	if err != nil {
		return err
	}
	if drift != 0 {
		ctx.Printf("Repaired drift of %s\n", cli.SignedAmount(drift))
	} else {
		ctx.Println("Balance is consistent with history.")
	}
	ctx.Printf("Balance: %s\n", balance)
	return nil
}

type WithdrawCmd struct {
	Amount string `arg:"" help:"Amount to withdraw, e.g. 2.50."`
}

func (c *WithdrawCmd) Run(ctx *cli.Context) error {
	amount, err := models.ParseCents(c.Amount)
	if err != nil {
		return err
	}
	entry, balance, err := ctx.Tracker.Withdraw(amount)
	if err != nil {
		return err
	}
	ctx.Printf("Withdrew %s on %s. Balance: %s\n", entry.Amount, entry.Date, balance)
	return nil
}
