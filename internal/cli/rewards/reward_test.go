package rewards

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/daystreak/internal/cli/clitest"
	"github.com/julianstephens/daystreak/internal/engine"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/storage/sqlite"
)

func setup(t *testing.T) *clitest.Env {
	t.Helper()
	env := clitest.Setup(t, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC))
	if _, err := env.Ctx.Tracker.CreateHabit(models.Habit{
		Name:         "Read",
		CreationDate: "2024-01-01",
		TargetPerDay: 1,
		Reward:       models.Cents(250).Ptr(),
	}); err != nil {
		t.Fatal(err)
	}
	for _, date := range []string{"2024-01-01", "2024-01-02"} {
		if _, err := env.Ctx.Tracker.Apply("Read", engine.ActionAddRep, date); err != nil {
			t.Fatal(err)
		}
	}
	return env
}

func TestBalanceAndWithdraw(t *testing.T) {
	env := setup(t)

	if err := (&BalanceCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if out := env.Output(); !strings.Contains(out, "Balance: 5.00") {
		t.Errorf("unexpected balance output: %q", out)
	}

	if err := (&WithdrawCmd{Amount: "1,50"}).Run(env.Ctx); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Withdrew 1.50 on 2024-01-03. Balance: 3.50") {
		t.Errorf("unexpected withdraw output: %q", out)
	}

	err := (&WithdrawCmd{Amount: "10"}).Run(env.Ctx)
	if !errors.Is(err, apperrors.ErrInsufficientBalance) {
		t.Errorf("overdraw: got %v", err)
	}
	if err := (&WithdrawCmd{Amount: "abc"}).Run(env.Ctx); err == nil {
		t.Error("expected parse error")
	}

	if err := (&LedgerCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	out := env.Output()
	if !strings.Contains(out, "2024-01-03") || !strings.Contains(out, "1.50") {
		t.Errorf("ledger missing withdrawal:\n%s", out)
	}
}

func TestLedgerEmpty(t *testing.T) {
	env := setup(t)
	if err := (&LedgerCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.Output(), "No withdrawals yet.") {
		t.Error("expected empty ledger message")
	}
}

func TestReconcile(t *testing.T) {
	env := setup(t)

	if err := (&ReconcileCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if out := env.Output(); !strings.Contains(out, "consistent") {
		t.Errorf("expected consistent balance: %q", out)
	}

	db := env.Ctx.Store.(*sqlite.Store).GetDB()
	if _, err := db.Exec("UPDATE settings SET value = '42' WHERE key = 'total_reward_cents'"); err != nil {
		t.Fatal(err)
	}

	if err := (&ReconcileCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	out := env.Output()
	if !strings.Contains(out, "Repaired drift of +4.58") || !strings.Contains(out, "Balance: 5.00") {
		t.Errorf("unexpected reconcile output: %q", out)
	}
}
