package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/daystreak/internal/constants"
)

const testConnStr = "postgres://tester@localhost:5432/habits?sslmode=disable"

func TestSetAndGet(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(testConnStr); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	got, err := Get()
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != testConnStr {
		t.Errorf("Get() = %q, want %q", got, testConnStr)
	}
}

func TestSetEmpty(t *testing.T) {
	gokeyring.MockInit()

	for _, in := range []string{"", "   "} {
		if err := Set(in); err == nil {
			t.Errorf("Set(%q) should fail", in)
		}
	}
}

func TestDelete(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(testConnStr); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := Delete(); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := Get(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want %v", err, ErrNotFound)
	}
	if err := Delete(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want %v", err, ErrNotFound)
	}
}

func TestAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !Available() {
		t.Error("Available() = false, want true with the mock keyring")
	}
}

func TestUnavailableKeyring(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("dbus not running"))
	t.Cleanup(gokeyring.MockInit)

	if _, err := Get(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Get() error = %v, want %v", err, ErrUnavailable)
	}
	if Available() {
		t.Error("Available() = true, want false")
	}

	t.Setenv(constants.ConnectionEnvVar, "")
	connStr, src, err := Resolve("")
	if err != nil || connStr != "" || src != SourceNone {
		t.Errorf("Resolve() = %q, %q, %v; want local fallback", connStr, src, err)
	}
}

func TestResolvePrecedence(t *testing.T) {
	gokeyring.MockInit()
	if err := Set("postgres://from-keyring@localhost/habits"); err != nil {
		t.Fatal(err)
	}

	t.Setenv(constants.ConnectionEnvVar, "postgres://from-env@localhost/habits")

	tests := []struct {
		name     string
		explicit string
		clearEnv bool
		want     string
		source   Source
	}{
		{name: "explicit wins", explicit: "postgres://from-flag@localhost/habits", want: "postgres://from-flag@localhost/habits", source: SourceFlag},
		{name: "env before keyring", want: "postgres://from-env@localhost/habits", source: SourceEnv},
		{name: "keyring last", clearEnv: true, want: "postgres://from-keyring@localhost/habits", source: SourceKeyring},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.clearEnv {
				t.Setenv(constants.ConnectionEnvVar, "")
			}
			got, src, err := Resolve(tt.explicit)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want || src != tt.source {
				t.Errorf("Resolve() = %q (%s), want %q (%s)", got, src, tt.want, tt.source)
			}
		})
	}
}
