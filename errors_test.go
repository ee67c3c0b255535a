package stash_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/AndrewDonelson/stash"
)

func TestErrors_Sentinel(t *testing.T) {
	errs := []error{
		stash.ErrInvalidConfig,
		stash.ErrInvalidName,
		stash.ErrClosed,
		stash.ErrWriteFailed,
		stash.ErrWriteBehindMaxRetry,
	}
	seen := map[string]bool{}
	for _, e := range errs {
		if e == nil {
			t.Fatalf("nil sentinel error")
		}
		if !strings.HasPrefix(e.Error(), "stash: ") {
			t.Fatalf("sentinel %q lacks package prefix", e)
		}
		if seen[e.Error()] {
			t.Fatalf("duplicate sentinel message %q", e)
		}
		seen[e.Error()] = true
	}
}

func TestErrors_Is(t *testing.T) {
	wrapped := fmt.Errorf("%w: settings: %w", stash.ErrWriteFailed, errors.New("no space left on device"))
	if !errors.Is(wrapped, stash.ErrWriteFailed) {
		t.Fatal("expected ErrWriteFailed")
	}
	if errors.Is(wrapped, stash.ErrClosed) {
		t.Fatal("unexpected ErrClosed")
	}
}
