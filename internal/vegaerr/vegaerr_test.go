package vegaerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesOnCodeOnly(t *testing.T) {
	err := ErrInsufficientFunds.WithMessage("user 000001 lacks 12.5 USDT")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected errors.Is to match on code despite differing message")
	}
	if errors.Is(err, ErrSlippageExceeded) {
		t.Fatalf("did not expect a match against a different sentinel")
	}
}

func TestWrapPreservesKindAndUnwraps(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrStorage, cause)

	if err.Kind != KindTransient {
		t.Fatalf("expected Kind to carry over from the sentinel")
	}
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected wrapped error to still match its sentinel")
	}
	if errors.Unwrap(err) != cause {
		t.Fatalf("expected Unwrap to return the original cause")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrUnknownSymbol, http.StatusBadRequest},
		{ErrInsufficientFunds, http.StatusBadRequest},
		{ErrSymbolBindingMismatch, http.StatusBadRequest},
		{ErrStorage, http.StatusInternalServerError},
		{ErrInvariantViolation, http.StatusInternalServerError},
		{errors.New("not a vegaerr.Error"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(ErrStorage, fmt.Errorf("disk full"))
	msg := err.Error()
	if msg == "" {
		t.Fatalf("expected a non-empty message")
	}
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected the wrapped error to remain a storage error")
	}
}
