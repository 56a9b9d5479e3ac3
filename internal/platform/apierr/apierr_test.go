package apierr

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Message(t *testing.T) {
	e := Invalid("bad_input", "field is malformed")
	if e.Kind != KindInvalidInput {
		t.Fatalf("expected kind %q, got %q", KindInvalidInput, e.Kind)
	}
	if e.Error() != "field is malformed" {
		t.Fatalf("unexpected message: %q", e.Error())
	}

	e = &Error{Kind: KindInternal, Code: "boom"}
	if e.Error() != "boom" {
		t.Fatalf("expected code fallback, got %q", e.Error())
	}

	e = &Error{Kind: KindInternal}
	if e.Error() != string(KindInternal) {
		t.Fatalf("expected kind fallback, got %q", e.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	e := Storage("upload_failed", cause)
	if !errors.Is(e, cause) {
		t.Fatalf("expected errors.Is to find the cause")
	}

	wrapped := fmt.Errorf("outer: %w", e)
	var apiErr *Error
	if !errors.As(wrapped, &apiErr) {
		t.Fatalf("expected errors.As to find *Error through wrapping")
	}
	if apiErr.Code != "upload_failed" {
		t.Fatalf("unexpected code %q", apiErr.Code)
	}
}

func TestHelpers_Kinds(t *testing.T) {
	cases := []struct {
		err  *Error
		kind Kind
	}{
		{Invalid("c", "m"), KindInvalidInput},
		{NotFound("c", "m"), KindNotFound},
		{Forbidden("c", "m"), KindForbidden},
		{InvalidState("c", "m"), KindInvalidState},
		{Conflict("c", "m"), KindConflict},
		{Storage("c", errors.New("m")), KindStorage},
		{Internal("c", errors.New("m")), KindInternal},
	}
	for _, tc := range cases {
		if tc.err.Kind != tc.kind {
			t.Fatalf("expected kind %q, got %q", tc.kind, tc.err.Kind)
		}
	}
}
