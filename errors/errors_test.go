package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNewRetryableDetection(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrCodeInvalidInput, false},
		{ErrCodeNotFound, false},
		{ErrCodeSourceFailed, true},
		{ErrCodeTimeout, true},
		{ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New(tt.code, "x").Retryable; got != tt.retryable {
				t.Errorf("Retryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	e := MissingField("sources")
	if got := e.Error(); got != "MISSING_FIELD: Missing required field: sources" {
		t.Errorf("got %q", got)
	}
	cause := stderrors.New("disk")
	e = SourceFailed("a.json").WithCause(cause)
	if got := e.Error(); got != "SOURCE_FAILED: Source a.json could not be read. (cause: disk)" {
		t.Errorf("got %q", got)
	}
}

func TestUnwrapAndAs(t *testing.T) {
	cause := stderrors.New("disk")
	wrapped := fmt.Errorf("loading: %w", SourceFailed("a.json").WithCause(cause))

	if !stderrors.Is(wrapped, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AppError in chain")
	}
	if appErr.Details["source"] != "a.json" {
		t.Errorf("details = %v", appErr.Details)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(nil) {
		t.Error("nil should not be retryable")
	}
	if IsRetryable(InvalidInput("x", "bad")) {
		t.Error("invalid input should not be retryable")
	}
	if !IsRetryable(stderrors.New("plain")) {
		t.Error("plain errors are retryable")
	}
	if !IsRetryable(fmt.Errorf("ctx: %w", SourceFailed("s"))) {
		t.Error("wrapped source failure should be retryable")
	}
}

func TestToAppError(t *testing.T) {
	plain := stderrors.New("boom")
	got := ToAppError(plain)
	if got.Code != ErrCodeInternal || got.Cause != plain {
		t.Errorf("unexpected %+v", got)
	}
	nf := NotFound("file", "a.json")
	if ToAppError(nf) != nf {
		t.Error("expected the same AppError back")
	}
}

func TestToResponse(t *testing.T) {
	resp := InvalidFormat("a.json", "JSON array").ToResponse()
	if resp.Error.Code != ErrCodeInvalidFormat || resp.Error.Retryable {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Error.Details["resource"] != "a.json" {
		t.Errorf("details = %v", resp.Error.Details)
	}
}
