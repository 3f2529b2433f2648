package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeUnknownDirection, "direction 42 is not defined")

	if err == nil {
		t.Fatal("New should return non-nil error")
	}

	if err.Code != ErrCodeUnknownDirection {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeUnknownDirection)
	}

	if err.Message != "direction 42 is not defined" {
		t.Errorf("Message = %v, want 'direction 42 is not defined'", err.Message)
	}

	if err.Underlying != nil {
		t.Error("Underlying should be nil for New error")
	}

	if len(err.Stack) == 0 {
		t.Error("Stack should be captured")
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ErrCodeInvalidBinding, "cannot bind %s", "left")
	if err.Message != "cannot bind left" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestWrap(t *testing.T) {
	underlying := errors.New("no such file")
	err := Wrap(underlying, ErrCodeConfigLoad, "failed to read config")

	if err == nil {
		t.Fatal("Wrap should return non-nil error")
	}

	if err.Underlying != underlying {
		t.Error("Underlying should be preserved")
	}

	if err.Code != ErrCodeConfigLoad {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeConfigLoad)
	}

	if !strings.Contains(err.Error(), "no such file") {
		t.Error("Error string should include underlying error")
	}
}

func TestWrap_Nil(t *testing.T) {
	err := Wrap(nil, ErrCodeInternal, "test")

	if err != nil {
		t.Error("Wrap of nil should return nil")
	}
}

func TestWithContext(t *testing.T) {
	err := New(ErrCodeInvalidBinding, "bad binding")
	err.WithContext("direction", "left")
	err.WithContext("binding", "#missing")

	if err.Context["direction"] != "left" {
		t.Error("Context should contain 'direction' key")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "binding: #missing, direction: left") {
		t.Errorf("Error string should list sorted context, got %q", errStr)
	}
}

func TestUnwrap(t *testing.T) {
	underlying := errors.New("underlying")
	err := Wrap(underlying, ErrCodeInternal, "wrapped")

	if err.Unwrap() != underlying {
		t.Error("Unwrap should return underlying error")
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is should find the underlying error")
	}
}

func TestIs_MatchesSentinelByCode(t *testing.T) {
	sentinel := &Error{Code: ErrCodeUnknownDirection}
	err := New(ErrCodeUnknownDirection, "direction 99")

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should match a code-only sentinel")
	}
	if errors.Is(New(ErrCodeInternal, "x"), sentinel) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestIsCode(t *testing.T) {
	err := New(ErrCodeDeviceOpen, "open /dev/input/js0")

	if !IsCode(err, ErrCodeDeviceOpen) {
		t.Error("IsCode should return true for matching code")
	}

	if IsCode(err, ErrCodeDeviceRead) {
		t.Error("IsCode should return false for non-matching code")
	}

	if IsCode(nil, ErrCodeDeviceOpen) {
		t.Error("IsCode should return false for nil error")
	}

	wrapped := fmt.Errorf("start input: %w", err)
	if !IsCode(wrapped, ErrCodeDeviceOpen) {
		t.Error("IsCode should see through fmt wrapping")
	}

	stdErr := errors.New("standard error")
	if IsCode(stdErr, ErrCodeInternal) {
		t.Error("IsCode should return false for plain errors")
	}
}

func TestGetCode(t *testing.T) {
	err := New(ErrCodeTransport, "nats down")

	if code := GetCode(err); code != ErrCodeTransport {
		t.Errorf("GetCode = %v, want %v", code, ErrCodeTransport)
	}

	if GetCode(nil) != "" {
		t.Error("GetCode should return empty string for nil")
	}

	if GetCode(errors.New("standard")) != ErrCodeInternal {
		t.Error("GetCode should return ErrCodeInternal for plain errors")
	}
}

func TestStackTrace(t *testing.T) {
	err := New(ErrCodeInternal, "boom")
	trace := err.StackTrace()
	if !strings.HasPrefix(trace, "Stack trace:\n") {
		t.Errorf("unexpected trace header: %q", trace)
	}
	if !strings.Contains(trace, "TestStackTrace") {
		t.Error("trace should include the calling test")
	}
}
