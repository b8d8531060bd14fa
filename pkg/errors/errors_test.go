package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestError(t *testing.T) {
	cause := errors.New("unexpected token \"]\"")

	tests := []struct {
		name string
		err  *Error
		want string
		user string
	}{
		{
			name: "message",
			err:  New(ErrCodeInvalidInput, "width must be positive, got %d", -3),
			want: "INVALID_INPUT: width must be positive, got -3",
			user: "width must be positive, got -3",
		},
		{
			name: "position",
			err:  New(ErrCodeInvalidDocument, "empty node").At("doc.sketch:2:4"),
			want: "INVALID_DOCUMENT: doc.sketch:2:4: empty node",
			user: "doc.sketch:2:4: empty node",
		},
		{
			name: "cause",
			err:  Wrap(ErrCodeInvalidDocument, cause, "parse sketch"),
			want: "INVALID_DOCUMENT: parse sketch: unexpected token \"]\"",
			user: "parse sketch: unexpected token \"]\"",
		},
		{
			name: "coded cause",
			err:  Wrap(ErrCodeInvalidConfig, New(ErrCodeFileNotFound, "no such file"), "load config"),
			want: "INVALID_CONFIG: load config: no such file",
			user: "load config: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if got := UserMessage(tt.err); got != tt.user {
				t.Errorf("UserMessage() = %q, want %q", got, tt.user)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInvalidDocument, cause, "failed to parse")

	if err.Code != ErrCodeInvalidDocument {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidDocument)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	inner := New(ErrCodeInvalidInput, "inner")

	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeInvalidInput, "x"), ErrCodeInvalidInput, true},
		{"other code", New(ErrCodeInvalidInput, "x"), ErrCodeInvalidDocument, false},
		{"outer code wins", Wrap(ErrCodeInvalidDocument, inner, "outer"), ErrCodeInvalidDocument, true},
		{"inner code hidden", Wrap(ErrCodeInvalidDocument, inner, "outer"), ErrCodeInvalidInput, false},
		{"through fmt wrapping", fmt.Errorf("parse: %w", inner), ErrCodeInvalidInput, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"plain error, empty code", errors.New("plain"), "", false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(ErrCodeInvalidConfig, "x"), ErrCodeInvalidConfig},
		{"wrapped by fmt", fmt.Errorf("layout: %w", New(ErrCodeNotQuiescent, "x")), ErrCodeNotQuiescent},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessagePlain(t *testing.T) {
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage() = %q, want %q", got, "plain error")
	}
	wrapped := fmt.Errorf("render svg: %w", New(ErrCodeUnsupported, "graphviz failed"))
	if got := UserMessage(wrapped); got != "graphviz failed" {
		t.Errorf("UserMessage() = %q, want the coded message", got)
	}
}

func TestRecover(t *testing.T) {
	tests := []struct {
		name  string
		raise func()
		code  Code
		msg   string
	}{
		{
			name:  "violation",
			raise: func() { Violation("cornerstone already set to %s", "brick") },
			code:  ErrCodeContract,
			msg:   "cornerstone already set to brick",
		},
		{
			name:  "destroyed",
			raise: func() { Destroyed("course") },
			code:  ErrCodeDestroyed,
			msg:   "course used after destruction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			func() {
				defer Recover(&err)
				tt.raise()
			}()
			if !Is(err, tt.code) {
				t.Errorf("GetCode() = %v, want %v", GetCode(err), tt.code)
			}
			if got := UserMessage(err); got != tt.msg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.msg)
			}
		})
	}
}

func TestRecoverRepanics(t *testing.T) {
	defer func() {
		if r := recover(); r != "boom" {
			t.Errorf("recover() = %v, want boom", r)
		}
	}()

	var err error
	func() {
		defer Recover(&err)
		panic("boom")
	}()
}
