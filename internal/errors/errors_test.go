package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessageFallbacks(t *testing.T) {
	inner := errors.New("exec: \"git\": executable file not found in $PATH")
	tests := []struct {
		name string
		err  Error
		want string
	}{
		{"message wins", New(CodeToolNotFound, "git is required", inner), "git is required"},
		{"wrapped error", New(CodeToolNotFound, "", inner), inner.Error()},
		{"code only", New(CodeParseFailed, "", nil), "parse_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodeOfWalksWrappedChain(t *testing.T) {
	base := New(CodeParseFailed, "bad json", nil)
	wrapped := fmt.Errorf("load config: %w", base)

	if got := CodeOf(wrapped); got != CodeParseFailed {
		t.Fatalf("CodeOf = %q, want %q", got, CodeParseFailed)
	}
	if !IsCode(wrapped, CodeParseFailed) {
		t.Fatal("IsCode should match through fmt.Errorf wrapping")
	}
	if IsCode(wrapped, CodeToolNotFound) {
		t.Fatal("IsCode matched the wrong code")
	}
	if got := CodeOf(errors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf(plain) = %q, want %q", got, CodeUnknown)
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := New(CodeConfigurationError, "cannot create dir", cause)
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should find the wrapped cause")
	}
}
