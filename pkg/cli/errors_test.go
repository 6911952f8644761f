package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("proxy.origin", "must be an absolute URL")

	if !strings.Contains(err.Error(), "proxy.origin") {
		t.Errorf("error %q does not name the field", err.Error())
	}
	if !strings.Contains(err.Error(), "must be an absolute URL") {
		t.Errorf("error %q does not carry the message", err.Error())
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	inner := errors.New("bind: address already in use")
	err := NewCommandError("serve", inner)

	if !errors.Is(err, inner) {
		t.Error("CommandError should unwrap to the inner error")
	}
	if !strings.Contains(err.Error(), "serve") {
		t.Errorf("error %q does not name the command", err.Error())
	}
}
