package app

import (
	"errors"
	"strings"
	"testing"
)

func TestCopyPrefersSystemClipboard(t *testing.T) {
	origSystem, origOSC := clipboardWriteAll, clipboardWriteOSC52
	defer func() { clipboardWriteAll, clipboardWriteOSC52 = origSystem, origOSC }()

	var copied string
	clipboardWriteAll = func(text string) error {
		copied = text
		return nil
	}
	clipboardWriteOSC52 = func(text string) error {
		t.Fatalf("OSC52 used while the system clipboard works")
		return nil
	}

	method, err := copyTextToClipboard("hello")
	if err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if method != clipboardMethodSystem || copied != "hello" {
		t.Fatalf("unexpected method=%v copied=%q", method, copied)
	}
}

func TestCopyFallsBackToOSC52(t *testing.T) {
	origSystem, origOSC := clipboardWriteAll, clipboardWriteOSC52
	defer func() { clipboardWriteAll, clipboardWriteOSC52 = origSystem, origOSC }()

	clipboardWriteAll = func(string) error { return errors.New("no display") }
	var copied string
	clipboardWriteOSC52 = func(text string) error {
		copied = text
		return nil
	}

	method, err := copyTextToClipboard("remote")
	if err != nil {
		t.Fatalf("fallback failed: %v", err)
	}
	if method != clipboardMethodOSC52 || copied != "remote" {
		t.Fatalf("unexpected method=%v copied=%q", method, copied)
	}
}

func TestCopyReportsBothFailures(t *testing.T) {
	origSystem, origOSC := clipboardWriteAll, clipboardWriteOSC52
	defer func() { clipboardWriteAll, clipboardWriteOSC52 = origSystem, origOSC }()

	clipboardWriteAll = func(string) error { return errors.New("no display") }
	clipboardWriteOSC52 = func(string) error { return errors.New("no tty") }

	_, err := copyTextToClipboard("lost")
	if err == nil {
		t.Fatalf("expected combined error")
	}
	if !strings.Contains(err.Error(), "no display") || !strings.Contains(err.Error(), "no tty") {
		t.Fatalf("combined error missing causes: %v", err)
	}
}
