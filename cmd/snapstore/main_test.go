package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRun_NoArgs(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run(nil, &out, &errOut); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out.String(), "snapstore") {
		t.Errorf("expected usage output, got %q", out.String())
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run([]string{"bogus"}, &out, &errOut); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), "unknown command") {
		t.Errorf("expected unknown command error, got %q", errOut.String())
	}
}

func TestRun_Demo(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run([]string{"demo"}, &out, &errOut); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, errOut.String())
	}
	if !strings.HasSuffix(out.String(), "final version 6\n") {
		t.Errorf("unexpected demo output:\n%s", out.String())
	}
}

func TestRun_InvalidFormat(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run([]string{"--format", "xml", "demo"}, &out, &errOut); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
}
