package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestTokenCmd_IssuesToken(t *testing.T) {
	path := writeTestConfig(t)

	cmd := newTokenCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader("pass123\n"))
	cmd.SetArgs([]string{"--config", path, "--user", "doc_01"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("token command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Dr. Smith") {
		t.Errorf("expected output to name the staff member, got: %s", out)
	}
	// A JWT has three dot-separated segments.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	token := lines[len(lines)-1]
	if strings.Count(token, ".") != 2 {
		t.Errorf("expected a JWT on the last line, got: %q", token)
	}
}

func TestTokenCmd_WrongPassword(t *testing.T) {
	path := writeTestConfig(t)

	cmd := newTokenCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader("wrong\n"))
	cmd.SetArgs([]string{"--config", path, "--user", "doc_01"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for wrong password")
	}
}

func TestTokenCmd_RequiresUser(t *testing.T) {
	path := writeTestConfig(t)

	cmd := newTokenCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--config", path})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error when --user is missing")
	}
}
