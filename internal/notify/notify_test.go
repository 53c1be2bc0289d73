package notify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// The tests use /bin/sh as the "notification command" and capture the
// arguments it was invoked with.
func captureScript(t *testing.T) (cmd string, out string) {
	t.Helper()
	dir := t.TempDir()
	out = filepath.Join(dir, "args.txt")
	cmd = filepath.Join(dir, "fake-notify")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + out + "\n"
	if err := os.WriteFile(cmd, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return cmd, out
}

func TestSendPassesTitleAndBody(t *testing.T) {
	cmd, out := captureScript(t)
	n := Notifier{Command: cmd, Title: "Steam Killer", Body: "Terminating Steam."}
	if err := n.Send(t.Context()); err != nil {
		t.Fatalf("send: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read capture: %v", err)
	}
	got := strings.Split(strings.TrimSpace(string(b)), "\n")
	want := []string{"Steam Killer", "Terminating Steam."}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("args = %q, want %q", got, want)
	}
}

func TestSendAttachesIconOnlyWhenPresent(t *testing.T) {
	cmd, out := captureScript(t)
	icon := filepath.Join(t.TempDir(), "steam.png")
	n := Notifier{Command: cmd, Title: "t", Body: "b", Icon: icon}

	// Icon file absent: no --icon flag.
	if err := n.Send(t.Context()); err != nil {
		t.Fatalf("send: %v", err)
	}
	b, _ := os.ReadFile(out)
	if strings.Contains(string(b), "--icon") {
		t.Fatalf("unexpected icon flag without icon file: %q", b)
	}

	// Icon file present: flag attached.
	if err := os.WriteFile(icon, []byte("png"), 0o644); err != nil {
		t.Fatalf("write icon: %v", err)
	}
	if err := n.Send(t.Context()); err != nil {
		t.Fatalf("send: %v", err)
	}
	b, _ = os.ReadFile(out)
	if !strings.Contains(string(b), "--icon") || !strings.Contains(string(b), icon) {
		t.Fatalf("missing icon flag: %q", b)
	}
}

func TestSendFailureIsAnError(t *testing.T) {
	n := Notifier{Command: filepath.Join(t.TempDir(), "missing-binary"), Title: "t", Body: "b"}
	if err := n.Send(t.Context()); err == nil {
		t.Fatalf("expected error for missing command")
	}
}
