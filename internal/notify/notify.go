// Package notify dispatches best-effort desktop notifications through an
// external command (notify-send by default). Delivery is advisory: the
// daemon never blocks or aborts on a failed notification.
package notify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const dispatchTimeout = 5 * time.Second

// Notifier shells out to a notify-send compatible command.
type Notifier struct {
	Command string
	Title   string
	Body    string
	Icon    string // attached only when the file exists on disk
}

// Send dispatches the configured notification. The icon flag is added only
// when the icon file is present.
func (n Notifier) Send(ctx context.Context) error {
	if n.Command == "" {
		return fmt.Errorf("no notification command configured")
	}
	args := []string{n.Title, n.Body}
	if n.Icon != "" {
		if st, err := os.Stat(n.Icon); err == nil && !st.IsDir() {
			args = append(args, "--icon", n.Icon)
		}
	}
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	// #nosec G204 -- command comes from local config, not remote input
	cmd := exec.CommandContext(ctx, n.Command, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("notification dispatch: %w", err)
	}
	return nil
}
