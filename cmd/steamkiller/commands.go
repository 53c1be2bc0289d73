package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkrajnik/steamkiller"
)

// createServeCommand creates the serve subcommand running the daemon.
func createServeCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve [config.toml]",
		Short: "Run the daemon",
		Long: `Run the daemon: an immediate check, a watch on the PID file, and a weekly
check at the close of the allowed window. Runs until SIGINT/SIGTERM.

Examples:
  steamkiller serve                          # built-in policy
  steamkiller serve steamkiller.toml         # explicit config file
  steamkiller serve --config steamkiller.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				globalFlags.ConfigPath = args[0]
			}
			cfg, err := loadConfig(globalFlags)
			if err != nil {
				return err
			}
			slog.SetDefault(cfg.Log.NewSlogger())
			slog.Info("initializing daemon")

			d, err := steamkiller.New(cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return d.Run(ctx)
		},
	}
}

// createCheckCommand creates the check subcommand: a single evaluate pass.
func createCheckCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run a single evaluate-and-act pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(globalFlags)
			if err != nil {
				return err
			}
			slog.SetDefault(cfg.Log.NewSlogger())
			d, err := steamkiller.New(cfg)
			if err != nil {
				return err
			}
			d.Evaluate(cmd.Context())
			return nil
		},
	}
}

// createStatusCommand creates the status subcommand.
func createStatusCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the window and target state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(globalFlags)
			if err != nil {
				return err
			}
			d, err := steamkiller.New(cfg)
			if err != nil {
				return err
			}
			st := d.State()
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "window:         %s\n", st.Window)
			_, _ = fmt.Fprintf(out, "within window:  %v\n", st.WithinWindow)
			_, _ = fmt.Fprintf(out, "next close:     %s\n", st.NextClose.Format("Mon Jan 2 15:04 MST"))
			_, _ = fmt.Fprintf(out, "target running: %v\n", st.TargetRunning)
			return nil
		},
	}
}
