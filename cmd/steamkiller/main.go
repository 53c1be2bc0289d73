package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkrajnik/steamkiller"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GlobalFlags holds the persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
}

func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}

	root := &cobra.Command{
		Use:   "steamkiller",
		Short: "Terminate Steam outside the allowed weekly window",
		Long: `steamkiller watches Steam's PID file and terminates the client whenever it
runs outside the allowed weekly window. Without a config file the built-in
policy applies: Steam may run on Saturday between 06:00 and 18:59 local time.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", "", "path to steamkiller.toml (optional)")

	root.AddCommand(
		createServeCommand(globalFlags),
		createCheckCommand(globalFlags),
		createStatusCommand(globalFlags),
	)
	return root
}

func loadConfig(flags *GlobalFlags) (steamkiller.Config, error) {
	cfg, err := steamkiller.LoadConfig(flags.ConfigPath)
	if err != nil {
		return steamkiller.Config{}, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, nil
}
