package cli

import (
	"github.com/spf13/cobra"

	"github.com/pacifico/agora/internal/config"
	"github.com/pacifico/agora/internal/daemon"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Agora daemon",
	Long: `Run the Agora daemon in the foreground. The daemon serves the chat,
theme and map endpoints until it receives SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	d, err := daemon.New(cfg)
	if err != nil {
		return err
	}
	return d.Run()
}
