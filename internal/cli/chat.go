package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pacifico/agora/internal/config"
	"github.com/pacifico/agora/internal/daemon"
)

var (
	chatUser string
	chatTier string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant from the terminal",
	Long: `Open an interactive session against the local brain, without the HTTP
server. Type 'salir' or 'exit' to quit.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatUser, "user", "console", "user id for the session")
	chatCmd.Flags().StringVar(&chatTier, "tier", "developer", "tier for the session")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	} else {
		// Keep the REPL quiet unless asked otherwise.
		cfg.Logging.Level = "error"
	}
	cfg.Logging.Console = false

	d, err := daemon.New(cfg)
	if err != nil {
		return err
	}

	registry := d.Registry()
	info, err := registry.CreateSession(chatUser, chatTier)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), info.Welcome)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(cmd.OutOrStdout(), "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "salir" || line == "exit" {
			break
		}

		result := registry.Process(cmd.Context(), chatUser, line)
		if result.Status == "success" {
			fmt.Fprintln(cmd.OutOrStdout(), result.Response)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), result.Err)
		}
	}
	return scanner.Err()
}
