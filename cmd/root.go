package cmd

import (
	"fmt"
	"os"

	"webboot/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configDir string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "webboot",
	Short: "Embedded web server boot",
	Long: `webboot starts an embedded web server with selective archive scanning,
a cascading properties configuration and automatic restart in development.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}
	// Development config gives readable timestamps on a terminal
	l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console", Output: "stderr"})
	if logErr != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	l.Error("command failed", zap.String("command", commandName()), zap.Error(err))
	_ = l.Sync()
	os.Exit(1)
}

func commandName() string {
	cmd, _, err := RootCmd.Find(os.Args[1:])
	if err != nil || cmd == nil {
		return RootCmd.Name()
	}
	return cmd.CommandPath()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding the .env files")
}
