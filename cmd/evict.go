package cmd

import (
	"fmt"

	"webboot/core/config"
	"webboot/core/restart"

	"github.com/spf13/cobra"
)

var evictPort int

// evictCmd removes the mark file of a port so the development instance using it stops.
var evictCmd = &cobra.Command{
	Use:   "evict",
	Short: "Stop the development instance listening on a port",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = evictPort
		}
		if err := restart.Evict(cfg.Boot.MarkDir, port); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Evicted %s\n", restart.MarkPath(cfg.Boot.MarkDir, port))
		return nil
	},
}

func init() {
	evictCmd.Flags().IntVarP(&evictPort, "port", "p", 8080, "port of the instance to stop")
	RootCmd.AddCommand(evictCmd)
}
