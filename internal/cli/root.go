package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "undercurrent",
	Short: "Behavioral signal inference and feed-decision engine",
	Long:  "Undercurrent collects low-level interaction signals, infers a latent user state, and turns it into feed pacing, ranking, and notification decisions. Single Go binary, all state in memory.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
