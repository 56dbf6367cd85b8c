package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var roundsCmd = &cobra.Command{
	Use:   "rounds",
	Short: "List the interview rounds",
	Run: func(cmd *cobra.Command, _ []string) {
		config, err := getConfig()
		if err != nil {
			log.Fatalf("getting a config: %s", err)
		}

		catalog, err := config.Catalog()
		if err != nil {
			log.Fatal(err)
		}

		for _, round := range catalog.All() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s. %s (%d questions)\n", round.Key, round.Name, round.Questions)
		}
	},
}

func init() {
	rootCmd.AddCommand(roundsCmd)
}
