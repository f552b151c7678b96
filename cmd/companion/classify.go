package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-chat-companion/internal/nlu"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <message>",
	Short: "Print the detected intent of a message as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		intent := nlu.NewClassifier().Classify(strings.Join(args, " "))
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(intent)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
