package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathpilot/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <problem text>",
	Short: "Print the domain a problem routes to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		domain, err := classify.New(nil).Classify(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(domain)
		return nil
	},
}
