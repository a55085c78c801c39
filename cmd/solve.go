package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathpilot/internal/classify"
	"github.com/abhisek/mathpilot/internal/problem"
	"github.com/abhisek/mathpilot/internal/report"
	"github.com/abhisek/mathpilot/internal/solver"
)

var solveCmd = &cobra.Command{
	Use:   "solve <problem text>",
	Short: "Classify and solve a single problem",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")

		domain, err := classify.New(nil).Classify(text)
		if err != nil {
			return err
		}

		steps, _ := cmd.Flags().GetBool("steps")
		sol, err := solver.Solve(problem.Problem{
			ID:      "adhoc",
			RawText: text,
			Domain:  domain,
		}, steps)
		if err != nil {
			return err
		}

		fmt.Print(report.RenderSolution(sol))
		return nil
	},
}

func init() {
	solveCmd.Flags().Bool("steps", false, "Show the step-by-step derivation")
}
