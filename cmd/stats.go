package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathpilot/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recorded session statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dbPath, err := resolveDBPath(cmd, "")
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		totals, err := st.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("sessions: %d, attempted: %d, solved: %d\n",
			totals.Sessions, totals.Attempted, totals.Solved)

		sessions, err := st.Sessions(ctx, 10)
		if err != nil {
			return err
		}
		for _, s := range sessions {
			fmt.Printf("%s  %-14s  %d/%d  %s\n",
				s.StartedAt.Format("2006-01-02 15:04"),
				s.State, s.Solved, s.Attempted, s.SessionID)
		}
		return nil
	},
}
