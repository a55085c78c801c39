package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathpilot/internal/ocr"
	"github.com/abhisek/mathpilot/internal/report"
	"github.com/abhisek/mathpilot/internal/scripted"
	"github.com/abhisek/mathpilot/internal/session"
	"github.com/abhisek/mathpilot/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an unattended homework session",
	Long:  "Run authenticates against the configured script, then fetches, solves and submits every problem in the assignment with randomized pacing. Ctrl-C stops the session at the next pause.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if p, _ := cmd.Flags().GetString("script"); p != "" {
			cfg.Script = p
		}
		if cmd.Flags().Changed("ethical") {
			cfg.EthicalMode, _ = cmd.Flags().GetBool("ethical")
		}
		if cfg.Script == "" {
			return fmt.Errorf("no assignment source configured: set script in the config file or pass --script")
		}

		script, err := scripted.Load(cfg.Script)
		if err != nil {
			return err
		}
		harness := scripted.NewHarness(script)

		dbPath, err := resolveDBPath(cmd, cfg.Database)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		username := cfg.Username
		if username == "" {
			username = "local"
		}

		collab := session.Collaborators{
			Auth:      harness,
			Locator:   harness,
			Source:    harness,
			Submitter: harness,
		}

		// OCR is optional — text-only assignments run without it.
		if extractor, err := ocr.NewExtractorFromEnv(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "OCR provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Image-delivered problems will be skipped.")
		} else {
			collab.OCR = extractor
		}

		reporter := session.MultiReporter{
			report.NewConsole(os.Stdout),
			store.NewRecorder(st, username),
		}

		mgr := session.NewManager()
		ctrl, done, err := mgr.Start(ctx, username, cfg.SessionConfig(), collab, reporter)
		if err != nil {
			return err
		}

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigs)
		go func() {
			<-sigs
			fmt.Fprintln(os.Stderr, "stop requested, finishing current step...")
			ctrl.Stop()
		}()

		runErr := <-done

		snap := ctrl.Snapshot()
		fmt.Printf("session %s: %s, solved %d/%d, submitted %d answers\n",
			snap.SessionID, snap.State, snap.Stats.Solved, snap.Stats.Attempted,
			len(harness.Submissions()))
		return runErr
	},
}

func init() {
	runCmd.Flags().String("script", "", "Path to assignment script (overrides config)")
	runCmd.Flags().Bool("ethical", false, "Materialize step-by-step derivations for review")
}
