package main

import (
	"errors"
	"fmt"

	"github.com/dukerupert/choreboard/internal/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var resetConfirm bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every completion and rating",
	Long: `Delete the whole completion ledger and every effort rating. The catalog,
the roster and personal preferences are kept.

When archive storage is configured the ledger is uploaded first and a
failed upload leaves everything in place.`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirm, "yes", false, "confirm the reset")
}

var errResetNotConfirmed = errors.New("refusing to reset without --yes")

func runReset(cmd *cobra.Command, args []string) error {
	if !resetConfirm {
		return errResetNotConfirmed
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.db.Close()

	ledger := store.NewLedgerStore(e.db)
	archiver := newArchiver(e)

	out := cmd.OutOrStdout()
	if archiver.Enabled() {
		a, err := archiver.Archive(cmd.Context())
		if err != nil {
			return fmt.Errorf("archive ledger, nothing was reset: %w", err)
		}
		fmt.Fprintf(out, "%s archived %d entries to %s\n", color.GreenString("✓"), a.Entries, a.S3Key)
	} else {
		fmt.Fprintf(out, "%s archive storage not configured, skipping upload\n", color.YellowString("⚠"))
	}

	res, err := ledger.Reset()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s deleted %d completions and %d ratings\n", color.GreenString("✓"), res.Completions, res.Ratings)
	return nil
}
