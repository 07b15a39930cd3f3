package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dukerupert/choreboard/internal/archive"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var archivesLimit int

var archivesCmd = &cobra.Command{
	Use:   "archives",
	Short: "List ledger archives taken before resets",
	RunE:  runArchives,
}

var archivesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Download and decrypt one archive, printing it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchivesShow,
}

func init() {
	archivesCmd.Flags().IntVar(&archivesLimit, "limit", 20, "maximum number of archives to list")
	archivesCmd.AddCommand(archivesShowCmd)
}

func newArchiver(e *env) *archive.Archiver {
	return archive.NewArchiver(archiveConfig(e.cfg), store.NewArchiveStore(e.db), store.NewLedgerStore(e.db), store.NewRatingStore(e.db), e.logger.With("component", "archive"))
}

func runArchives(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.db.Close()

	archives, err := newArchiver(e).List(archivesLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(archives) == 0 {
		fmt.Fprintln(out, "No archives yet.")
		return nil
	}
	for _, a := range archives {
		status := string(a.Status)
		switch a.Status {
		case model.ArchiveStatusCompleted:
			status = color.GreenString(status)
		case model.ArchiveStatusFailed:
			status = color.RedString(status)
		default:
			status = color.YellowString(status)
		}
		fmt.Fprintf(out, "%4d  %s  %-9s  %4d entries  %s\n",
			a.ID, a.CreatedAt.Format("2006-01-02 15:04"), status, a.Entries, a.Filename)
		if a.ErrorMessage != "" {
			fmt.Fprintf(out, "      %s\n", color.RedString(a.ErrorMessage))
		}
	}
	return nil
}

func runArchivesShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid archive id %q", args[0])
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.db.Close()

	snap, err := newArchiver(e).Fetch(cmd.Context(), id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
