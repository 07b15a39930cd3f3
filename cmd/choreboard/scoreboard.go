package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dukerupert/choreboard/internal/scoreboard"
	"github.com/dukerupert/choreboard/internal/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var scoreboardCmd = &cobra.Command{
	Use:   "scoreboard",
	Short: "Print the current standings",
	RunE:  runScoreboard,
}

func runScoreboard(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.db.Close()

	roster, err := store.NewPersonStore(e.db).Names()
	if err != nil {
		return err
	}
	entries, err := store.NewLedgerStore(e.db).List()
	if err != nil {
		return err
	}

	printStandings(cmd.OutOrStdout(), scoreboard.Compute(roster, entries))
	return nil
}

// printStandings writes a ranked table; the leaders are highlighted.
func printStandings(w io.Writer, standings []scoreboard.Standing) {
	if len(standings) == 0 {
		fmt.Fprintln(w, "No people on the roster. Run 'choreboard seed' first.")
		return
	}

	width := len("Person")
	for _, s := range standings {
		if len(s.Person) > width {
			width = len(s.Person)
		}
	}

	bold := color.New(color.Bold)
	fmt.Fprintf(w, "%s\n", bold.Sprintf("%-4s %-*s %7s %6s", "#", width, "Person", "Points", "Done"))
	fmt.Fprintln(w, strings.Repeat("-", 4+1+width+1+7+1+6))

	for _, s := range standings {
		line := fmt.Sprintf("%-4d %-*s %7d %6d", s.Rank, width, s.Person, s.Total, s.Completions)
		switch {
		case s.Rank == 1 && s.Total > 0:
			line = color.GreenString(line)
		case s.Total < 0:
			line = color.RedString(line)
		}
		fmt.Fprintln(w, line)
	}
}
