package main

import (
	"fmt"
	"os"

	"github.com/dukerupert/choreboard/internal/seed"
	"github.com/dukerupert/choreboard/internal/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the roster and chore catalog",
	Long: `Create the roster and, when the catalog is empty, load the default
chores and categories. Use --file to load a custom catalog YAML instead.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "catalog YAML to load instead of the built-in one")
}

func runSeed(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.db.Close()

	var catalog *seed.Catalog
	if seedFile != "" {
		data, err := os.ReadFile(seedFile)
		if err != nil {
			return fmt.Errorf("read catalog: %w", err)
		}
		catalog, err = seed.Parse(data)
		if err != nil {
			return err
		}
	} else {
		catalog, err = seed.Default()
		if err != nil {
			return err
		}
	}

	seeder := seed.NewSeeder(store.NewPersonStore(e.db), store.NewCategoryStore(e.db), store.NewTaskStore(e.db), e.logger.With("component", "seed"))
	res, err := seeder.Run(catalog, e.cfg.Roster)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s roster: %d people added\n", color.GreenString("✓"), res.People)
	if res.Tasks == 0 {
		fmt.Fprintf(out, "%s catalog already present, left untouched\n", color.YellowString("⚠"))
		return nil
	}
	fmt.Fprintf(out, "%s catalog: %d categories, %d tasks\n", color.GreenString("✓"), res.Categories, res.Tasks)
	return nil
}
