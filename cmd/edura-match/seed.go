package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rawanfarouq/EduRA-sub001/internal/intake"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load tutors and courses from a YAML or JSON seed file",
	Long: `seed upserts every tutor and course in the file. Tutors' derived expertise and
embeddings are computed lazily by the first push run that needs them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		comps, err := initializeComponents(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer comps.Close()
		return runSeed(cmd.Context(), comps, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(ctx context.Context, comps *Components, path string, out io.Writer) error {
	tutors, courses, err := intake.LoadSeed(path)
	if err != nil {
		return err
	}
	for i := range tutors {
		if err := comps.Storage.UpsertCandidate(ctx, &tutors[i]); err != nil {
			return fmt.Errorf("store tutor %s: %w", tutors[i].ID, err)
		}
	}
	for i := range courses {
		if err := comps.Storage.UpsertTarget(ctx, &courses[i]); err != nil {
			return fmt.Errorf("store course %s: %w", courses[i].ID, err)
		}
	}
	_, err = fmt.Fprintf(out, "Seeded %d tutor(s) and %d course(s) from %s\n", len(tutors), len(courses), path)
	return err
}
