package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rawanfarouq/EduRA-sub001/internal/cli"
	"github.com/rawanfarouq/EduRA-sub001/internal/matching"
	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

var (
	rankOutput string
	rankBudget time.Duration
)

var rankCmd = &cobra.Command{
	Use:   "rank <cv-file>",
	Short: "Rank stored courses against a CV (pdf, docx or plain text)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseFormat(rankOutput)
		if err != nil {
			return err
		}
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
		return runRank(cmd.Context(), comps.Engine, args[0], rankBudget, format, cmd.OutOrStdout())
	},
}

func init() {
	rankCmd.Flags().StringVarP(&rankOutput, "output", "o", "text", "output format: text or json")
	rankCmd.Flags().DurationVar(&rankBudget, "budget", 0, "time budget for the run (0 uses the configured budget)")
	rootCmd.AddCommand(rankCmd)
}

func runRank(ctx context.Context, engine *matching.Engine, path string, budget time.Duration, format cli.OutputFormat, out io.Writer) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read cv: %w", err)
	}
	doc := models.Document{
		Content:   content,
		Filename:  filepath.Base(path),
		MediaType: mime.TypeByExtension(filepath.Ext(path)),
	}
	var opts []matching.RunOption
	if budget > 0 {
		opts = append(opts, matching.WithBudget(budget))
	}
	res, err := engine.RankTargetsForCandidateDocument(ctx, doc, opts...)
	if err != nil {
		return err
	}
	return cli.WriteRankResult(out, res, format)
}
