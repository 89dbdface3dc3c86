package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rawanfarouq/EduRA-sub001/internal/cli"
	"github.com/rawanfarouq/EduRA-sub001/internal/matching"
	"github.com/rawanfarouq/EduRA-sub001/internal/storage"
)

var (
	notifyOutput string
	notifyBudget time.Duration
	notifyDryRun bool
)

var notifyCmd = &cobra.Command{
	Use:   "notify <course-id>",
	Short: "Notify matching tutors about a stored course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseFormat(notifyOutput)
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
		return runNotify(cmd.Context(), comps, args[0], notifyBudget, notifyDryRun, format, cmd.OutOrStdout())
	},
}

func init() {
	notifyCmd.Flags().StringVarP(&notifyOutput, "output", "o", "text", "output format: text or json")
	notifyCmd.Flags().DurationVar(&notifyBudget, "budget", 0, "time budget for scoring (0 uses the configured budget)")
	notifyCmd.Flags().BoolVar(&notifyDryRun, "dry-run", false, "report matches without creating notifications or sending email")
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(ctx context.Context, comps *Components, courseID string, budget time.Duration, dryRun bool, format cli.OutputFormat, out io.Writer) error {
	target, err := comps.Storage.GetTarget(ctx, courseID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("course %q not found", courseID)
	}
	if err != nil {
		return err
	}
	var opts []matching.RunOption
	if budget > 0 {
		opts = append(opts, matching.WithBudget(budget))
	}
	if dryRun {
		opts = append(opts, matching.DryRun())
	}
	res, err := comps.Engine.NotifyCandidatesForNewTarget(ctx, *target, opts...)
	if err != nil {
		return err
	}
	return cli.WritePushResult(out, res, format)
}
