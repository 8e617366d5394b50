package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docpilot-ai/docpilot/jobs"
	"github.com/docpilot-ai/docpilot/metrics"
	"github.com/docpilot-ai/docpilot/pipeline"
	"github.com/docpilot-ai/docpilot/review"
)

var configFile string

// BuildCLI assembles the command tree. Dependencies are wired lazily inside
// each command so --help never needs a reachable paperless instance.
func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "docpilot",
		Short:   "AI classification pipeline for a paperless-ngx archive",
		Version: "1.0.0",
		Long: `docpilot drives scanned documents through OCR, schema discovery and
classification steps, parking anything uncertain in a review queue
instead of guessing.`,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.ini", "config file path")

	rootCmd.AddCommand(buildProcessCommand())
	rootCmd.AddCommand(buildBootstrapCommand())
	rootCmd.AddCommand(buildOCRCommand())
	rootCmd.AddCommand(buildCleanupCommand())
	rootCmd.AddCommand(buildReviewCommand())
	rootCmd.AddCommand(buildJobsCommand())
	rootCmd.AddCommand(buildServeCommand())

	return rootCmd
}

func buildProcessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "process <document-id>",
		Short: "Run one document through the pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var documentID int
			if _, err := fmt.Sscanf(args[0], "%d", &documentID); err != nil {
				return fmt.Errorf("document id must be a number, got %q", args[0])
			}

			a, err := newApp(configFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reporter := metrics.NewReporter(pipeline.LogReporter{}, a.collector)
			return a.orch.ProcessDocument(ctx, documentID, reporter)
		},
	}
}

func buildBootstrapCommand() *cobra.Command {
	var rate float64

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Scan the whole archive for missing taxonomy entities",
		Long: `Iterates every document, asks the model which correspondents, types,
tags and custom fields are missing from the archive, and seeds the
review queue with the suggestions. Repeat findings across documents
raise the occurrence count instead of duplicating items.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configFile)
			if err != nil {
				return err
			}
			job := jobs.NewBootstrap(a.store, a.store, a.analyzer, a.queue, a.blocks, rate)
			return runJob(a, jobs.KindBootstrap, job.Run)
		},
	}

	cmd.Flags().Float64Var(&rate, "rate", 1.0, "documents per second")
	return cmd
}

func buildOCRCommand() *cobra.Command {
	var rate float64

	cmd := &cobra.Command{
		Use:   "ocr",
		Short: "Backfill text content for documents that have none",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configFile)
			if err != nil {
				return err
			}
			job := jobs.NewBulkOCR(a.store, a.vision, a.orch.Markers(), rate)
			return runJob(a, jobs.KindBulkOCR, job.Run)
		},
	}

	cmd.Flags().Float64Var(&rate, "rate", 1.0, "documents per second")
	return cmd
}

func buildCleanupCommand() *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Suggest merges for near-duplicate entity names",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configFile)
			if err != nil {
				return err
			}
			job := jobs.NewCleanup(a.store, a.queue, threshold)
			return runJob(a, jobs.KindCleanup, job.Run)
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", jobs.DefaultCleanupThreshold, "similarity ratio above which names are merge candidates")
	return cmd
}

// runJob starts the job under the manager, cancels it on SIGINT and prints
// the final progress snapshot.
func runJob(a *app, kind jobs.Kind, fn jobs.JobFunc) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID, err := a.manager.Start(ctx, kind, fn)
	if err != nil {
		return err
	}
	fmt.Printf("started %s run %s\n", kind, runID)

	a.manager.Wait(kind)
	p := a.manager.Status(kind)
	a.collector.JobFinished(string(kind), string(p.Status))

	fmt.Printf("%s %s: %d/%d items\n", kind, p.Status, p.Processed, p.Total)
	printCounters(p.Counters)

	if p.Status == jobs.StatusFailed {
		return errors.New(p.ErrorMessage)
	}
	return nil
}

func printCounters(counters map[string]int) {
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %d\n", k, counters[k])
	}
}

func buildReviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Inspect and resolve pending review items",
	}

	var category string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List pending review items",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configFile)
			if err != nil {
				return err
			}

			items, err := a.queue.GetAll(cmd.Context(), review.Category(category))
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("review queue is empty")
				return nil
			}
			for _, item := range items {
				subject := "archive-wide"
				if item.SubjectDocumentID != 0 {
					subject = fmt.Sprintf("document %d", item.SubjectDocumentID)
				}
				fmt.Printf("%s  [%s] %q (%s, %d attempts)\n    %s\n",
					item.ID, item.Category, item.SuggestedValue, subject, item.Attempts, item.Reasoning)
			}
			return nil
		},
	}
	listCmd.Flags().StringVar(&category, "category", "", "only items of this category")

	var overrideValue string
	approveCmd := &cobra.Command{
		Use:   "approve <item-id>",
		Short: "Approve a pending item, optionally with a corrected value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configFile)
			if err != nil {
				return err
			}
			if err := a.resolver.Approve(cmd.Context(), args[0], overrideValue); err != nil {
				return err
			}
			a.collector.ReviewResolved("approved")
			fmt.Println("approved")
			return nil
		},
	}
	approveCmd.Flags().StringVar(&overrideValue, "value", "", "apply this value instead of the suggested one")

	var reason string
	rejectCmd := &cobra.Command{
		Use:   "reject <item-id>",
		Short: "Reject a pending item and blocklist entity-name suggestions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configFile)
			if err != nil {
				return err
			}
			if err := a.resolver.Reject(cmd.Context(), args[0], reason); err != nil {
				return err
			}
			a.collector.ReviewResolved("rejected")
			fmt.Println("rejected")
			return nil
		},
	}
	rejectCmd.Flags().StringVar(&reason, "reason", "", "why the suggestion is wrong")

	swapCmd := &cobra.Command{
		Use:   "swap <item-id> <new-value>",
		Short: "Replace a pending item's suggested value without resolving it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configFile)
			if err != nil {
				return err
			}
			item, err := swapSuggestion(cmd.Context(), a.queue, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("suggestion is now %q\n", item.SuggestedValue)
			return nil
		},
	}

	cmd.AddCommand(listCmd, approveCmd, rejectCmd, swapCmd)
	return cmd
}

// swapSuggestion maps the queue's nil-for-unknown-id contract to a command
// error so the CLI reports a missing item instead of dereferencing nil.
func swapSuggestion(ctx context.Context, queue *review.Queue, id, newValue string) (*review.PendingItem, error) {
	item, err := queue.UpdateSuggestion(ctx, id, newValue)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("no pending item %s", id)
	}
	return item, nil
}

func buildJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show background job state",
		Long: `Batch jobs run in the foreground of the command that started them;
interrupt that command (Ctrl-C) to cancel a run. This shows the last
known progress per job kind within the current process.`,
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Print progress of every job kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configFile)
			if err != nil {
				return err
			}
			for _, kind := range []jobs.Kind{jobs.KindBootstrap, jobs.KindBulkOCR, jobs.KindCleanup} {
				p := a.manager.Status(kind)
				if p.Status == jobs.StatusIdle {
					fmt.Printf("%s: idle\n", kind)
					continue
				}
				fmt.Printf("%s: %s %d/%d (run %s)\n", kind, p.Status, p.Processed, p.Total, p.RunID)
				printCounters(p.Counters)
			}
			return nil
		},
	}

	cmd.AddCommand(statusCmd)
	return cmd
}

func buildServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Expose Prometheus metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configFile)
			if err != nil {
				return err
			}

			counts, err := a.queue.Counts(cmd.Context())
			if err == nil {
				a.collector.SetQueueDepth(counts)
			}

			port := a.cfg.MetricsPort
			if port == 0 {
				port = 9090
			}
			fmt.Printf("metrics on http://localhost:%d/metrics\n", port)
			return a.collector.Serve(port)
		},
	}
}
