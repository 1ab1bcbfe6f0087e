package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mailendar/mailendar/internal/classify"
	"github.com/mailendar/mailendar/internal/config"
	"github.com/mailendar/mailendar/internal/google"
	"github.com/mailendar/mailendar/internal/rules"
	"github.com/mailendar/mailendar/internal/store"
)

var (
	reviewLimit   int
	reviewConfirm string
	reviewStart   string
	reviewEnd     string
	reviewVerbose bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List or confirm emails waiting for manual review",
	Long: `Without flags, list the manual review queue ordered by urgency. With
--confirm, clear the review flag on one email, optionally overriding the
start/end times, and push it to Google Calendar or Tasks.`,
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().IntVarP(&reviewLimit, "limit", "n", 30, "Maximum queue entries to list")
	reviewCmd.Flags().StringVar(&reviewConfirm, "confirm", "", "Email ID to confirm")
	reviewCmd.Flags().StringVar(&reviewStart, "start", "", "Override start time (RFC3339)")
	reviewCmd.Flags().StringVar(&reviewEnd, "end", "", "Override end time (RFC3339)")
	reviewCmd.Flags().BoolVarP(&reviewVerbose, "verbose", "v", false, "Enable debug logging")
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := newLogger(reviewVerbose)

	st, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	if reviewConfirm != "" {
		return confirmEmail(cmd, cfg, st, reviewConfirm)
	}

	items, err := st.ListNeedsReview(cmd.Context(), reviewLimit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("review queue is empty")
		return nil
	}

	for _, item := range items {
		c := item.Classification
		fmt.Printf("%s  [%s u=%d]  %s\n", item.Email.ID, c.Category, c.Urgency, item.Email.Subject)
		if c.Extracted.StartTime != "" {
			fmt.Printf("    start: %s\n", c.Extracted.StartTime)
		}
		if c.ReviewReason != "" {
			fmt.Printf("    reason: %s\n", c.ReviewReason)
		}
	}
	return nil
}

func confirmEmail(cmd *cobra.Command, cfg config.Config, st *store.Store, id string) error {
	ctx := cmd.Context()

	c, err := st.GetClassification(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("no classification found for %s", id)
	}

	extracted := c.Extracted
	if reviewStart != "" {
		if _, err := time.Parse(time.RFC3339, reviewStart); err != nil {
			return fmt.Errorf("--start must be RFC3339: %w", err)
		}
		extracted.StartTime = reviewStart
		extracted.GuardrailReason = ""
	}
	if reviewEnd != "" {
		if _, err := time.Parse(time.RFC3339, reviewEnd); err != nil {
			return fmt.Errorf("--end must be RFC3339: %w", err)
		}
		extracted.EndTime = reviewEnd
	}

	if c.Category == rules.CategorySchedule && extracted.StartTime == classify.Undetermined {
		return fmt.Errorf("schedule %s still has no start time; pass --start", id)
	}

	if err := st.SetNeedsReview(ctx, id, false, extracted); err != nil {
		return err
	}

	gc, err := google.NewClient(cfg.GoogleTokenFile, newLogger(reviewVerbose))
	if err != nil {
		return fmt.Errorf("failed to build google client: %w", err)
	}

	switch c.Category {
	case rules.CategorySchedule:
		ev, err := gc.CreateEvent(ctx, extracted)
		if err != nil {
			return err
		}
		if err := st.SetGoogleLink(ctx, id, ev.ID, ""); err != nil {
			return err
		}
		fmt.Printf("calendar event created: %s\n", ev.ID)
	case rules.CategoryTask:
		task, err := gc.CreateTask(ctx, extracted.Title, extracted.Description)
		if err != nil {
			return err
		}
		if err := st.SetGoogleLink(ctx, id, "", task.ID); err != nil {
			return err
		}
		fmt.Printf("task created: %s\n", task.ID)
	default:
		fmt.Printf("%s confirmed (no Google object for %s)\n", id, c.Category)
	}
	return nil
}
