package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mailendar/mailendar/internal/classify"
	"github.com/mailendar/mailendar/internal/config"
	"github.com/mailendar/mailendar/internal/google"
	"github.com/mailendar/mailendar/internal/output"
	"github.com/mailendar/mailendar/internal/pipeline"
	"github.com/mailendar/mailendar/internal/rules"
	"github.com/mailendar/mailendar/internal/store"
)

var (
	watchInterval time.Duration
	watchOnce     bool
	watchNoAI     bool
	watchVerbose  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll Gmail, classify new mail, and sync confirmed items",
	Long: `Poll the configured Gmail query on an interval. Each new message is
classified and stored; confirmed SCHEDULE items are pushed to Google
Calendar, confirmed TASK items to Google Tasks, and the today view is
written to the timeline JSON file.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchInterval, "interval", 30*time.Second, "Poll interval")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Run a single poll cycle and exit")
	watchCmd.Flags().BoolVar(&watchNoAI, "no-ai", false, "Skip the AI refinement pass")
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Enable debug logging")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := newLogger(watchVerbose)

	gc, err := google.NewClient(cfg.GoogleTokenFile, logger)
	if err != nil {
		return fmt.Errorf("failed to build google client: %w", err)
	}

	st, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	p := pipeline.New(buildRefiner(cfg, watchNoAI, logger), logger)
	w := &watcher{cfg: cfg, google: gc, store: st, pipeline: p, logger: logger}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchOnce {
		return w.poll(ctx)
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	logger.Info("watching gmail", "query", cfg.GmailQuery, "interval", watchInterval)
	for {
		if err := w.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("poll cycle failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

type watcher struct {
	cfg      config.Config
	google   *google.Client
	store    *store.Store
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

func (w *watcher) poll(ctx context.Context) error {
	now := time.Now().In(config.Seoul)

	items, err := w.todayItems(ctx, now)
	if err != nil {
		w.logger.Warn("failed to load today's calendar events", "error", err)
	}

	ids, err := w.google.ListMessageIDs(ctx, w.cfg.GmailQuery, w.cfg.GmailMaxResults)
	if err != nil {
		return err
	}

	for _, id := range ids {
		item, err := w.processMessage(ctx, id, now)
		if err != nil {
			w.logger.Error("failed to process message", "id", id, "error", err)
			continue
		}
		if item != nil {
			items = append(items, *item)
		}
	}

	if reviews, err := w.store.ListNeedsReview(ctx, 100); err == nil {
		w.logger.Info("review queue", "pending", len(reviews))
	}

	if err := output.WriteTimeline(w.cfg.TimelinePath, items); err != nil {
		return err
	}
	return nil
}

func (w *watcher) todayItems(ctx context.Context, now time.Time) ([]output.TimelineItem, error) {
	events, err := w.google.TodayEvents(ctx, now)
	if err != nil {
		return nil, err
	}
	items := make([]output.TimelineItem, 0, len(events))
	for _, ev := range events {
		items = append(items, output.EventItem(ev))
	}
	return items, nil
}

// processMessage classifies one message, persists the decision, syncs
// confirmed items to Google, and marks the mail read. It returns a timeline
// item for confirmed SCHEDULE/TASK results.
func (w *watcher) processMessage(ctx context.Context, id string, now time.Time) (*output.TimelineItem, error) {
	msg, err := w.google.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}

	email := classify.Email{
		Sender:  msg.Sender,
		Subject: msg.Subject,
		Snippet: msg.Snippet,
		Body:    msg.Body,
	}
	result := w.pipeline.Classify(ctx, email)

	err = w.store.UpsertEmail(ctx, store.Email{
		ID:       msg.ID,
		ThreadID: msg.ThreadID,
		Sender:   msg.Sender,
		Subject:  msg.Subject,
		Date:     now.Format(time.RFC3339),
		Snippet:  msg.Snippet,
		Body:     msg.Body,
	})
	if err != nil {
		return nil, err
	}
	if err := w.store.SaveClassification(ctx, msg.ID, result, ""); err != nil {
		return nil, err
	}

	if err := w.google.MarkRead(ctx, msg.ID); err != nil {
		w.logger.Warn("failed to mark message read", "id", msg.ID, "error", err)
	}

	if result.NeedsReview || !result.Category.IsValid() {
		return nil, nil
	}

	item := &output.TimelineItem{
		Category:    result.Category,
		Source:      "Gmail",
		Title:       result.Extracted.Title,
		StartTime:   result.Extracted.StartTime,
		DisplayTime: output.DisplayTime(result.Extracted.StartTime),
	}

	switch result.Category {
	case rules.CategorySchedule:
		if ev, err := w.google.CreateEvent(ctx, result.Extracted); err != nil {
			w.logger.Warn("failed to create calendar event", "id", msg.ID, "error", err)
		} else if err := w.store.SetGoogleLink(ctx, msg.ID, ev.ID, ""); err != nil {
			w.logger.Warn("failed to record calendar link", "id", msg.ID, "error", err)
		}
	case rules.CategoryTask:
		if task, err := w.google.CreateTask(ctx, result.Extracted.Title, result.Extracted.Description); err != nil {
			w.logger.Warn("failed to create task", "id", msg.ID, "error", err)
		} else if err := w.store.SetGoogleLink(ctx, msg.ID, "", task.ID); err != nil {
			w.logger.Warn("failed to record task link", "id", msg.ID, "error", err)
		}
	default:
		return nil, nil
	}
	return item, nil
}
