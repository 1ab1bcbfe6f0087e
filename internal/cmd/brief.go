package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mailendar/mailendar/internal/agent"
	"github.com/mailendar/mailendar/internal/ai"
	"github.com/mailendar/mailendar/internal/config"
	"github.com/mailendar/mailendar/internal/google"
	"github.com/mailendar/mailendar/internal/output"
	"github.com/mailendar/mailendar/internal/store"
)

var (
	briefNoAI      bool
	briefOut       string
	briefThreshold int
	briefVerbose   bool
)

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Generate the daily briefing from calendar, tasks, and urgent mail",
	Long: `Collect today's calendar events, pending Google Tasks, and urgent
confirmed TASK emails, then render a markdown briefing. With an Upstage
API key the briefing is written by the AI assistant; otherwise a plain
local rendering is produced.`,
	RunE: runBrief,
}

func init() {
	rootCmd.AddCommand(briefCmd)

	briefCmd.Flags().BoolVar(&briefNoAI, "no-ai", false, "Render locally without the AI assistant")
	briefCmd.Flags().StringVarP(&briefOut, "out", "o", "", "Write the briefing to a file instead of stdout")
	briefCmd.Flags().IntVar(&briefThreshold, "urgent-threshold", 70, "Minimum urgency for the urgent tasks section")
	briefCmd.Flags().BoolVarP(&briefVerbose, "verbose", "v", false, "Enable debug logging")
}

func runBrief(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := newLogger(briefVerbose)
	ctx := cmd.Context()
	now := time.Now().In(config.Seoul)

	gc, err := google.NewClient(cfg.GoogleTokenFile, logger)
	if err != nil {
		return fmt.Errorf("failed to build google client: %w", err)
	}

	events, err := gc.TodayEvents(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list today's events: %w", err)
	}
	tasks, err := gc.ListPendingTasks(ctx, 30)
	if err != nil {
		return fmt.Errorf("failed to list pending tasks: %w", err)
	}

	urgent, err := urgentTasks(cmd, cfg, briefThreshold)
	if err != nil {
		logger.Warn("failed to load urgent tasks", "error", err)
	}

	brief, err := renderBrief(cmd, cfg, now, events, tasks, urgent)
	if err != nil {
		return err
	}

	if briefOut != "" {
		if err := os.WriteFile(briefOut, []byte(brief), 0644); err != nil {
			return fmt.Errorf("failed to write briefing: %w", err)
		}
		return nil
	}
	fmt.Println(brief)
	return nil
}

func renderBrief(cmd *cobra.Command, cfg config.Config, now time.Time, events []google.Event, tasks []google.Task, urgent []output.UrgentTask) (string, error) {
	if !briefNoAI && cfg.UpstageAPIKey != "" {
		client, err := ai.NewClient(ai.Config{
			APIKey:  cfg.UpstageAPIKey,
			BaseURL: cfg.UpstageBaseURL,
			Model:   cfg.UpstageModel,
		})
		if err == nil {
			brief, err := agent.New(client).DailyBrief(cmd.Context(), events, tasks)
			if err == nil {
				return brief, nil
			}
		}
	}

	return output.RenderBrief(output.BriefData{
		Date:   now,
		Events: events,
		Tasks:  tasks,
		Urgent: urgent,
	}), nil
}

func urgentTasks(cmd *cobra.Command, cfg config.Config, threshold int) ([]output.UrgentTask, error) {
	st, err := store.Open(cfg.DBPath, nil)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	items, err := st.ListUrgentTasks(cmd.Context(), threshold, 20)
	if err != nil {
		return nil, err
	}

	urgent := make([]output.UrgentTask, 0, len(items))
	for _, item := range items {
		title := item.Classification.Extracted.Title
		if title == "" {
			title = item.Email.Subject
		}
		urgent = append(urgent, output.UrgentTask{
			Title:   title,
			Urgency: item.Classification.Urgency,
		})
	}
	return urgent, nil
}
