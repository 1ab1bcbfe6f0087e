package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mailendar/mailendar/internal/agent"
	"github.com/mailendar/mailendar/internal/ai"
	"github.com/mailendar/mailendar/internal/config"
	"github.com/mailendar/mailendar/internal/store"
)

var (
	replyID      string
	replyHint    string
	replyDraft   string
	replyRefine  string
	replyVerbose bool
)

var replyCmd = &cobra.Command{
	Use:   "reply",
	Short: "Draft a Korean reply to a stored email",
	Long: `Draft a reply to an email already in the local database. With --refine
and --draft, rework an existing draft instead of starting fresh. The
draft is printed only; nothing is ever sent.`,
	RunE: runReply,
}

func init() {
	rootCmd.AddCommand(replyCmd)

	replyCmd.Flags().StringVar(&replyID, "id", "", "Stored email ID to reply to")
	replyCmd.Flags().StringVar(&replyHint, "hint", "", "Extra instruction for the draft")
	replyCmd.Flags().StringVar(&replyDraft, "draft", "", "Current draft to refine")
	replyCmd.Flags().StringVar(&replyRefine, "refine", "", "Instruction for reworking --draft")
	replyCmd.Flags().BoolVarP(&replyVerbose, "verbose", "v", false, "Enable debug logging")
	replyCmd.MarkFlagRequired("id")
}

func runReply(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	if cfg.UpstageAPIKey == "" {
		return fmt.Errorf("UPSTAGE_API_KEY is required for reply drafting")
	}

	st, err := store.Open(cfg.DBPath, newLogger(replyVerbose))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	email, err := st.GetEmail(ctx, replyID)
	if err != nil {
		return err
	}
	if email == nil {
		return fmt.Errorf("no stored email with id %s", replyID)
	}

	client, err := ai.NewClient(ai.Config{
		APIKey:  cfg.UpstageAPIKey,
		BaseURL: cfg.UpstageBaseURL,
		Model:   cfg.UpstageModel,
	})
	if err != nil {
		return err
	}

	emailContext := ai.BuildEmailContext(email.Sender, email.Subject, email.Body)
	a := agent.New(client)

	var draft string
	if replyRefine != "" {
		if replyDraft == "" {
			return fmt.Errorf("--refine requires --draft")
		}
		draft, err = a.RefineReply(ctx, emailContext, replyDraft, replyRefine)
	} else {
		draft, err = a.ReplyDraft(ctx, emailContext, replyHint)
	}
	if err != nil {
		return err
	}

	fmt.Println(draft)
	return nil
}
