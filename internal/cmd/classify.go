package cmd

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mailendar/mailendar/internal/ai"
	"github.com/mailendar/mailendar/internal/classify"
	"github.com/mailendar/mailendar/internal/config"
	"github.com/mailendar/mailendar/internal/pipeline"
	"github.com/mailendar/mailendar/internal/store"
)

var (
	classifySender   string
	classifySubject  string
	classifyBody     string
	classifyBodyFile string
	classifyID       string
	classifyNoAI     bool
	classifySave     bool
	classifyVerbose  bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a single email from flags or a body file",
	Long: `Classify one email into SCHEDULE, TASK, or SPAM. The rule engine always
runs; the AI refinement pass runs when UPSTAGE_API_KEY is set and --no-ai
is not given. Prints the resulting classification as JSON.`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&classifySender, "sender", "", "Sender address")
	classifyCmd.Flags().StringVarP(&classifySubject, "subject", "s", "", "Email subject")
	classifyCmd.Flags().StringVarP(&classifyBody, "body", "b", "", "Email body text")
	classifyCmd.Flags().StringVar(&classifyBodyFile, "body-file", "", "Read the body from a file instead of --body")
	classifyCmd.Flags().StringVar(&classifyID, "id", "", "Email ID used when saving (default: content hash)")
	classifyCmd.Flags().BoolVar(&classifyNoAI, "no-ai", false, "Skip the AI refinement pass")
	classifyCmd.Flags().BoolVar(&classifySave, "save", false, "Persist the email and decision to the local database")
	classifyCmd.Flags().BoolVarP(&classifyVerbose, "verbose", "v", false, "Enable debug logging")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := newLogger(classifyVerbose)

	body := classifyBody
	if classifyBodyFile != "" {
		data, err := os.ReadFile(classifyBodyFile)
		if err != nil {
			return fmt.Errorf("failed to read body file: %w", err)
		}
		body = string(data)
	}
	if classifySubject == "" && body == "" {
		return fmt.Errorf("either --subject or --body/--body-file is required")
	}

	p := pipeline.New(buildRefiner(cfg, classifyNoAI, logger), logger)

	email := classify.Email{
		Sender:  classifySender,
		Subject: classifySubject,
		Body:    body,
	}
	result := p.Classify(cmd.Context(), email)

	if classifySave {
		id := classifyID
		if id == "" {
			id = contentID(email)
		}
		if err := saveResult(cmd, cfg, id, email, result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved as %s\n", id)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

func buildRefiner(cfg config.Config, noAI bool, logger *slog.Logger) pipeline.Refiner {
	if noAI || cfg.UpstageAPIKey == "" {
		return nil
	}

	client, err := ai.NewClient(ai.Config{
		APIKey:  cfg.UpstageAPIKey,
		BaseURL: cfg.UpstageBaseURL,
		Model:   cfg.UpstageModel,
	})
	if err != nil {
		logger.Warn("AI client unavailable, running rule-only", "error", err)
		return nil
	}
	return ai.NewRefiner(client)
}

func saveResult(cmd *cobra.Command, cfg config.Config, id string, email classify.Email, result classify.Classification) error {
	st, err := store.Open(cfg.DBPath, nil)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	now := time.Now().In(config.Seoul).Format(time.RFC3339)
	err = st.UpsertEmail(cmd.Context(), store.Email{
		ID:      id,
		Sender:  email.Sender,
		Subject: email.Subject,
		Date:    now,
		Snippet: email.Snippet,
		Body:    email.Body,
	})
	if err != nil {
		return err
	}
	return st.SaveClassification(cmd.Context(), id, result, "")
}

func contentID(email classify.Email) string {
	sum := sha256.Sum256([]byte(email.Sender + "\x00" + email.Subject + "\x00" + email.Body))
	return hex.EncodeToString(sum[:8])
}
