package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseintake/internal/core/domain"
)

var (
	caseNewSender      string
	caseMessageFrom    string
	caseMessageSubject string
	caseMessageBody    string
	caseMessageFile    string
	caseViewJSON       bool
)

var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Manage quotation cases",
	Long:  `Open cases, feed them correspondence, and inspect their state and timeline.`,
}

var caseNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Open a new case",
	RunE:  runCaseNew,
}

var caseAddMessageCmd = &cobra.Command{
	Use:   "add-message [case-id]",
	Short: "Append a message to a case's thread",
	Long: `Appends one email or chat message to the case. The body is taken
from --body or read from --file. Run 'caseintake analyse' afterwards
to pick up the new input.`,
	Args: cobra.ExactArgs(1),
	RunE: runCaseAddMessage,
}

var caseViewCmd = &cobra.Command{
	Use:   "view [case-id]",
	Short: "Show a case summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runCaseView,
}

var caseHistoryCmd = &cobra.Command{
	Use:   "history [case-id]",
	Short: "Show the audit timeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runCaseHistory,
}

func init() {
	caseNewCmd.Flags().StringVarP(&caseNewSender, "sender", "s", "", "sender email domain for the known-contact match")
	caseAddMessageCmd.Flags().StringVar(&caseMessageFrom, "from", "", "sender address")
	caseAddMessageCmd.Flags().StringVar(&caseMessageSubject, "subject", "", "message subject")
	caseAddMessageCmd.Flags().StringVar(&caseMessageBody, "body", "", "message body text")
	caseAddMessageCmd.Flags().StringVar(&caseMessageFile, "file", "", "read the message body from a file")
	caseViewCmd.Flags().BoolVar(&caseViewJSON, "json", false, "output case as JSON")

	caseCmd.AddCommand(caseNewCmd)
	caseCmd.AddCommand(caseAddMessageCmd)
	caseCmd.AddCommand(caseViewCmd)
	caseCmd.AddCommand(caseHistoryCmd)
	rootCmd.AddCommand(caseCmd)
}

func runCaseNew(cmd *cobra.Command, _ []string) error {
	if intakeService == nil {
		return errors.New("intake service not configured")
	}

	rec, err := intakeService.OpenCase(context.Background(), caseNewSender)
	if err != nil {
		return fmt.Errorf("failed to open case: %w", err)
	}

	cmd.Printf("Opened case %s\n", rec.ID)
	return nil
}

func runCaseAddMessage(cmd *cobra.Command, args []string) error {
	if intakeService == nil {
		return errors.New("intake service not configured")
	}

	body := caseMessageBody
	if caseMessageFile != "" {
		data, err := os.ReadFile(caseMessageFile)
		if err != nil {
			return fmt.Errorf("reading message file: %w", err)
		}
		body = string(data)
	}
	if body == "" {
		return errors.New("message body is empty: pass --body or --file")
	}

	id, err := intakeService.AddMessage(context.Background(), args[0], domain.Message{
		From:    caseMessageFrom,
		Subject: caseMessageSubject,
		RawBody: body,
	})
	if err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}

	cmd.Printf("Message %s added. Run 'caseintake analyse %s' to process it.\n", id, args[0])
	return nil
}

func runCaseView(cmd *cobra.Command, args []string) error {
	if analyserService == nil {
		return errors.New("analyser service not configured")
	}

	caseID := args[0]
	ctx := context.Background()

	rec, err := analyserService.Case(ctx, caseID)
	if err != nil {
		return fmt.Errorf("failed to load case: %w", err)
	}

	if caseViewJSON {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal case: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Case: %s\n\n", rec.ID)
	cmd.Printf("  Status:       %s\n", rec.Status)
	cmd.Printf("  Request type: %s\n", rec.RequestType)
	cmd.Printf("  Facts:        %d\n", rec.FactsCount)
	cmd.Printf("  Open gaps:    %d\n", rec.OpenGapsCount)
	cmd.Printf("  Completeness: %d%%\n", rec.CompletenessPct)
	if rec.SenderDomain != "" {
		cmd.Printf("  Sender:       %s\n", rec.SenderDomain)
	}
	cmd.Printf("  Created:      %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
	if !rec.AnalysedAt.IsZero() {
		cmd.Printf("  Analysed:     %s\n", rec.AnalysedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func runCaseHistory(cmd *cobra.Command, args []string) error {
	if analyserService == nil {
		return errors.New("analyser service not configured")
	}

	caseID := args[0]
	ctx := context.Background()

	entries, err := analyserService.History(ctx, caseID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(entries) == 0 {
		cmd.Printf("No history for case: %s\n", caseID)
		return nil
	}

	cmd.Printf("History for case %s:\n\n", caseID)
	for _, e := range entries {
		cmd.Printf("  %s  %-18s %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Event, e.Detail)
	}

	return nil
}
