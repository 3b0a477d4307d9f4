package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/introbird/internal/observability"
	"github.com/jonathan/introbird/internal/types"
)

var summarizeEmailCmd = &cobra.Command{
	Use:   "summarize-email",
	Short: "Summarize an email",
	RunE:  runSummarizeEmail,
}

var summarizeResumeCmd = &cobra.Command{
	Use:   "summarize-resume",
	Short: "Summarize a PDF resume and store the summary on a user's profile",
	RunE:  runSummarizeResume,
}

var (
	summarizeEmailFile  string
	summarizeResumeFile string
	summarizeModel      string
	summarizeUser       string
)

func init() {
	summarizeEmailCmd.Flags().StringVarP(&summarizeEmailFile, "file", "f", "-", "Path to the email body (\"-\" for stdin)")
	summarizeEmailCmd.Flags().StringVar(&summarizeModel, "model", "", "Model id (defaults to DEFAULT_MODEL)")

	summarizeResumeCmd.Flags().StringVarP(&summarizeResumeFile, "file", "f", "", "Path to the PDF resume (required)")
	summarizeResumeCmd.Flags().StringVarP(&summarizeUser, "user", "u", "", "User id whose profile receives the summary (required)")
	summarizeResumeCmd.Flags().StringVar(&summarizeModel, "model", "", "Model id (defaults to DEFAULT_MODEL)")

	if err := summarizeResumeCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}
	if err := summarizeResumeCmd.MarkFlagRequired("user"); err != nil {
		panic(fmt.Sprintf("failed to mark user flag as required: %v", err))
	}

	rootCmd.AddCommand(summarizeEmailCmd, summarizeResumeCmd)
}

func runSummarizeEmail(cmd *cobra.Command, _ []string) error {
	body, err := readText("", summarizeEmailFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer a.Close() //nolint:errcheck

	out, err := a.service.SummarizeEmail(ctx, types.SummarizeEmailRequest{EmailBody: body, ModelID: summarizeModel})
	if err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintSummary("Email summary", out)
	return nil
}

func runSummarizeResume(cmd *cobra.Command, _ []string) error {
	pdf, err := os.ReadFile(summarizeResumeFile)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer a.Close() //nolint:errcheck

	out, err := a.service.SummarizeResume(ctx, summarizeUser, pdf, summarizeModel)
	if err != nil {
		return err
	}

	p := observability.NewPrinter(cmd.OutOrStdout())
	p.PrintSummary("Resume summary", out)

	stored, err := a.service.GetProfile(ctx, summarizeUser)
	if err != nil {
		return err
	}
	p.PrintProfile(stored)
	return nil
}
