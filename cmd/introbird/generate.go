package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/introbird/internal/generation"
	"github.com/jonathan/introbird/internal/observability"
	"github.com/jonathan/introbird/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate suggestions for one mode",
	Long: `Generate suggestions for one of the modes: reply, jobPosting, applyToJob, casualMessage or rewriteMessage.
The primary text comes from --text, or from --file ("-" reads stdin). With --user the stored profile
of that user personalizes the output.`,
	RunE: runGenerate,
}

var (
	generateMode     string
	generateText     string
	generateFile     string
	generateTone     string
	generateLength   int
	generateModel    string
	generateUser     string
	generateProgress bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateMode, "mode", "m", string(types.ModeReply), "Generation mode")
	generateCmd.Flags().StringVarP(&generateText, "text", "t", "", "Primary text")
	generateCmd.Flags().StringVarP(&generateFile, "file", "f", "", "Path to a file holding the primary text (\"-\" for stdin)")
	generateCmd.Flags().StringVar(&generateTone, "tone", "", "Advisory tone, e.g. formal or friendly")
	generateCmd.Flags().IntVar(&generateLength, "length", 0, "Advisory length hint in words (at least 10)")
	generateCmd.Flags().StringVar(&generateModel, "model", "", "Model id (defaults to DEFAULT_MODEL)")
	generateCmd.Flags().StringVar(&generateUser, "user", "", "User id whose profile personalizes the output")
	generateCmd.Flags().BoolVarP(&generateProgress, "verbose", "v", false, "Print retry progress to stderr")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	mode, err := types.ParseMode(generateMode)
	if err != nil {
		return err
	}
	text, err := readText(generateText, generateFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	req := types.GenerationRequest{
		Mode:        mode,
		PrimaryText: text,
		Tone:        generateTone,
		ModelID:     generateModel,
		RequesterID: generateUser,
	}
	if cmd.Flags().Changed("length") {
		req.LengthHint = types.IntPtr(generateLength)
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

	var progress generation.ProgressFunc
	if generateProgress {
		progress = observability.NewPrinter(cmd.ErrOrStderr()).PrintProgress
	}

	result, err := a.service.GenerateSuggestionsStream(ctx, req, progress)
	if err != nil {
		return err
	}

	spec, _ := types.LookupMode(mode)
	observability.NewPrinter(cmd.OutOrStdout()).PrintSuggestions(spec, result)
	return nil
}
