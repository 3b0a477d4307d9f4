package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/introbird/internal/observability"
	"github.com/jonathan/introbird/internal/types"
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Improve a draft, or rewrite it according to an instruction",
	Long: `Without --instruction the draft is polished for clarity and tone.
With --instruction it is rewritten as instructed, e.g. "make it shorter".`,
	RunE: runRefine,
}

var (
	refineDraft       string
	refineFile        string
	refineInstruction string
	refineModel       string
)

func init() {
	refineCmd.Flags().StringVarP(&refineDraft, "draft", "d", "", "Draft text")
	refineCmd.Flags().StringVarP(&refineFile, "file", "f", "", "Path to a file holding the draft (\"-\" for stdin)")
	refineCmd.Flags().StringVarP(&refineInstruction, "instruction", "i", "", "How to rewrite the draft")
	refineCmd.Flags().StringVar(&refineModel, "model", "", "Model id (defaults to DEFAULT_MODEL)")

	rootCmd.AddCommand(refineCmd)
}

func runRefine(cmd *cobra.Command, _ []string) error {
	draft, err := readText(refineDraft, refineFile, cmd.InOrStdin())
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

	var out *types.RefinedDraft
	if refineInstruction == "" {
		out, err = a.service.ImproveDraft(ctx, types.ImproveDraftRequest{Draft: draft, ModelID: refineModel})
	} else {
		out, err = a.service.RefineDraft(ctx, types.RefineDraftRequest{
			CurrentDraft: draft,
			Instruction:  refineInstruction,
			ModelID:      refineModel,
		})
	}
	if err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintDraft(out)
	return nil
}
