package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/strixhq/strix"
	"github.com/strixhq/strix/executor"
	"github.com/strixhq/strix/executor/pubsub"
	"github.com/strixhq/strix/preset"
	"github.com/strixhq/strix/provider"
	"github.com/strixhq/strix/provider/models"
	"github.com/strixhq/strix/provider/openai"
	"github.com/strixhq/strix/sink"
)

func runCmd() *cobra.Command {
	var (
		presetPath  string
		input       string
		imagePath   string
		uiLang      string
		historyPath string
		parallel    int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a preset pipeline",
		Long: `Execute a preset pipeline against the configured providers.

Input text comes from --input or stdin; --image attaches a captured image for
vision blocks. API keys are read from the environment (OPENAI_API_KEY),
optionally via a .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := preset.Load(presetPath)
			if err != nil {
				return err
			}

			if input == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				input = strings.TrimRight(string(data), "\n")
			}

			capture := strix.NoCapture
			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				capture = strix.NewImageCapture(data)
			}

			registerModels(pipeline)

			var history sink.History = sink.NoopHistory{}
			if historyPath != "" {
				history = newFileHistory(historyPath)
			}

			console := newConsoleDisplay(cmd.OutOrStdout())
			local, err := executor.NewLocal(pubsub.LocalBroker(),
				executor.WithDisplay(console),
				executor.WithHistory(history),
				executor.WithMaxParallelBranches(parallel),
			)
			if err != nil {
				return err
			}

			return local.Run(cmd.Context(), executor.RunCommand{
				Pipeline: pipeline,
				Input:    input,
				Capture:  capture,
				Cancel:   strix.NewCancelToken(),
				Config: executor.RunConfig{
					Keys:       provider.APIKeys{openai.ProviderID: os.Getenv("OPENAI_API_KEY")},
					UILanguage: uiLang,
					Models:     models.Global,
				},
				Hook: newBadgeHook(cmd.OutOrStdout()),
			})
		},
	}

	cmd.Flags().StringVarP(&presetPath, "preset", "p", "", "preset yaml file (required)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "input text; stdin when empty")
	cmd.Flags().StringVar(&imagePath, "image", "", "captured image for vision blocks")
	cmd.Flags().StringVar(&uiLang, "lang", "en", "language for user-facing error text")
	cmd.Flags().StringVar(&historyPath, "history", "", "append results to this jsonl file")
	cmd.Flags().Int64Var(&parallel, "parallel", 4, "max concurrently starting branches")
	_ = cmd.MarkFlagRequired("preset")

	return cmd
}

// registerModels makes every model id a preset references resolvable. Ids are
// passed through as wire names; presets name the exact provider models.
func registerModels(p strix.Pipeline) {
	for _, b := range p.Blocks {
		if b.Kind == strix.InputAdapter || b.ModelID == "" {
			continue
		}
		models.GetOrAdd(b.ModelID, func() strix.Model {
			return openai.Model(b.ModelID, b.ModelID)
		})
	}
}
