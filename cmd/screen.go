package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	screenURL     string
	screenSources []string
	screenTimeout int
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen a single company and print the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		opts := screenOptions()
		if screenTimeout > 0 {
			opts.TimeoutSeconds = screenTimeout
		}
		if len(screenSources) > 0 {
			opts.Sources = screenSources
		}

		result := env.Screener.Screen(ctx, screenURL, opts)

		if result.Succeeded() {
			zap.L().Info("screening complete",
				zap.String("company", screenURL),
				zap.Int64("latency_ms", result.LatencyMS),
				zap.Int("model_retries", result.ModelRetries),
			)
		} else {
			zap.L().Warn("screening failed",
				zap.String("company", screenURL),
				zap.String("reason", string(result.Failure.Reason)),
				zap.String("message", result.Failure.Message),
			)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}

		if !result.Succeeded() {
			// Nonzero exit so batch callers can detect failed screenings.
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	screenCmd.Flags().StringVar(&screenURL, "url", "", "company website URL (required)")
	screenCmd.Flags().StringSliceVar(&screenSources, "sources", nil, "restrict to a subset of sources")
	screenCmd.Flags().IntVar(&screenTimeout, "timeout", 0, "request timeout in seconds (default from config)")
	_ = screenCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(screenCmd)
}
