package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"chartanalyst/configs"
	"chartanalyst/internal/adapter"
	"chartanalyst/internal/domain"
	"chartanalyst/internal/usecase"
)

// Version is set at build time with -ldflags
var Version = "dev"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chartctl",
		Short:         "chartctl - chart image trade analysis from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newPromptCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd() *cobra.Command {
	var (
		asJSON   bool
		maxBytes int64
	)

	cmd := &cobra.Command{
		Use:   "analyze [FILE]",
		Short: "Analyze a chart image",
		Long: `Send a chart image to the configured Gemini model and print the trade analysis.
Example: chartctl analyze btc-1h.png --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configs.LoadGemini()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout+10*time.Second)
			defer cancel()

			model, err := adapter.NewGeminiClient(ctx, adapter.GeminiConfig{
				APIKey:  cfg.APIKey,
				Model:   cfg.Model,
				BaseURL: cfg.BaseURL,
				Timeout: cfg.Timeout,
			})
			if err != nil {
				return err
			}

			return runAnalyze(ctx, usecase.NewChartAnalyzer(model, cfg.Timeout), args[0], maxBytes, asJSON, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw analysis as JSON")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", 10<<20, "Reject files larger than this")

	return cmd
}

// runAnalyze reads, analyzes and prints one chart
func runAnalyze(ctx context.Context, analyzer domain.ChartAnalyzer, path string, maxBytes int64, asJSON bool, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	file, err := domain.NewChartFile(filepath.Base(path), mime.TypeByExtension(filepath.Ext(path)), data, maxBytes)
	if err != nil {
		fmt.Fprintln(out, renderError(domain.UserMessage(err)))
		return err
	}

	result, err := analyzer.Analyze(ctx, file)
	if err != nil {
		fmt.Fprintln(out, renderError(domain.UserMessage(err)))
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	rendered, err := renderAnalysis(file.Name, result)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, rendered)
	return nil
}

// newPromptCmd prints the instruction sent with every image
func newPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the analysis instruction sent with every chart",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), usecase.SystemPrompt)
		},
	}
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chartctl %s\n", Version)
		},
	}
}
