package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/intake"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/llm"
)

var (
	extractNoModel bool
	extractTimeout time.Duration
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <document>",
	Short: "Extract claim facts from a rejection letter",
	Long: `Extract prints the claim facts found in a document as JSON, together with
the path that produced them: "model" or the pattern "fallback".

Without a configured provider, or with --no-model, only patterns are used.

Example:
  claimassist extract rejection.txt
  claimassist extract rejection.html --no-model`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(&extractNoModel, "no-model", false, "use pattern extraction only")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 3*time.Minute, "overall timeout")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), extractTimeout)
	defer cancel()

	var provider llm.Provider
	if !extractNoModel {
		provider, err = newProvider(cfg)
		if errors.Is(err, llm.ErrNotConfigured) {
			logger.Warn("no extraction model configured, using patterns only", zap.Error(err))
		} else if err != nil {
			return err
		}
	}

	doc, err := intake.Load(ctx, newFetcher(cfg), args[0], cfg.HTTP.MaxBodyBytes)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	return printJSON(cmd, newExtractor(cfg, provider).Extract(ctx, doc))
}
