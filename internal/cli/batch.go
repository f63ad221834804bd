package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/assist"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/intake"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/letter"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest>",
	Short: "Appeal many claims from a YAML manifest in parallel",
	Long: `Batch runs every case of a manifest through the appeal workflow:
- Cases are independent and run on a bounded worker pool
- All workers share one provider rate limit
- Each case writes its own letter, guidance and JSON record

Manifest format:
  cases:
    - id: star-2024-001
      document: letters/star.txt
      policy: policies/star.txt
      denial_codes: [PED-001]
      patient: {name: Ravi Kumar, phone: "9876543210"}

Example:
  claimassist batch cases.yaml
  claimassist batch cases.yaml --concurrency 4 --output-dir ./appeals`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent cases (default: concurrency.workers from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory (default: output.dir from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", time.Hour, "total timeout for the batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}

	manifest, err := intake.LoadManifest(args[0])
	if err != nil {
		return err
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	assistant, err := newAssistant(cfg, provider, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Appeals\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Manifest:     %s (%d cases)\n", args[0], len(manifest.Cases))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Rate limit:   %.2f req/s (burst %d)\n", cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "\n")

	writer := letter.NewWriter(cfg.Output.Dir)
	loader := assist.Loader{Fetcher: newFetcher(cfg), MaxBytes: cfg.HTTP.MaxBodyBytes}
	processor := worker.NewBatchProcessor(assistant, loader, cfg.Concurrency.Workers)
	processor.OnResult(func(r *worker.CaseResult) {
		if r.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.ID, r.Error)
			return
		}
		out := r.Outcome
		files, err := writer.Write(r.ID, out.Letter, out.Guidance, out)
		if err != nil {
			r.Error = err
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.ID, err)
			return
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%s, outlook: %s) → %s\n",
			r.ID, r.Duration.Round(time.Second), out.Analysis.OverallAppealLikelihood, files.Letter)
	})

	results := processor.Process(ctx, manifest.Cases)
	summary := worker.Summarize(results)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d cases\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", summary.Succeeded)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", summary.Failed)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "\n")

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d cases failed", summary.Failed, len(results))
	}
	return nil
}
