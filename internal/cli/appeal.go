package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/assist"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/intake"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/letter"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/pipeline"
)

var (
	appealPolicy    string
	appealCodes     string
	appealPatient   pipeline.Patient
	appealOutputDir string
	appealTimeout   time.Duration
	appealPrint     bool
)

// appealCmd represents the appeal command
var appealCmd = &cobra.Command{
	Use:   "appeal <document>",
	Short: "Analyse a rejection letter and draft an appeal",
	Long: `Appeal runs the complete workflow on one claim:
- Extract claim facts (model path with pattern fallback)
- Explain the denial codes against the knowledge base
- Run the six analysis stages, from document analysis to quality review
- Split the reviewed letter from the next-steps guidance
- Write <claim>.letter.md, <claim>.guidance.md and <claim>.json

The document may be a .txt, .md or .html file, or an http(s) URL.

Example:
  claimassist appeal rejection.txt
  claimassist appeal rejection.txt --policy policy.txt --codes PED-001,WP-001
  claimassist appeal https://tpa.example.com/letters/123 --name "Ravi Kumar"`,
	Args: cobra.ExactArgs(1),
	RunE: runAppeal,
}

func init() {
	rootCmd.AddCommand(appealCmd)

	appealCmd.Flags().StringVar(&appealPolicy, "policy", "", "policy document (file or URL)")
	appealCmd.Flags().StringVar(&appealCodes, "codes", "", "denial codes, comma separated (default: codes found in the document)")
	appealCmd.Flags().StringVar(&appealPatient.Name, "name", "", "patient name (default: name found in the document)")
	appealCmd.Flags().StringVar(&appealPatient.Address, "address", "", "patient address")
	appealCmd.Flags().StringVar(&appealPatient.Phone, "phone", "", "patient phone")
	appealCmd.Flags().StringVar(&appealPatient.Email, "email", "", "patient email")
	appealCmd.Flags().StringVar(&appealOutputDir, "output-dir", "", "output directory (default: output.dir from config)")
	appealCmd.Flags().DurationVar(&appealTimeout, "timeout", 20*time.Minute, "overall timeout")
	appealCmd.Flags().BoolVar(&appealPrint, "print", false, "also print the letter to stdout")
}

func runAppeal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if appealOutputDir != "" {
		cfg.Output.Dir = appealOutputDir
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), appealTimeout)
	defer cancel()

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	assistant, err := newAssistant(cfg, provider, progressObserver(os.Stderr))
	if err != nil {
		return err
	}

	fetcher := newFetcher(cfg)
	doc, err := intake.Load(ctx, fetcher, args[0], cfg.HTTP.MaxBodyBytes)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	policy := ""
	if appealPolicy != "" {
		if policy, err = intake.Load(ctx, fetcher, appealPolicy, cfg.HTTP.MaxBodyBytes); err != nil {
			return fmt.Errorf("read policy: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Claim Appeal\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Document:   %s (%d chars)\n", args[0], len(doc))
	fmt.Fprintf(os.Stderr, "  Model:      %s/%s\n", provider.Name(), cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "\n")

	out, err := assistant.Appeal(ctx, assist.Request{
		DocumentText: doc,
		PolicyText:   policy,
		DenialCodes:  assist.ParseCodes(appealCodes),
		Patient:      appealPatient,
	})
	if err != nil {
		return err
	}

	files, err := letter.NewWriter(cfg.Output.Dir).Write(out.ID, out.Letter, out.Guidance, out)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Facts:      %s extraction, %d fields\n", out.Extraction.Source, len(out.Extraction.Facts.Filled()))
	fmt.Fprintf(os.Stderr, "  Codes:      %v\n", out.DenialCodes)
	fmt.Fprintf(os.Stderr, "  Outlook:    %s\n", out.Analysis.OverallAppealLikelihood)
	fmt.Fprintf(os.Stderr, "  Letter:     %s\n", files.Letter)
	if files.Guidance != "" {
		fmt.Fprintf(os.Stderr, "  Guidance:   %s\n", files.Guidance)
	}
	fmt.Fprintf(os.Stderr, "  Record:     %s\n", files.Record)
	fmt.Fprintf(os.Stderr, "\n")

	if appealPrint {
		fmt.Fprintln(cmd.OutOrStdout(), out.Letter)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
