package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/assist"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/denial"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/extract"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/intake"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/model"
)

var (
	codesList bool
	codesJSON bool
	codesScan string
)

// codesCmd represents the codes command
var codesCmd = &cobra.Command{
	Use:   "codes [code...]",
	Short: "Explain denial codes and the appeal outlook",
	Long: `Codes looks denial codes up in the knowledge base and prints the analysis
report: category, success rate, common causes and appeal strategies.

Example:
  claimassist codes PED-001 WP-001
  claimassist codes --scan rejection.txt
  claimassist codes --list`,
	RunE: runCodes,
}

func init() {
	rootCmd.AddCommand(codesCmd)

	codesCmd.Flags().BoolVar(&codesList, "list", false, "list every known code")
	codesCmd.Flags().BoolVar(&codesJSON, "json", false, "print the analysis as JSON")
	codesCmd.Flags().StringVar(&codesScan, "scan", "", "take the codes from a document")
}

func runCodes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	store, _, err := openKnowledge(cfg)
	if err != nil {
		return err
	}

	if codesList {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tSUCCESS\tCATEGORY\tDESCRIPTION")
		for _, code := range store.Codes() {
			rec, _ := store.Lookup(code)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", code, rec.SuccessRate, rec.Category, rec.Description)
		}
		return w.Flush()
	}

	codes := args
	if codesScan != "" {
		doc, err := intake.Load(cmd.Context(), newFetcher(cfg), codesScan, cfg.HTTP.MaxBodyBytes)
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		codes = append(codes, extract.ScanDenialCodes(doc)...)
	}
	codes = assist.Codes(codes, model.NewClaimFacts())
	if len(codes) == 0 {
		return fmt.Errorf("no denial codes given (pass codes, --scan or --list)")
	}

	analysis := denial.NewAnalyzer(store).Analyze(codes)
	if codesJSON {
		return printJSON(cmd, analysis)
	}

	fmt.Fprintln(cmd.OutOrStdout(), denial.FormatReport(analysis))
	if analysis.Summary != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", analysis.Summary)
	}
	if len(analysis.CodesUnknown) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "✗ unknown codes: %s\n", strings.Join(analysis.CodesUnknown, ", "))
	}
	return nil
}
