package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/pipeline"
)

var (
	summaryOnly bool
	failOn      string
)

var submitCmd = &cobra.Command{
	Use:   "submit <glob>...",
	Short: "Validate files as one package and print the report",
	Long: `submit matches the files to slots as a preview would, then runs the full
pipeline with the stored hints and prints the report as JSON.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold, err := parseFailOn(failOn)
		if err != nil {
			return err
		}

		files, err := collectFiles(args)
		if err != nil {
			return err
		}

		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}

		preview, err := svc.Preview(cmd.Context(), previewRequest(files))
		if err != nil {
			return err
		}

		start, end := period()
		report, err := svc.Submit(cmd.Context(), pipeline.SubmitRequest{
			PackageID:   preview.PackageID,
			Domain:      domainName,
			PeriodStart: start,
			PeriodEnd:   end,
			Files:       files,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if summaryOnly {
			fmt.Fprintf(out, "%s %s %s\n%s\n", report.PackageID, report.Verdict, report.RiskLevel, report.Why)
		} else {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		}

		if threshold != "" && report.Verdict.Severity() >= threshold.Severity() {
			return fmt.Errorf("verdict %s", report.Verdict)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
	addRunFlags(submitCmd)
	submitCmd.Flags().BoolVar(&summaryOnly, "summary", false, "Print only the verdict line and explanation")
	submitCmd.Flags().StringVar(&failOn, "fail-on", "", "Exit non-zero at or above this verdict (NEED_CLARIFY, NEED_FIX)")
}

func parseFailOn(s string) (evidence.Verdict, error) {
	switch v := evidence.Verdict(s); v {
	case "", evidence.NeedClarify, evidence.NeedFix:
		return v, nil
	default:
		return "", fmt.Errorf("--fail-on must be NEED_CLARIFY or NEED_FIX, got %q", s)
	}
}
