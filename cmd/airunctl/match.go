package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/pipeline"
)

var (
	domainName  string
	periodStart string
	periodEnd   string
)

var matchCmd = &cobra.Command{
	Use:   "match <glob>...",
	Short: "Match files to checklist slots and report coverage",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := collectFiles(args)
		if err != nil {
			return err
		}

		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}

		resp, err := svc.Preview(cmd.Context(), previewRequest(files))
		if err != nil {
			return err
		}

		names := make(map[string]string, len(files))
		for _, f := range files {
			names[f.FileID] = f.FileName
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FILE\tSLOT\tCONFIDENCE\tREASON")
		for _, h := range resp.SlotHints {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", names[h.FileID], h.SlotName, h.Confidence, h.MatchReason)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if len(resp.SlotHints) < len(files) {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d file(s) matched no slot\n", len(files)-len(resp.SlotHints))
		}
		for _, slot := range resp.MissingRequiredSlots {
			fmt.Fprintf(cmd.OutOrStdout(), "missing required slot: %s\n", slot)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
	addRunFlags(matchCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&domainName, "domain", "d", "", "Evidence domain (safety, compliance, esg)")
	cmd.Flags().StringVar(&periodStart, "start", "", "Period start, YYYY-MM-DD (default: start of last quarter)")
	cmd.Flags().StringVar(&periodEnd, "end", "", "Period end, YYYY-MM-DD (default: end of last quarter)")
	cmd.MarkFlagRequired("domain")
}

func period() (string, string) {
	start, end := defaultPeriod(time.Now())
	if periodStart != "" {
		start = periodStart
	}
	if periodEnd != "" {
		end = periodEnd
	}
	return start, end
}

func previewRequest(files []evidence.FileRef) pipeline.PreviewRequest {
	start, end := period()
	return pipeline.PreviewRequest{
		Domain:      domainName,
		PeriodStart: start,
		PeriodEnd:   end,
		AddedFiles:  files,
	}
}
