package main

import (
	"fmt"

	"github.com/chairside/r4sync/internal/iofs"
	"github.com/chairside/r4sync/internal/ioreport"
	"github.com/chairside/r4sync/pkg/r4"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	dropWindow  windowFlags
	dropPatient int
	dropDomain  string
	dropOut     string
)

func getDropReportCmd() *cobra.Command {
	dropCmd := &cobra.Command{
		Use:   "drop-report",
		Short: "Explain count deltas for one patient and domain",
		Long: `Drop-report answers "why does this patient have fewer canonical
records than source rows?". It re-runs the charting filter pipeline
for one patient and domain without writing anything and pairs the
per-reason drop counts with raw counts from both stores. The full
report is written as a JSON artifact.`,
		Example: `  r4sync drop-report --patient 1042 --domain completed_finding`,
		RunE:    runDropReport,
	}

	dropWindow.register(dropCmd)
	dropCmd.Flags().IntVar(&dropPatient, "patient", 0,
		"legacy patient code (required)")
	dropCmd.Flags().StringVar(&dropDomain, "domain", "",
		"charting domain (required)")
	dropCmd.MarkFlagRequired("patient")
	dropCmd.MarkFlagRequired("domain")
	dropCmd.Flags().StringVar(&dropOut, "out", "",
		"artifact path (default: the artifact directory)")

	return dropCmd
}

func runDropReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfig()

	w, err := dropWindow.window()
	if err != nil {
		return err
	}
	domain, ok := r4.ParseDomain(dropDomain)
	if !ok {
		return fmt.Errorf("unknown charting domain %q", dropDomain)
	}
	if dropPatient <= 0 {
		return fmt.Errorf("bad patient code %d", dropPatient)
	}

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	reporter := ioreport.New(cfg.Source.Tag, a.ext, a.reader)
	report, err := reporter.Report(ctx, dropPatient, domain, w)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("drop-report-%d-%s-%s.json",
		dropPatient, domain,
		report.GeneratedAt.Format("20060102-150405"))
	path, err := iofs.WriteArtifact(cfg.HomeDir, dropOut, name, report)
	if err != nil {
		return err
	}

	fmt.Printf("Patient %d, domain %s:\n", dropPatient, domain)
	fmt.Printf("  source rows        %s\n",
		humanize.Comma(int64(report.SourceCount)))
	fmt.Printf("  canonical records  %s\n",
		humanize.Comma(int64(report.DestCount)))
	fmt.Printf("  included           %s\n",
		humanize.Comma(int64(report.Drops.Included)))
	fmt.Printf("  unlinked           %s\n",
		humanize.Comma(int64(report.Drops.Unlinked)))
	for _, reason := range report.Drops.ReasonList() {
		fmt.Printf("  %-18s %s\n", reason,
			humanize.Comma(int64(report.Drops.Reasons[reason])))
	}

	fmt.Printf("✓ Report written to %s\n", path)
	return nil
}
