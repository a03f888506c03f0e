package main

import (
	"fmt"
	"strconv"

	"github.com/chairside/r4sync/pkg/r4"
	"github.com/spf13/cobra"
)

var linkageStatus string

func getLinkageCmd() *cobra.Command {
	linkageCmd := &cobra.Command{
		Use:   "linkage",
		Short: "Inspect and remediate unresolved references",
		Long: `Linkage manages the durable queue of references the import could
not resolve: records whose legacy patient code had no mapping, or no
code at all. Queued records were still imported, with a null patient
link; once the underlying data is fixed a re-import backfills the
link.

Issues are keyed by (entity type, legacy id). Resolve and ignore are
operator actions; re-ingestion never resets them.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List linkage issues",
		RunE:  runLinkageList,
	}
	listCmd.Flags().StringVar(&linkageStatus, "status", "open",
		"filter by status: open, resolved, ignored or empty for all")

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show issue counts by entity type, reason and status",
		RunE:  runLinkageSummary,
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve <entity-type> <legacy-id>",
		Short: "Mark an open issue resolved",
		Args:  cobra.ExactArgs(2),
		RunE:  runLinkageResolve,
	}

	ignoreCmd := &cobra.Command{
		Use:   "ignore <entity-type> <legacy-id>",
		Short: "Mark an open issue ignored",
		Args:  cobra.ExactArgs(2),
		RunE:  runLinkageIgnore,
	}

	ensureCmd := &cobra.Command{
		Use:   "ensure <patient-code>",
		Short: "Resolve a patient code, importing the patient if needed",
		Long: `Ensure resolves a legacy patient code to its canonical id. When the
code has no mapping yet, the patient is pulled from the source with a
scoped single-patient import and resolution is retried. A re-import of
the affected entities then backfills the queued null links.`,
		Args: cobra.ExactArgs(1),
		RunE: runLinkageEnsure,
	}

	linkageCmd.AddCommand(listCmd)
	linkageCmd.AddCommand(summaryCmd)
	linkageCmd.AddCommand(resolveCmd)
	linkageCmd.AddCommand(ignoreCmd)
	linkageCmd.AddCommand(ensureCmd)
	return linkageCmd
}

func runLinkageList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	issues, err := a.issues.List(ctx, linkageStatus)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		fmt.Println("No linkage issues found.")
		return nil
	}

	fmt.Printf("%-22s %-24s %-28s %-10s %s\n",
		"ENTITY", "LEGACY ID", "REASON", "STATUS", "PATIENT CODE")
	for _, is := range issues {
		fmt.Printf("%-22s %-24s %-28s %-10s %d\n",
			is.EntityType, is.LegacyID, is.ReasonCode,
			is.Status, is.PatientCode)
	}
	fmt.Printf("%d issues\n", len(issues))
	return nil
}

func runLinkageSummary(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.queue.Summary(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("The linkage queue is empty.")
		return nil
	}

	fmt.Printf("%-10s %-22s %-28s %-10s %s\n",
		"SOURCE", "ENTITY", "REASON", "STATUS", "COUNT")
	for _, row := range rows {
		fmt.Printf("%-10s %-22s %-28s %-10s %d\n",
			row.Source, row.EntityType, row.ReasonCode,
			row.Status, row.Count)
	}
	return nil
}

func runLinkageResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.queue.Resolve(ctx, r4.EntityType(args[0]), args[1]); err != nil {
		return err
	}
	fmt.Printf("✓ Issue %s/%s resolved.\n", args[0], args[1])
	return nil
}

func runLinkageIgnore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.queue.Ignore(ctx, r4.EntityType(args[0]), args[1]); err != nil {
		return err
	}
	fmt.Printf("✓ Issue %s/%s ignored.\n", args[0], args[1])
	return nil
}

func runLinkageEnsure(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	code, err := strconv.Atoi(args[0])
	if err != nil || code <= 0 {
		return fmt.Errorf("bad patient code %q", args[0])
	}

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	id, ok, err := a.resolver.EnsureMapping(ctx, code)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Printf("Patient code %d is not present in the source.\n", code)
		return nil
	}
	fmt.Printf("✓ Patient code %d maps to %s.\n", code, id)
	return nil
}
