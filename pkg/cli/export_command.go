package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/kontent-tools/kontent-migrate/pkg/console"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
	"github.com/kontent-tools/kontent-migrate/pkg/migrate"
	"github.com/kontent-tools/kontent-migrate/pkg/snapshot"
)

var exportCmdLog = logger.New("cli:export_command")

// ExportContent runs the export command: pulls the requested items from
// the source environment and writes the items and assets snapshots.
func ExportContent(ctx context.Context, args ExportArgs) error {
	if err := args.validate(); err != nil {
		return err
	}
	requests := args.requests()
	exportCmdLog.Printf("Exporting %d items from %s", len(requests), args.Source.EnvironmentID)

	spinner := console.NewSpinner("Exporting content...")
	spinner.Start()

	result, err := migrate.ExportMigrationData(ctx, args.Source.client(), migrate.ExportOptions{
		Items:       requests,
		FailOnError: args.FailOnError,
		Progress:    spinnerProgress(spinner),
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	if err := snapshot.WriteItems(args.ItemsFile, result.Data); err != nil {
		return err
	}
	if err := snapshot.WriteAssets(args.AssetsFile, result.Data.Assets); err != nil {
		return err
	}

	printWarnings(result.Warnings)
	printExportSummary(args, result)
	return nil
}

func printExportSummary(args ExportArgs, result *migrate.ExportResult) {
	rows := make([][]string, 0, len(result.Data.Items)+len(result.ItemErrors))
	for _, item := range result.Data.Items {
		rows = append(rows, []string{item.System.Codename, item.System.Language.Codename, "exported"})
	}
	for _, request := range sortedRequests(result.ItemErrors) {
		rows = append(rows, []string{request.ItemCodename, request.LanguageCodename, "failed: " + result.ItemErrors[request].Error()})
	}

	fmt.Println(console.RenderTable(console.TableConfig{
		Title:    "Export summary",
		Headers:  []string{"Item", "Language", "Outcome"},
		Rows:     rows,
		TotalRow: []string{"Total", "", fmt.Sprintf("%d exported, %d assets, %d failed", len(result.Data.Items), len(result.Data.Assets), len(result.ItemErrors))},
	}))
	fmt.Println(console.FormatSuccessMessage(fmt.Sprintf("Snapshot written to %s and %s", args.ItemsFile, args.AssetsFile)))
}

func sortedRequests(errors map[migrate.ExportRequest]error) []migrate.ExportRequest {
	requests := make([]migrate.ExportRequest, 0, len(errors))
	for request := range errors {
		requests = append(requests, request)
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].String() < requests[j].String() })
	return requests
}

func printWarnings(warnings []string) {
	for _, warning := range warnings {
		fmt.Println(console.FormatWarningMessage(warning))
	}
}

// spinnerProgress adapts a spinner to the harness progress callback.
func spinnerProgress(spinner *console.Spinner) func(percent int, info string) {
	return func(percent int, info string) {
		spinner.UpdateMessage(console.FormatPercentagePrefix(percent) + " " + info)
	}
}
