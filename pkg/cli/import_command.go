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

var importCmdLog = logger.New("cli:import_command")

// ImportContent runs the import command: reads the snapshots from disk
// and reconciles them into the target environment.
func ImportContent(ctx context.Context, args ImportArgs) error {
	if err := args.validate(); err != nil {
		return err
	}

	items, err := snapshot.ReadItems(args.ItemsFile)
	if err != nil {
		return err
	}
	assets, err := snapshot.ReadAssets(args.AssetsFile)
	if err != nil {
		return err
	}
	data := &migrate.MigrationData{Items: items, Assets: assets}

	return runImport(ctx, args, data, nil)
}

// runImport drives the import pipeline and prints the summary. Shared
// by the import and migrate commands.
func runImport(ctx context.Context, args ImportArgs, data *migrate.MigrationData, mapper migrate.MigrationDataMapper) error {
	importCmdLog.Printf("Importing %d items into %s", len(data.Items), args.Target.EnvironmentID)

	spinner := console.NewSpinner("Importing content...")
	spinner.Start()

	summary, err := migrate.ImportMigrationData(ctx, args.Target.client(), data, mapper, migrate.ImportOptions{
		Force:       args.Force,
		FailOnError: args.FailOnError,
		Progress:    spinnerProgress(spinner),
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	printWarnings(summary.Warnings)
	printImportSummary(summary)

	if summary.Failed() && args.FailOnError {
		return fmt.Errorf("import finished with failures")
	}
	return nil
}

func printImportSummary(summary *migrate.ImportSummary) {
	rows := [][]string{
		{"Items", fmt.Sprintf("%d imported, %d failed", summary.ItemsImported, len(summary.ItemErrors))},
		{"Assets", fmt.Sprintf("%d uploaded, %d updated, %d skipped, %d failed",
			summary.Assets.Uploaded, summary.Assets.Updated, summary.Assets.Skipped, len(summary.Assets.Errors))},
		{"Variants", fmt.Sprintf("%d imported, %d failed", summary.Variants.Imported, len(summary.Variants.Errors))},
	}
	fmt.Println(console.RenderTable(console.TableConfig{
		Title:   "Import summary",
		Headers: []string{"Stage", "Outcome"},
		Rows:    rows,
	}))

	for _, key := range sortedKeys(summary.ItemErrors) {
		fmt.Println(console.FormatErrorMessage(fmt.Sprintf("item %s: %v", console.FormatCodename(key), summary.ItemErrors[key])))
	}
	for _, key := range sortedKeys(summary.Assets.Errors) {
		fmt.Println(console.FormatErrorMessage(fmt.Sprintf("asset %s: %v", console.FormatCodename(key), summary.Assets.Errors[key])))
	}
	for _, key := range sortedKeys(summary.Variants.Errors) {
		fmt.Println(console.FormatErrorMessage(fmt.Sprintf("variant %s: %v", console.FormatCodename(key), summary.Variants.Errors[key])))
	}
	if !summary.Failed() {
		fmt.Println(console.FormatSuccessMessage("Import finished without failures"))
	}
}

func sortedKeys(errors map[string]error) []string {
	keys := make([]string, 0, len(errors))
	for key := range errors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
