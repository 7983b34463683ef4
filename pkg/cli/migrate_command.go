package cli

import (
	"context"
	"fmt"

	"github.com/kontent-tools/kontent-migrate/pkg/console"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
	"github.com/kontent-tools/kontent-migrate/pkg/migrate"
)

var migrateCmdLog = logger.New("cli:migrate_command")

// MigrateContent runs export and import back to back, keeping the
// snapshot in memory. The optional mapper transforms the snapshot
// between the two phases.
func MigrateContent(ctx context.Context, args MigrateArgs, mapper migrate.MigrationDataMapper) error {
	if err := args.validate(); err != nil {
		return err
	}

	exportArgs := ExportArgs{
		Source:      args.Source,
		Items:       args.Items,
		Language:    args.Language,
		FailOnError: args.FailOnError,
	}
	requests := exportArgs.requests()
	migrateCmdLog.Printf("Migrating %d items from %s to %s", len(requests), args.Source.EnvironmentID, args.Target.EnvironmentID)

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

	printWarnings(result.Warnings)
	for _, request := range sortedRequests(result.ItemErrors) {
		fmt.Println(console.FormatErrorMessage(fmt.Sprintf("export of %s failed: %v", request, result.ItemErrors[request])))
	}
	fmt.Println(console.FormatInfoMessage(fmt.Sprintf("Exported %d items and %d assets", len(result.Data.Items), len(result.Data.Assets))))

	return runImport(ctx, ImportArgs{
		Target:      args.Target,
		Force:       args.Force,
		FailOnError: args.FailOnError,
	}, result.Data, mapper)
}
