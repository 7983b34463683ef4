package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kontent-tools/kontent-migrate/pkg/cli"
	"github.com/kontent-tools/kontent-migrate/pkg/console"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
)

// Build-time variables set by GoReleaser
var version = "dev"

// Global flags
var verboseFlag bool

var (
	exportArgs  cli.ExportArgs
	importArgs  cli.ImportArgs
	migrateArgs cli.MigrateArgs
	configFile  string
)

var rootCmd = &cobra.Command{
	Use:   "kontent-migrate",
	Short: "Migrate content items between Kontent.ai environments",
	Long: `kontent-migrate moves content items, their assets and their workflow
state between environments through the Management API.

Export builds a codename-addressed snapshot (items.json + assets.zip)
from a source environment; import reconciles a snapshot into a target
environment; migrate runs both back to back without touching disk.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseFlag {
			logger.EnableAll()
		}
	},
	SilenceUsage: true,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export content items into a snapshot",
	Example: `  kontent-migrate export --source-env 00000000-... --source-api-key $KEY \
    --items article_one,article_two --language en-us`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ExportContent(cmd.Context(), exportArgs)
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a snapshot into a target environment",
	Example: `  kontent-migrate import --target-env 00000000-... --target-api-key $KEY \
    --items-file items.json --assets-file assets.zip`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ImportContent(cmd.Context(), importArgs)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Export from source and import into target in one run",
	Example: `  kontent-migrate migrate --config migration.yml
  kontent-migrate migrate --source-env ... --source-api-key ... \
    --target-env ... --target-api-key ... --items article_one --language en-us`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			if err := migrateArgs.ApplyConfigFile(configFile); err != nil {
				return err
			}
		}
		return cli.MigrateContent(cmd.Context(), migrateArgs, nil)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("kontent-migrate version " + version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging for all namespaces")

	exportCmd.Flags().StringVar(&exportArgs.Source.EnvironmentID, "source-env", "", "Source environment id (required)")
	exportCmd.Flags().StringVar(&exportArgs.Source.APIKey, "source-api-key", "", "Source Management API key (required)")
	exportCmd.Flags().StringVar(&exportArgs.Source.BaseURL, "base-url", "", "Management API base URL override")
	exportCmd.Flags().StringVar(&exportArgs.Items, "items", "", "Comma-separated content item codenames (required)")
	exportCmd.Flags().StringVar(&exportArgs.Language, "language", "", "Language codename (required)")
	exportCmd.Flags().StringVar(&exportArgs.ItemsFile, "items-file", "", "Items snapshot path (default items.json)")
	exportCmd.Flags().StringVar(&exportArgs.AssetsFile, "assets-file", "", "Assets archive path (default assets.zip)")
	exportCmd.Flags().BoolVar(&exportArgs.FailOnError, "fail-on-error", false, "Abort on the first per-item failure")

	importCmd.Flags().StringVar(&importArgs.Target.EnvironmentID, "target-env", "", "Target environment id (required)")
	importCmd.Flags().StringVar(&importArgs.Target.APIKey, "target-api-key", "", "Target Management API key (required)")
	importCmd.Flags().StringVar(&importArgs.Target.BaseURL, "base-url", "", "Management API base URL override")
	importCmd.Flags().StringVar(&importArgs.ItemsFile, "items-file", "", "Items snapshot path (default items.json)")
	importCmd.Flags().StringVar(&importArgs.AssetsFile, "assets-file", "", "Assets archive path (default assets.zip)")
	importCmd.Flags().BoolVar(&importArgs.Force, "force", false, "Rewrite entities even when the target already matches")
	importCmd.Flags().BoolVar(&importArgs.FailOnError, "fail-on-error", false, "Abort on the first per-item failure")

	migrateCmd.Flags().StringVar(&migrateArgs.Source.EnvironmentID, "source-env", "", "Source environment id")
	migrateCmd.Flags().StringVar(&migrateArgs.Source.APIKey, "source-api-key", "", "Source Management API key")
	migrateCmd.Flags().StringVar(&migrateArgs.Source.BaseURL, "source-base-url", "", "Source Management API base URL override")
	migrateCmd.Flags().StringVar(&migrateArgs.Target.EnvironmentID, "target-env", "", "Target environment id")
	migrateCmd.Flags().StringVar(&migrateArgs.Target.APIKey, "target-api-key", "", "Target Management API key")
	migrateCmd.Flags().StringVar(&migrateArgs.Target.BaseURL, "target-base-url", "", "Target Management API base URL override")
	migrateCmd.Flags().StringVar(&migrateArgs.Items, "items", "", "Comma-separated content item codenames")
	migrateCmd.Flags().StringVar(&migrateArgs.Language, "language", "", "Language codename")
	migrateCmd.Flags().BoolVar(&migrateArgs.Force, "force", false, "Rewrite entities even when the target already matches")
	migrateCmd.Flags().BoolVar(&migrateArgs.FailOnError, "fail-on-error", false, "Abort on the first per-item failure")
	migrateCmd.Flags().StringVar(&configFile, "config", "", "YAML run config; explicit flags win over file values")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		errMsg := err.Error()
		if strings.HasPrefix(errMsg, "✗") {
			fmt.Fprintln(os.Stderr, errMsg)
		} else {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(errMsg))
		}
		os.Exit(1)
	}
}
