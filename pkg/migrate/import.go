package migrate

import (
	"context"
	"fmt"

	"github.com/kontent-tools/kontent-migrate/pkg/logger"
)

var importLog = logger.New("migrate:import")

// MigrationDataMapper transforms a snapshot between export and import.
// This is the only sanctioned mutation point of MigrationData.
type MigrationDataMapper func(*MigrationData) (*MigrationData, error)

// ImportSummary is the outcome of one import run.
type ImportSummary struct {
	ItemsImported int
	// ItemErrors maps item codenames to shell import failures; their
	// variants were skipped.
	ItemErrors map[string]error
	Assets     *AssetImportOutcome
	Variants   *VariantImportOutcome
	Warnings   []string
}

// Failed reports whether any per-item failure was recorded.
func (s *ImportSummary) Failed() bool {
	return len(s.ItemErrors) > 0 || len(s.Assets.Errors) > 0 || len(s.Variants.Errors) > 0
}

// ImportMigrationData runs the full import pipeline: validates the
// snapshot, applies the optional mapper, probes the target, then
// reconciles item shells, assets and language variants in that order.
func ImportMigrationData(ctx context.Context, api ManagementAPI, data *MigrationData, mapper MigrationDataMapper, opts ImportOptions) (*ImportSummary, error) {
	if err := ValidateMigrationData(data); err != nil {
		return nil, err
	}
	if mapper != nil {
		mapped, err := mapper(data)
		if err != nil {
			return nil, fmt.Errorf("migration data mapper failed: %w", err)
		}
		data = mapped
		if err := ValidateMigrationData(data); err != nil {
			return nil, fmt.Errorf("mapped migration data is invalid: %w", err)
		}
	}

	ictx, err := BuildImportContext(ctx, api, data, opts)
	if err != nil {
		return nil, err
	}

	importLog.Printf("Importing %d items and %d assets", len(data.Items), len(data.Assets))

	shells, itemErrors, err := ImportContentItems(ctx, api, ictx, data, opts)
	if err != nil {
		return nil, err
	}
	assets, err := ImportAssets(ctx, api, ictx, data, opts)
	if err != nil {
		return nil, err
	}
	variants, err := ImportLanguageVariants(ctx, api, ictx, data, shells, opts)
	if err != nil {
		return nil, err
	}

	return &ImportSummary{
		ItemsImported: len(shells),
		ItemErrors:    itemErrors,
		Assets:        assets,
		Variants:      variants,
		Warnings:      ictx.Warnings(),
	}, nil
}
