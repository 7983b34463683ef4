package migrate

import (
	"context"
	"fmt"
	"sort"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
)

var exportLog = logger.New("migrate:export")

const assetDownloadParallelism = 5

// ExportResult is the outcome of one export run: the snapshot plus the
// per-item failures and warnings collected along the way.
type ExportResult struct {
	Data *MigrationData
	// ItemErrors maps failed requests to their cause; the failed items
	// are omitted from Data.
	ItemErrors map[ExportRequest]error
	Warnings   []string
}

// ExportMigrationData runs the full export pipeline: builds the export
// context, maps every surviving item into the migration model, downloads
// asset binaries and validates the result against the snapshot schema.
func ExportMigrationData(ctx context.Context, api ManagementAPI, opts ExportOptions) (*ExportResult, error) {
	ectx, err := FetchExportContext(ctx, api, opts)
	if err != nil {
		return nil, err
	}

	data := &MigrationData{}
	for _, exportItem := range ectx.ExportItems {
		item, err := mapExportItem(ectx, exportItem)
		if err != nil {
			req := ExportRequest{
				ItemCodename:     exportItem.ContentItem.Codename,
				LanguageCodename: exportItem.Language.Codename,
			}
			if opts.FailOnError {
				return nil, fmt.Errorf("failed to map item %s: %w", req, err)
			}
			exportLog.Printf("Omitting item %s: %v", req, err)
			ectx.ItemErrors[req] = err
			continue
		}
		data.Items = append(data.Items, item)
	}

	assets, err := downloadAssets(ctx, api, ectx, opts)
	if err != nil {
		return nil, err
	}
	data.Assets = assets

	if err := ValidateMigrationData(data); err != nil {
		return nil, fmt.Errorf("exported snapshot failed validation: %w", err)
	}

	return &ExportResult{
		Data:       data,
		ItemErrors: ectx.ItemErrors,
		Warnings:   ectx.Warnings(),
	}, nil
}

// mapExportItem maps one prepared export item into the migration model,
// running every version's elements through the export transforms.
func mapExportItem(ectx *ExportContext, item ExportItem) (MigrationItem, error) {
	migrationItem := MigrationItem{
		System: MigrationItemSystem{
			Name:       item.ContentItem.Name,
			Codename:   item.ContentItem.Codename,
			Language:   CodenameRef{Codename: item.Language.Codename},
			Type:       CodenameRef{Codename: item.ContentType.Codename},
			Collection: CodenameRef{Codename: item.Collection.Codename},
			Workflow:   CodenameRef{Codename: item.Workflow.Codename},
		},
	}
	for _, version := range item.Versions {
		elements, err := transformElementsExport(ectx, item.ContentType, version.Variant.Elements)
		if err != nil {
			return MigrationItem{}, err
		}
		migrationItem.Versions = append(migrationItem.Versions, MigrationItemVersion{
			Elements:     elements,
			Schedule:     mapSchedule(version.Variant.Schedule),
			WorkflowStep: CodenameRef{Codename: version.StepCodename},
		})
	}
	return migrationItem, nil
}

func mapSchedule(schedule *kontent.VariantSchedule) *MigrationSchedule {
	if schedule == nil || (schedule.PublishTime == "" && schedule.UnpublishTime == "") {
		return nil
	}
	return &MigrationSchedule{
		PublishTime:              schedule.PublishTime,
		PublishDisplayTimezone:   schedule.PublishDisplayTimezone,
		UnpublishTime:            schedule.UnpublishTime,
		UnpublishDisplayTimezone: schedule.UnpublishDisplayTimezone,
	}
}

// downloadAssets pulls every referenced asset's binary and maps it with
// its metadata into MigrationAssets, sorted by codename.
func downloadAssets(ctx context.Context, api ManagementAPI, ectx *ExportContext, opts ExportOptions) ([]MigrationAsset, error) {
	assets := ectx.ReferencedAssets()
	sort.Slice(assets, func(i, j int) bool { return assets[i].Codename < assets[j].Codename })

	results, err := ProcessItems(ctx, assets, ProcessOptions[kontent.Asset]{
		Parallel:    assetDownloadParallelism,
		FailOnError: opts.FailOnError,
		ItemInfo:    func(a kontent.Asset) string { return "asset " + a.Codename },
		Progress:    opts.Progress,
	}, func(ctx context.Context, asset kontent.Asset) (MigrationAsset, error) {
		binary, err := api.DownloadFile(ctx, asset.Url)
		if err != nil {
			return MigrationAsset{}, fmt.Errorf("failed to download asset %s: %w", asset.Codename, err)
		}
		return mapAsset(ectx, asset, binary), nil
	})
	if err != nil {
		return nil, err
	}

	var migrationAssets []MigrationAsset
	for _, result := range results {
		switch result.State {
		case ResultValid:
			migrationAssets = append(migrationAssets, result.Output)
		case ResultNotFound, ResultError:
			return nil, fmt.Errorf("failed to download asset %s: %w", result.Input.Codename, result.Err)
		}
	}
	return migrationAssets, nil
}

// mapAsset maps an asset's id-addressed metadata to codenames. An
// unresolvable collection or folder drops the field with a warning
// rather than failing: the asset itself is still usable.
func mapAsset(ectx *ExportContext, asset kontent.Asset, binary []byte) MigrationAsset {
	migrationAsset := MigrationAsset{
		Codename:   asset.Codename,
		Filename:   asset.FileName,
		Title:      asset.Title,
		BinaryData: binary,
	}
	if asset.Collection != nil {
		if collection, ok := ectx.Environment.CollectionByID(asset.Collection.Id); ok {
			migrationAsset.Collection = &CodenameRef{Codename: collection.Codename}
		} else {
			ectx.warnings.addf("asset %q references unknown collection %s; collection dropped", asset.Codename, asset.Collection.Id)
		}
	}
	if asset.Folder != nil {
		if folder, ok := ectx.Environment.AssetFolderByID(asset.Folder.Id); ok {
			migrationAsset.Folder = &CodenameRef{Codename: folder.Codename}
		} else {
			ectx.warnings.addf("asset %q references unknown folder %s; folder dropped", asset.Codename, asset.Folder.Id)
		}
	}
	for _, description := range asset.Descriptions {
		if description.Description == "" {
			continue
		}
		language, ok := ectx.Environment.LanguageByID(description.Language.Id)
		if !ok {
			ectx.warnings.addf("asset %q has a description in unknown language %s; description dropped", asset.Codename, description.Language.Id)
			continue
		}
		migrationAsset.Descriptions = append(migrationAsset.Descriptions, MigrationAssetDescription{
			Language:    CodenameRef{Codename: language.Codename},
			Description: description.Description,
		})
	}
	return migrationAsset
}
