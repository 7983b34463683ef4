package migrate

import (
	"context"
	"mime"
	"path/filepath"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
)

var importAssetsLog = logger.New("migrate:import_assets")

const (
	assetUploadParallelism = 3
	assetEditParallelism   = 1
)

// AssetImportOutcome summarizes one asset import stage.
type AssetImportOutcome struct {
	Uploaded int
	Updated  int
	Skipped  int
	// Errors maps asset codenames to their failure; failed assets stay
	// unresolved in the import context.
	Errors map[string]error
}

// ImportAssets reconciles snapshot assets into the target: missing
// assets are uploaded (binary first, then the asset record), existing
// ones are edited when their metadata drifted. Uploads run at
// parallelism 3, edits serially.
func ImportAssets(ctx context.Context, api ManagementAPI, ictx *ImportContext, data *MigrationData, opts ImportOptions) (*AssetImportOutcome, error) {
	outcome := &AssetImportOutcome{Errors: map[string]error{}}

	var toUpload, toEdit []MigrationAsset
	for _, asset := range data.Assets {
		state, _ := ictx.AssetState(asset.Codename)
		switch {
		case !state.Exists:
			toUpload = append(toUpload, asset)
		case opts.Force || shouldUpdateAsset(ictx, state.Asset, asset) || shouldReplaceBinaryFile(state.Asset, asset):
			toEdit = append(toEdit, asset)
		default:
			importAssetsLog.Printf("Asset %s is up to date", asset.Codename)
			outcome.Skipped++
		}
	}

	uploadResults, err := ProcessItems(ctx, toUpload, ProcessOptions[MigrationAsset]{
		Parallel:    assetUploadParallelism,
		FailOnError: opts.FailOnError,
		ItemInfo:    func(a MigrationAsset) string { return "asset " + a.Codename },
		Progress:    opts.Progress,
	}, func(ctx context.Context, asset MigrationAsset) (kontent.Asset, error) {
		return uploadAsset(ctx, api, ictx, asset)
	})
	if err != nil {
		return nil, err
	}
	for _, result := range uploadResults {
		switch result.State {
		case ResultValid:
			ictx.RecordCreatedAsset(result.Output)
			outcome.Uploaded++
		case ResultNotFound, ResultError:
			importAssetsLog.Printf("Failed to upload asset %s: %v", result.Input.Codename, result.Err)
			outcome.Errors[result.Input.Codename] = result.Err
		}
	}

	editResults, err := ProcessItems(ctx, toEdit, ProcessOptions[MigrationAsset]{
		Parallel:    assetEditParallelism,
		FailOnError: opts.FailOnError,
		ItemInfo:    func(a MigrationAsset) string { return "asset " + a.Codename },
		Progress:    opts.Progress,
	}, func(ctx context.Context, asset MigrationAsset) (kontent.Asset, error) {
		return editAsset(ctx, api, ictx, asset)
	})
	if err != nil {
		return nil, err
	}
	for _, result := range editResults {
		switch result.State {
		case ResultValid:
			outcome.Updated++
		case ResultNotFound, ResultError:
			importAssetsLog.Printf("Failed to edit asset %s: %v", result.Input.Codename, result.Err)
			outcome.Errors[result.Input.Codename] = result.Err
		}
	}

	return outcome, nil
}

// uploadAsset POSTs the binary to obtain a file reference, then creates
// the asset record under the decided external id.
func uploadAsset(ctx context.Context, api ManagementAPI, ictx *ImportContext, asset MigrationAsset) (kontent.Asset, error) {
	importAssetsLog.Printf("Uploading asset %s (%d bytes)", asset.Codename, len(asset.BinaryData))

	fileReference, err := api.UploadBinaryFile(ctx, kontent.BinaryFile{
		Filename:    asset.Filename,
		ContentType: assetContentType(asset.Filename),
		Data:        asset.BinaryData,
	})
	if err != nil {
		return kontent.Asset{}, err
	}

	state, _ := ictx.AssetState(asset.Codename)
	return api.AddAsset(ctx, kontent.AddAssetData{
		FileReference: fileReference,
		Codename:      asset.Codename,
		ExternalId:    state.ExternalID,
		Title:         asset.Title,
		Collection:    assetCollectionRef(ictx, asset),
		Folder:        assetFolderRef(ictx, asset),
		Descriptions:  targetDescriptions(ictx, asset),
	})
}

func editAsset(ctx context.Context, api ManagementAPI, ictx *ImportContext, asset MigrationAsset) (kontent.Asset, error) {
	data := kontent.UpsertAssetData{
		Title:        asset.Title,
		Collection:   assetCollectionRef(ictx, asset),
		Folder:       assetFolderRef(ictx, asset),
		Descriptions: targetDescriptions(ictx, asset),
	}

	state, _ := ictx.AssetState(asset.Codename)
	if shouldReplaceBinaryFile(state.Asset, asset) {
		importAssetsLog.Printf("Replacing binary of asset %s", asset.Codename)
		fileReference, err := api.UploadBinaryFile(ctx, kontent.BinaryFile{
			Filename:    asset.Filename,
			ContentType: assetContentType(asset.Filename),
			Data:        asset.BinaryData,
		})
		if err != nil {
			return kontent.Asset{}, err
		}
		data.FileReference = &fileReference
	}

	return api.UpsertAsset(ctx, asset.Codename, data)
}

// shouldUpdateAsset reports whether the target asset's metadata differs
// from the snapshot: title, collection codename, folder codename or
// descriptions by language codename.
func shouldUpdateAsset(ictx *ImportContext, existing kontent.Asset, desired MigrationAsset) bool {
	if existing.Title != desired.Title {
		return true
	}
	if existingCollection := collectionCodename(ictx, existing.Collection); existingCollection != codenameOf(desired.Collection) {
		return true
	}
	if existingFolder := folderCodename(ictx, existing.Folder); existingFolder != codenameOf(desired.Folder) {
		return true
	}

	existingDescriptions := map[string]string{}
	for _, description := range existing.Descriptions {
		if language, ok := ictx.Environment.LanguageByID(description.Language.Id); ok {
			existingDescriptions[language.Codename] = description.Description
		}
	}
	desiredDescriptions := map[string]string{}
	for _, description := range targetDescriptions(ictx, desired) {
		desiredDescriptions[description.Language.Codename] = description.Description
	}
	if len(existingDescriptions) != len(desiredDescriptions) {
		return true
	}
	for codename, description := range desiredDescriptions {
		if existingDescriptions[codename] != description {
			return true
		}
	}
	return false
}

// shouldReplaceBinaryFile reports whether the target asset's binary
// differs from the snapshot's, by filename, size and content type.
func shouldReplaceBinaryFile(existing kontent.Asset, desired MigrationAsset) bool {
	if existing.FileName != desired.Filename {
		return true
	}
	if existing.Size != int64(len(desired.BinaryData)) {
		return true
	}
	return existing.Type != assetContentType(desired.Filename)
}

func assetContentType(filename string) string {
	if contentType := mime.TypeByExtension(filepath.Ext(filename)); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}

// assetCollectionRef resolves the snapshot's collection codename in the
// target, dropping it with a warning when it does not exist there.
func assetCollectionRef(ictx *ImportContext, asset MigrationAsset) *kontent.Reference {
	if asset.Collection == nil {
		return nil
	}
	collection, ok := ictx.Environment.CollectionByCodename(asset.Collection.Codename)
	if !ok {
		ictx.warnings.addf("asset %q references collection %q missing in target; collection dropped", asset.Codename, asset.Collection.Codename)
		return nil
	}
	ref := kontent.ByID(collection.Id)
	return &ref
}

func assetFolderRef(ictx *ImportContext, asset MigrationAsset) *kontent.Reference {
	if asset.Folder == nil {
		return nil
	}
	folder, ok := ictx.Environment.AssetFolderByCodename(asset.Folder.Codename)
	if !ok {
		ictx.warnings.addf("asset %q references folder %q missing in target; folder dropped", asset.Codename, asset.Folder.Codename)
		return nil
	}
	ref := kontent.ByID(folder.Id)
	return &ref
}

// targetDescriptions filters snapshot descriptions to languages that
// exist in the target environment.
func targetDescriptions(ictx *ImportContext, asset MigrationAsset) []kontent.AssetDescription {
	var descriptions []kontent.AssetDescription
	for _, description := range asset.Descriptions {
		if _, ok := ictx.Environment.LanguageByCodename(description.Language.Codename); !ok {
			continue
		}
		descriptions = append(descriptions, kontent.AssetDescription{
			Language:    kontent.ByCodename(description.Language.Codename),
			Description: description.Description,
		})
	}
	return descriptions
}

func codenameOf(ref *CodenameRef) string {
	if ref == nil {
		return ""
	}
	return ref.Codename
}

func collectionCodename(ictx *ImportContext, ref *kontent.Reference) string {
	if ref == nil {
		return ""
	}
	if collection, ok := ictx.Environment.CollectionByID(ref.Id); ok {
		return collection.Codename
	}
	return ""
}

func folderCodename(ictx *ImportContext, ref *kontent.Reference) string {
	if ref == nil {
		return ""
	}
	if folder, ok := ictx.Environment.AssetFolderByID(ref.Id); ok {
		return folder.Codename
	}
	return ""
}
