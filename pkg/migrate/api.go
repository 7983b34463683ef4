// Package migrate implements the migration engine: exporting a
// codename-addressed snapshot (MigrationData) from a source environment
// and importing it into a target environment while reproducing workflow
// state.
//
// The engine talks to the platform exclusively through the ManagementAPI
// interface, so tests drive it with in-memory fakes and the CLI wires in
// the real client from pkg/kontent.
package migrate

import (
	"context"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
)

// ManagementAPI is the slice of the Management API the engine consumes.
// *kontent.Client implements it.
type ManagementAPI interface {
	// Environment data.
	ListCollections(ctx context.Context) ([]kontent.Collection, error)
	ListLanguages(ctx context.Context) ([]kontent.Language, error)
	ListWorkflows(ctx context.Context) ([]kontent.Workflow, error)
	ListTaxonomies(ctx context.Context) ([]kontent.Taxonomy, error)
	ListContentTypesFlattened(ctx context.Context) ([]kontent.FlattenedContentType, error)
	ListAssetFolders(ctx context.Context) ([]kontent.AssetFolder, error)

	// Content items.
	ViewContentItemByCodename(ctx context.Context, codename string) (kontent.ContentItem, error)
	ViewContentItemByID(ctx context.Context, id string) (kontent.ContentItem, error)
	AddContentItem(ctx context.Context, data kontent.AddContentItemData) (kontent.ContentItem, error)
	UpsertContentItem(ctx context.Context, codename string, data kontent.UpsertContentItemData) (kontent.ContentItem, error)

	// Language variants.
	ViewLanguageVariant(ctx context.Context, itemCodename, languageCodename string) (kontent.LanguageVariant, error)
	ViewPublishedLanguageVariant(ctx context.Context, itemCodename, languageCodename string) (kontent.LanguageVariant, error)
	UpsertLanguageVariant(ctx context.Context, itemCodename, languageCodename string, data kontent.UpsertLanguageVariantData) (kontent.LanguageVariant, error)
	CreateNewVersion(ctx context.Context, itemCodename, languageCodename string) error
	ChangeWorkflowOfLanguageVariant(ctx context.Context, itemCodename, languageCodename string, workflow, step kontent.Reference) error
	PublishLanguageVariant(ctx context.Context, itemCodename, languageCodename string, schedule *kontent.SchedulePayload) error
	UnpublishLanguageVariant(ctx context.Context, itemCodename, languageCodename string, schedule *kontent.SchedulePayload) error
	CancelScheduledPublish(ctx context.Context, itemCodename, languageCodename string) error
	CancelScheduledUnpublish(ctx context.Context, itemCodename, languageCodename string) error

	// Assets.
	ViewAssetByID(ctx context.Context, id string) (kontent.Asset, error)
	ViewAssetByCodename(ctx context.Context, codename string) (kontent.Asset, error)
	AddAsset(ctx context.Context, data kontent.AddAssetData) (kontent.Asset, error)
	UpsertAsset(ctx context.Context, codename string, data kontent.UpsertAssetData) (kontent.Asset, error)
	UploadBinaryFile(ctx context.Context, file kontent.BinaryFile) (kontent.FileReference, error)
	DownloadFile(ctx context.Context, url string) ([]byte, error)
}
