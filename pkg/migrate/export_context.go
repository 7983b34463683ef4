package migrate

import (
	"context"
	"fmt"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
)

var exportContextLog = logger.New("migrate:export_context")

// ExportRequest names one item to export.
type ExportRequest struct {
	ItemCodename     string
	LanguageCodename string
}

func (r ExportRequest) String() string {
	return r.ItemCodename + "/" + r.LanguageCodename
}

// ExportItemVersion is one workflow version of an item on the wire.
type ExportItemVersion struct {
	Variant      kontent.LanguageVariant
	StepCodename string
	Published    bool
}

// ExportItem is one requested item with everything needed to map it
// into the migration model.
type ExportItem struct {
	ContentItem kontent.ContentItem
	Versions    []ExportItemVersion
	ContentType kontent.FlattenedContentType
	Collection  kontent.Collection
	Language    kontent.Language
	Workflow    kontent.Workflow
}

// referencedItem is the source state of an item referenced from an
// exported element. Found is false when the source answered 404, which
// is tolerated for lenient element types.
type referencedItem struct {
	Item  kontent.ContentItem
	Found bool
}

type referencedAsset struct {
	Asset kontent.Asset
	Found bool
}

// ExportContext is the transient runtime view the export pipeline works
// from: environment metadata, the prepared export items and id-indexed
// lookups of everything they reference.
type ExportContext struct {
	Environment *EnvironmentData
	ExportItems []ExportItem

	// ItemErrors records per-item preparation failures; the failed
	// requests are dropped from ExportItems.
	ItemErrors map[ExportRequest]error

	itemsByID  map[string]referencedItem
	assetsByID map[string]referencedAsset

	replaceInvalidLinks bool
	warnings            *warningSink
}

// ItemByID resolves a referenced item by source id. ok is false both
// for ids never seen and for ids the source answered 404 for.
func (c *ExportContext) ItemByID(id string) (kontent.ContentItem, bool) {
	state, seen := c.itemsByID[id]
	if !seen || !state.Found {
		return kontent.ContentItem{}, false
	}
	return state.Item, true
}

// AssetByID resolves a referenced asset by source id.
func (c *ExportContext) AssetByID(id string) (kontent.Asset, bool) {
	state, seen := c.assetsByID[id]
	if !seen || !state.Found {
		return kontent.Asset{}, false
	}
	return state.Asset, true
}

// ReferencedAssets returns the resolved assets, for binary download.
func (c *ExportContext) ReferencedAssets() []kontent.Asset {
	assets := make([]kontent.Asset, 0, len(c.assetsByID))
	for _, state := range c.assetsByID {
		if state.Found {
			assets = append(assets, state.Asset)
		}
	}
	return assets
}

// Warnings returns the non-fatal findings collected so far.
func (c *ExportContext) Warnings() []string { return c.warnings.all() }

// ExportOptions configures the export pipeline.
type ExportOptions struct {
	Items []ExportRequest
	// ReplaceInvalidLinks strips anchors whose data-item-id cannot be
	// resolved, keeping their text content. When false such anchors are
	// left untouched with a warning.
	ReplaceInvalidLinks bool
	FailOnError         bool
	// Progress receives harness progress for the fetch and download stages.
	Progress func(percent int, info string)
}

// FetchExportContext loads environment data, prepares the requested
// export items and resolves the closure of everything they reference.
func FetchExportContext(ctx context.Context, api ManagementAPI, opts ExportOptions) (*ExportContext, error) {
	env, err := LoadEnvironmentData(ctx, api)
	if err != nil {
		return nil, err
	}

	ectx := &ExportContext{
		Environment:         env,
		ItemErrors:          map[ExportRequest]error{},
		itemsByID:           map[string]referencedItem{},
		assetsByID:          map[string]referencedAsset{},
		replaceInvalidLinks: opts.ReplaceInvalidLinks,
		warnings:            &warningSink{},
	}

	if err := ectx.prepareExportItems(ctx, api, opts); err != nil {
		return nil, err
	}
	if err := ectx.resolveReferences(ctx, api, opts); err != nil {
		return nil, err
	}
	return ectx, nil
}

// prepareExportItems fetches each requested item with its latest and,
// when the latest is not published, its published variant. Items that
// fail validation against environment data are dropped with a per-item
// error.
func (c *ExportContext) prepareExportItems(ctx context.Context, api ManagementAPI, opts ExportOptions) error {
	results, err := ProcessItems(ctx, opts.Items, ProcessOptions[ExportRequest]{
		Parallel:    1,
		FailOnError: opts.FailOnError,
		ItemInfo:    ExportRequest.String,
		Progress:    opts.Progress,
	}, func(ctx context.Context, req ExportRequest) (ExportItem, error) {
		return c.fetchExportItem(ctx, api, req)
	})
	if err != nil {
		return err
	}

	for _, result := range results {
		switch result.State {
		case ResultValid:
			c.ExportItems = append(c.ExportItems, result.Output)
		case ResultNotFound, ResultError:
			exportContextLog.Printf("Dropping item %s: %v", result.Input, result.Err)
			c.ItemErrors[result.Input] = result.Err
		}
	}
	return nil
}

func (c *ExportContext) fetchExportItem(ctx context.Context, api ManagementAPI, req ExportRequest) (ExportItem, error) {
	contentItem, err := api.ViewContentItemByCodename(ctx, req.ItemCodename)
	if err != nil {
		return ExportItem{}, err
	}
	latest, err := api.ViewLanguageVariant(ctx, req.ItemCodename, req.LanguageCodename)
	if err != nil {
		return ExportItem{}, err
	}

	item := ExportItem{ContentItem: contentItem}

	var ok bool
	if item.Collection, ok = c.Environment.CollectionByID(contentItem.Collection.Id); !ok {
		return ExportItem{}, &LookupError{Entity: "collection", Identifier: contentItem.Collection.Id}
	}
	if item.ContentType, ok = c.Environment.ContentTypeByID(contentItem.Type.Id); !ok {
		return ExportItem{}, &LookupError{Entity: "content type", Identifier: contentItem.Type.Id}
	}
	if item.Language, ok = c.Environment.LanguageByCodename(req.LanguageCodename); !ok {
		return ExportItem{}, &LookupError{Entity: "language", Identifier: req.LanguageCodename}
	}
	if latest.Workflow == nil {
		return ExportItem{}, fmt.Errorf("variant %s carries no workflow assignment", req)
	}
	workflow, ok := c.Environment.WorkflowByID(latest.Workflow.WorkflowIdentifier.Id)
	if !ok {
		return ExportItem{}, &LookupError{Entity: "workflow", Identifier: latest.Workflow.WorkflowIdentifier.Id}
	}
	item.Workflow = *workflow
	step, ok := StepByID(workflow, latest.Workflow.StepIdentifier.Id)
	if !ok {
		return ExportItem{}, &LookupError{Entity: "workflow step", Identifier: latest.Workflow.StepIdentifier.Id}
	}

	item.Versions = append(item.Versions, ExportItemVersion{
		Variant:      latest,
		StepCodename: step.Codename,
		Published:    IsPublishedStep(workflow, step.Codename),
	})

	// When the latest version is a draft there may still be an older
	// published version living behind it; fetch it 404-tolerantly.
	if !IsPublishedStep(workflow, step.Codename) {
		published, err := api.ViewPublishedLanguageVariant(ctx, req.ItemCodename, req.LanguageCodename)
		switch {
		case err == nil:
			item.Versions = append(item.Versions, ExportItemVersion{
				Variant:      published,
				StepCodename: workflow.PublishedStep.Codename,
				Published:    true,
			})
		case kontent.IsNotFound(err):
			// Nothing published; the draft is all there is.
		default:
			return ExportItem{}, err
		}
	}

	return item, nil
}

// resolveReferences runs the reference extractor across all versions
// and fetches every referenced item and asset by id. A 404 yields a
// not-found marker, not a failure; lenient element types drop such
// references, strict ones hard-error during mapping.
func (c *ExportContext) resolveReferences(ctx context.Context, api ManagementAPI, opts ExportOptions) error {
	var entries []ElementEntry
	for _, item := range c.ExportItems {
		for _, version := range item.Versions {
			entries = append(entries, ElementEntry{
				ContentTypeID: item.ContentType.Id,
				Elements:      version.Variant.Elements,
			})
		}
	}

	itemIDs, assetIDs := ExtractReferences(c.Environment, entries)

	// Requested items are already in hand; index them before fetching.
	for _, item := range c.ExportItems {
		c.itemsByID[item.ContentItem.Id] = referencedItem{Item: item.ContentItem, Found: true}
	}

	var missingItemIDs []string
	for id := range itemIDs {
		if _, seen := c.itemsByID[id]; !seen {
			missingItemIDs = append(missingItemIDs, id)
		}
	}
	itemResults, err := ProcessItems(ctx, missingItemIDs, ProcessOptions[string]{
		Parallel:    1,
		FailOnError: opts.FailOnError,
		ItemInfo:    func(id string) string { return "item " + id },
		Progress:    opts.Progress,
	}, func(ctx context.Context, id string) (kontent.ContentItem, error) {
		return api.ViewContentItemByID(ctx, id)
	})
	if err != nil {
		return err
	}
	for _, result := range itemResults {
		switch result.State {
		case ResultValid:
			c.itemsByID[result.Input] = referencedItem{Item: result.Output, Found: true}
		case ResultNotFound:
			exportContextLog.Printf("Referenced item %s not found in source", result.Input)
			c.itemsByID[result.Input] = referencedItem{}
		case ResultError:
			return fmt.Errorf("failed to fetch referenced item %s: %w", result.Input, result.Err)
		}
	}

	var assetIDList []string
	for id := range assetIDs {
		assetIDList = append(assetIDList, id)
	}
	assetResults, err := ProcessItems(ctx, assetIDList, ProcessOptions[string]{
		Parallel:    1,
		FailOnError: opts.FailOnError,
		ItemInfo:    func(id string) string { return "asset " + id },
		Progress:    opts.Progress,
	}, func(ctx context.Context, id string) (kontent.Asset, error) {
		return api.ViewAssetByID(ctx, id)
	})
	if err != nil {
		return err
	}
	for _, result := range assetResults {
		switch result.State {
		case ResultValid:
			c.assetsByID[result.Input] = referencedAsset{Asset: result.Output, Found: true}
		case ResultNotFound:
			exportContextLog.Printf("Referenced asset %s not found in source", result.Input)
			c.assetsByID[result.Input] = referencedAsset{}
		case ResultError:
			return fmt.Errorf("failed to fetch referenced asset %s: %w", result.Input, result.Err)
		}
	}

	return nil
}
