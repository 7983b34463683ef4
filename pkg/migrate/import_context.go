package migrate

import (
	"context"
	"fmt"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
)

var importContextLog = logger.New("migrate:import_context")

// WorkflowState classifies where a target variant sits in its workflow.
type WorkflowState string

const (
	WorkflowStateDraft     WorkflowState = "draft"
	WorkflowStatePublished WorkflowState = "published"
	WorkflowStateArchived  WorkflowState = "archived"
)

// ScheduledState classifies a pending schedule on a target variant.
type ScheduledState string

const (
	ScheduledNone      ScheduledState = "none"
	ScheduledPublish   ScheduledState = "scheduledPublish"
	ScheduledUnpublish ScheduledState = "scheduledUnpublish"
)

// TargetVariant is one observed variant in the target environment.
type TargetVariant struct {
	Variant        kontent.LanguageVariant
	WorkflowState  WorkflowState
	ScheduledState ScheduledState
}

// TargetVariantState holds what the target currently has for one
// (item, language): up to one draft-side and one published variant.
type TargetVariantState struct {
	Draft     *TargetVariant
	Published *TargetVariant
}

// TargetItemState is the probe result for one item codename. When the
// item does not exist, ExternalID is the external id to create it
// under, which keeps re-creation idempotent across retries.
type TargetItemState struct {
	Exists     bool
	Item       kontent.ContentItem
	ExternalID string
}

// TargetAssetState is the probe result for one asset codename.
type TargetAssetState struct {
	Exists     bool
	Asset      kontent.Asset
	ExternalID string
}

// ExternalIdGenerator derives the external id used when creating an
// entity that does not exist in the target yet.
type ExternalIdGenerator func(codename string) string

type variantKey struct {
	ItemCodename     string
	LanguageCodename string
}

// ImportContext is the transient runtime view the import pipeline works
// from: target environment metadata, the probed state of every codename
// in the snapshot and the memo of entities created during this run.
type ImportContext struct {
	Environment *EnvironmentData

	itemStates    map[string]TargetItemState
	variantStates map[variantKey]TargetVariantState
	assetStates   map[string]TargetAssetState

	// Written at most once per key, by the item and asset importers.
	createdItems  map[string]kontent.ContentItem
	createdAssets map[string]kontent.Asset

	warnings *warningSink
}

// ItemState returns the probed target state for an item codename.
func (c *ImportContext) ItemState(codename string) (TargetItemState, bool) {
	state, ok := c.itemStates[codename]
	return state, ok
}

// VariantState returns the probed target state for one (item, language).
func (c *ImportContext) VariantState(itemCodename, languageCodename string) TargetVariantState {
	return c.variantStates[variantKey{itemCodename, languageCodename}]
}

// AssetState returns the probed target state for an asset codename.
func (c *ImportContext) AssetState(codename string) (TargetAssetState, bool) {
	state, ok := c.assetStates[codename]
	return state, ok
}

// RecordCreatedItem memoizes an item shell created during this run.
func (c *ImportContext) RecordCreatedItem(item kontent.ContentItem) {
	c.createdItems[item.Codename] = item
}

// RecordCreatedAsset memoizes an asset created during this run.
func (c *ImportContext) RecordCreatedAsset(asset kontent.Asset) {
	c.createdAssets[asset.Codename] = asset
}

// TargetItemID resolves an item codename to its target id, consulting
// the created-items memo first and the probe results second.
func (c *ImportContext) TargetItemID(codename string) (string, bool) {
	if item, ok := c.createdItems[codename]; ok {
		return item.Id, true
	}
	if state, ok := c.itemStates[codename]; ok && state.Exists {
		return state.Item.Id, true
	}
	return "", false
}

// TargetAssetID resolves an asset codename to its target id.
func (c *ImportContext) TargetAssetID(codename string) (string, bool) {
	if asset, ok := c.createdAssets[codename]; ok {
		return asset.Id, true
	}
	if state, ok := c.assetStates[codename]; ok && state.Exists {
		return state.Asset.Id, true
	}
	return "", false
}

// Warnings returns the non-fatal findings collected so far.
func (c *ImportContext) Warnings() []string { return c.warnings.all() }

// ImportOptions configures the import pipeline.
type ImportOptions struct {
	// ExternalIdGenerator overrides the external id derived for missing
	// entities; nil falls back to the codename itself.
	ExternalIdGenerator ExternalIdGenerator
	// Force disables skip detection: existing shells and assets are
	// rewritten even when the target already matches the snapshot.
	Force       bool
	FailOnError bool
	Progress    func(percent int, info string)
}

func (o ImportOptions) externalID(codename string) string {
	if o.ExternalIdGenerator != nil {
		return o.ExternalIdGenerator(codename)
	}
	return codename
}

// BuildImportContext loads target environment data and probes the
// target for every item, variant and asset codename in the snapshot.
// Probe failures other than 404 are fatal: without a trustworthy target
// state no safe import decision can be made.
func BuildImportContext(ctx context.Context, api ManagementAPI, data *MigrationData, opts ImportOptions) (*ImportContext, error) {
	env, err := LoadEnvironmentData(ctx, api)
	if err != nil {
		return nil, err
	}

	ictx := &ImportContext{
		Environment:   env,
		itemStates:    map[string]TargetItemState{},
		variantStates: map[variantKey]TargetVariantState{},
		assetStates:   map[string]TargetAssetState{},
		createdItems:  map[string]kontent.ContentItem{},
		createdAssets: map[string]kontent.Asset{},
		warnings:      &warningSink{},
	}

	if err := ictx.probeItems(ctx, api, data, opts); err != nil {
		return nil, err
	}
	if err := ictx.probeVariants(ctx, api, data, opts); err != nil {
		return nil, err
	}
	if err := ictx.probeAssets(ctx, api, data, opts); err != nil {
		return nil, err
	}
	return ictx, nil
}

func (c *ImportContext) probeItems(ctx context.Context, api ManagementAPI, data *MigrationData, opts ImportOptions) error {
	var codenames []string
	seen := map[string]bool{}
	for _, item := range data.Items {
		if !seen[item.System.Codename] {
			seen[item.System.Codename] = true
			codenames = append(codenames, item.System.Codename)
		}
	}

	results, err := ProcessItems(ctx, codenames, ProcessOptions[string]{
		Parallel: 1,
		ItemInfo: func(codename string) string { return "item " + codename },
		Progress: opts.Progress,
	}, func(ctx context.Context, codename string) (kontent.ContentItem, error) {
		return api.ViewContentItemByCodename(ctx, codename)
	})
	if err != nil {
		return err
	}
	for _, result := range results {
		switch result.State {
		case ResultValid:
			c.itemStates[result.Input] = TargetItemState{Exists: true, Item: result.Output}
		case ResultNotFound:
			importContextLog.Printf("Item %s does not exist in target", result.Input)
			c.itemStates[result.Input] = TargetItemState{ExternalID: opts.externalID(result.Input)}
		case ResultError:
			return fmt.Errorf("failed to probe item %s: %w", result.Input, result.Err)
		}
	}
	return nil
}

func (c *ImportContext) probeVariants(ctx context.Context, api ManagementAPI, data *MigrationData, opts ImportOptions) error {
	var keys []variantKey
	seen := map[variantKey]bool{}
	for _, item := range data.Items {
		key := variantKey{item.System.Codename, item.System.Language.Codename}
		if state, ok := c.itemStates[key.ItemCodename]; !ok || !state.Exists {
			continue
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	results, err := ProcessItems(ctx, keys, ProcessOptions[variantKey]{
		Parallel: 1,
		ItemInfo: func(key variantKey) string { return "variant " + key.ItemCodename + "/" + key.LanguageCodename },
		Progress: opts.Progress,
	}, func(ctx context.Context, key variantKey) (TargetVariantState, error) {
		return c.probeVariant(ctx, api, key)
	})
	if err != nil {
		return err
	}
	for _, result := range results {
		switch result.State {
		case ResultValid:
			c.variantStates[result.Input] = result.Output
		case ResultNotFound:
			importContextLog.Printf("Variant %s/%s does not exist in target", result.Input.ItemCodename, result.Input.LanguageCodename)
		case ResultError:
			return fmt.Errorf("failed to probe variant %s/%s: %w", result.Input.ItemCodename, result.Input.LanguageCodename, result.Err)
		}
	}
	return nil
}

// probeVariant fetches the latest and, when the latest is not
// published, the published variant of one (item, language). A missing
// latest variant means the variant is absent altogether.
func (c *ImportContext) probeVariant(ctx context.Context, api ManagementAPI, key variantKey) (TargetVariantState, error) {
	latest, err := api.ViewLanguageVariant(ctx, key.ItemCodename, key.LanguageCodename)
	if err != nil {
		return TargetVariantState{}, err
	}

	state := TargetVariantState{}
	classified := c.classifyVariant(latest)
	if classified.WorkflowState == WorkflowStatePublished {
		state.Published = classified
		return state, nil
	}
	state.Draft = classified

	published, err := api.ViewPublishedLanguageVariant(ctx, key.ItemCodename, key.LanguageCodename)
	switch {
	case err == nil:
		state.Published = c.classifyVariant(published)
		// The published endpoint can answer with a stale workflow
		// assignment; it is published by definition of the endpoint.
		state.Published.WorkflowState = WorkflowStatePublished
	case kontent.IsNotFound(err):
	default:
		return TargetVariantState{}, err
	}
	return state, nil
}

// classifyVariant derives the workflow and scheduled state of an
// observed variant. A variant sitting in the scheduled pseudo-step is a
// draft pending publish; a published variant with an unpublish time is
// pending unpublish.
func (c *ImportContext) classifyVariant(variant kontent.LanguageVariant) *TargetVariant {
	classified := &TargetVariant{
		Variant:        variant,
		WorkflowState:  WorkflowStateDraft,
		ScheduledState: ScheduledNone,
	}
	if variant.Workflow == nil {
		return classified
	}
	wf, ok := c.Environment.WorkflowByID(variant.Workflow.WorkflowIdentifier.Id)
	if !ok {
		return classified
	}
	step, ok := StepByID(wf, variant.Workflow.StepIdentifier.Id)
	if !ok {
		return classified
	}

	switch {
	case IsPublishedStep(wf, step.Codename):
		classified.WorkflowState = WorkflowStatePublished
		if variant.Schedule != nil && variant.Schedule.UnpublishTime != "" {
			classified.ScheduledState = ScheduledUnpublish
		}
	case IsArchivedStep(wf, step.Codename):
		classified.WorkflowState = WorkflowStateArchived
	case IsScheduledStep(wf, step.Codename):
		classified.ScheduledState = ScheduledPublish
	default:
		if variant.Schedule != nil && variant.Schedule.PublishTime != "" {
			classified.ScheduledState = ScheduledPublish
		}
	}
	return classified
}

func (c *ImportContext) probeAssets(ctx context.Context, api ManagementAPI, data *MigrationData, opts ImportOptions) error {
	var codenames []string
	for _, asset := range data.Assets {
		codenames = append(codenames, asset.Codename)
	}

	results, err := ProcessItems(ctx, codenames, ProcessOptions[string]{
		Parallel: 1,
		ItemInfo: func(codename string) string { return "asset " + codename },
		Progress: opts.Progress,
	}, func(ctx context.Context, codename string) (kontent.Asset, error) {
		return api.ViewAssetByCodename(ctx, codename)
	})
	if err != nil {
		return err
	}
	for _, result := range results {
		switch result.State {
		case ResultValid:
			c.assetStates[result.Input] = TargetAssetState{Exists: true, Asset: result.Output}
		case ResultNotFound:
			importContextLog.Printf("Asset %s does not exist in target", result.Input)
			c.assetStates[result.Input] = TargetAssetState{ExternalID: opts.externalID(result.Input)}
		case ResultError:
			return fmt.Errorf("failed to probe asset %s: %w", result.Input, result.Err)
		}
	}
	return nil
}
