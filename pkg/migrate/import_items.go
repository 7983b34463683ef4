package migrate

import (
	"context"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
)

var importItemsLog = logger.New("migrate:import_items")

// ImportContentItems reconciles the content item shells of a snapshot
// into the target, serially. Existing items get an upsert only when
// name or collection drifted; missing items are created under the
// external id decided by the import context. Shells created earlier in
// the run are reused via the context memo, so repeated codenames are
// touched at most once.
//
// Per-item failures are recorded and the item skipped unless
// FailOnError is set; the returned map only holds items whose shell is
// in place.
func ImportContentItems(ctx context.Context, api ManagementAPI, ictx *ImportContext, data *MigrationData, opts ImportOptions) (map[string]kontent.ContentItem, map[string]error, error) {
	var codenames []string
	items := map[string]MigrationItem{}
	for _, item := range data.Items {
		if _, seen := items[item.System.Codename]; !seen {
			items[item.System.Codename] = item
			codenames = append(codenames, item.System.Codename)
		}
	}

	results, err := ProcessItems(ctx, codenames, ProcessOptions[string]{
		Parallel:    1,
		FailOnError: opts.FailOnError,
		ItemInfo:    func(codename string) string { return "item " + codename },
		Progress:    opts.Progress,
	}, func(ctx context.Context, codename string) (kontent.ContentItem, error) {
		return importContentItem(ctx, api, ictx, items[codename], opts.Force)
	})
	if err != nil {
		return nil, nil, err
	}

	imported := map[string]kontent.ContentItem{}
	itemErrors := map[string]error{}
	for _, result := range results {
		switch result.State {
		case ResultValid:
			imported[result.Input] = result.Output
			ictx.RecordCreatedItem(result.Output)
		case ResultNotFound, ResultError:
			importItemsLog.Printf("Skipping item %s: %v", result.Input, result.Err)
			itemErrors[result.Input] = result.Err
		}
	}
	return imported, itemErrors, nil
}

func importContentItem(ctx context.Context, api ManagementAPI, ictx *ImportContext, item MigrationItem, force bool) (kontent.ContentItem, error) {
	codename := item.System.Codename

	collection, ok := ictx.Environment.CollectionByCodename(item.System.Collection.Codename)
	if !ok {
		return kontent.ContentItem{}, &LookupError{Entity: "collection", Identifier: item.System.Collection.Codename}
	}
	if _, ok := ictx.Environment.ContentTypeByCodename(item.System.Type.Codename); !ok {
		return kontent.ContentItem{}, &LookupError{Entity: "content type", Identifier: item.System.Type.Codename}
	}

	state, _ := ictx.ItemState(codename)
	if state.Exists {
		if !force && state.Item.Name == item.System.Name && state.Item.Collection.Id == collection.Id {
			importItemsLog.Printf("Item %s is up to date", codename)
			return state.Item, nil
		}
		// Only name and collection of an existing shell are updatable.
		collectionRef := kontent.ByCodename(collection.Codename)
		return api.UpsertContentItem(ctx, codename, kontent.UpsertContentItemData{
			Name:       item.System.Name,
			Collection: &collectionRef,
		})
	}

	importItemsLog.Printf("Creating item %s", codename)
	return api.AddContentItem(ctx, kontent.AddContentItemData{
		Name:       item.System.Name,
		Codename:   codename,
		Type:       kontent.ByCodename(item.System.Type.Codename),
		Collection: kontent.ByCodename(collection.Codename),
		ExternalId: state.ExternalID,
	})
}
