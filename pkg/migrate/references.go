package migrate

import (
	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
)

var referencesLog = logger.New("migrate:references")

// ElementEntry is one element set to scan, tagged with the content type
// that declares the elements.
type ElementEntry struct {
	ContentTypeID string
	Elements      []kontent.ElementValue
}

// ExtractReferences walks the given element sets and returns the ids of
// every item and asset they reference: reference-array elements
// (modular_content, subpages, asset) plus rich text links, embedded
// objects and the elements of inline components, recursively.
//
// Unknown elements and malformed values are skipped; strictness is the
// transform layer's job, extraction only seeds the reference fetch.
func ExtractReferences(env *EnvironmentData, entries []ElementEntry) (itemIDs, assetIDs map[string]bool) {
	itemIDs = map[string]bool{}
	assetIDs = map[string]bool{}
	for _, entry := range entries {
		contentType, ok := env.ContentTypeByID(entry.ContentTypeID)
		if !ok {
			referencesLog.Printf("Skipping elements of unknown content type %s", entry.ContentTypeID)
			continue
		}
		collectElementReferences(env, contentType, entry.Elements, itemIDs, assetIDs)
	}
	return itemIDs, assetIDs
}

func collectElementReferences(env *EnvironmentData, contentType kontent.FlattenedContentType, elements []kontent.ElementValue, itemIDs, assetIDs map[string]bool) {
	for _, element := range elements {
		typeElement, ok := typeElementFor(contentType, element.Element)
		if !ok {
			continue
		}
		switch typeElement.Type {
		case kontent.ElementTypeModularContent, kontent.ElementTypeSubpages:
			for _, ref := range referenceArrayLenient(element.Value) {
				if ref.Id != "" {
					itemIDs[ref.Id] = true
				}
			}
		case kontent.ElementTypeAsset:
			for _, ref := range referenceArrayLenient(element.Value) {
				if ref.Id != "" {
					assetIDs[ref.Id] = true
				}
			}
		case kontent.ElementTypeRichText:
			collectRichTextReferences(env, element, itemIDs, assetIDs)
		}
	}
}

func collectRichTextReferences(env *EnvironmentData, element kontent.ElementValue, itemIDs, assetIDs map[string]bool) {
	html, _ := element.Value.(string)

	for _, match := range itemLinkIDRe.FindAllStringSubmatch(html, -1) {
		itemIDs[match[1]] = true
	}
	for _, match := range assetIDAttrRe.FindAllStringSubmatch(html, -1) {
		assetIDs[match[1]] = true
	}
	for _, tag := range objectTagRe.FindAllString(html, -1) {
		attrs := parseTagAttrs(tag)
		if attrs["type"] != objectTypeKenticoCloud || attrs["data-type"] != "item" {
			continue
		}
		if attrs["data-rel"] == "component" {
			continue
		}
		if id := attrs["data-id"]; id != "" {
			itemIDs[id] = true
		}
	}

	// Inline components hold their own element sets; recurse through
	// them with their own content type.
	for _, component := range element.Components {
		componentType, ok := env.ContentTypeByID(component.Type.Id)
		if !ok && component.Type.Codename != "" {
			componentType, ok = env.ContentTypeByCodename(component.Type.Codename)
		}
		if !ok {
			referencesLog.Printf("Skipping component %s of unknown type", component.Id)
			continue
		}
		collectElementReferences(env, componentType, component.Elements, itemIDs, assetIDs)
	}
}

// typeElementFor finds the element descriptor a wire value belongs to,
// matching by id first and codename second.
func typeElementFor(contentType kontent.FlattenedContentType, ref kontent.Reference) (kontent.TypeElement, bool) {
	for _, el := range contentType.Elements {
		if (ref.Id != "" && el.Id == ref.Id) || (ref.Codename != "" && el.Codename == ref.Codename) {
			return el, true
		}
	}
	return kontent.TypeElement{}, false
}

// referenceArrayLenient decodes a wire reference-array value, returning
// nil for anything that is not an array of objects.
func referenceArrayLenient(value any) []kontent.Reference {
	refs, err := referenceArray(value)
	if err != nil {
		return nil
	}
	return refs
}
