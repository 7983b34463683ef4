package migrate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
)

var richTextLog = logger.New("migrate:richtext")

// The platform serializes rich text as a constrained HTML subset, so
// all rewriting happens at the attribute-string level with narrow
// regexes; a full HTML parser would accept input the API never emits.
var (
	objectTagRe        = regexp.MustCompile(`<object\b[^>]*>(?:\s*</object>)?`)
	tagAttrRe          = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9-]*)="([^"]*)"`)
	itemLinkIDRe       = regexp.MustCompile(`data-item-id="([^"]*)"`)
	itemLinkCodenameRe = regexp.MustCompile(`data-manager-link-codename="([^"]*)"`)
	assetIDAttrRe      = regexp.MustCompile(`data-asset-id="([^"]*)"`)
	assetCodenameRe    = regexp.MustCompile(`data-asset-codename="([^"]*)"`)

	targetBlankAttrRe = regexp.MustCompile(`\s*target="_blank"`)
	relAttrRe         = regexp.MustCompile(`\s*rel="[^"]*"`)
	emptyHrefAttrRe   = regexp.MustCompile(`\s*href=""`)
	imgTagRe          = regexp.MustCompile(`<img\b[^>]*/?>`)
	dataImageIDAttrRe = regexp.MustCompile(`\s*data-image-id="[^"]*"`)
)

const objectTypeKenticoCloud = "application/kenticocloud"

// parseTagAttrs extracts the attribute map of a single tag string.
func parseTagAttrs(tag string) map[string]string {
	attrs := map[string]string{}
	for _, m := range tagAttrRe.FindAllStringSubmatch(tag, -1) {
		attrs[m[1]] = m[2]
	}
	return attrs
}

// anchorWithItemID matches the full anchor element referencing the
// given item id, capturing its inner content.
func anchorWithItemID(id string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)<a\b[^>]*data-item-id="` + regexp.QuoteMeta(id) + `"[^>]*>(.*?)</a>`)
}

func anchorWithItemCodename(codename string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)<a\b[^>]*data-manager-link-codename="` + regexp.QuoteMeta(codename) + `"[^>]*>(.*?)</a>`)
}

// exportRichText rewrites one rich text value from the id-addressed
// wire form into the codename-addressed migration form and captures the
// inline components it embeds.
func exportRichText(ectx *ExportContext, value kontent.ElementValue, elementCodename string) (string, []MigrationComponent, error) {
	html, _ := value.Value.(string)

	// Pass 1: item links inside anchors.
	for _, match := range itemLinkIDRe.FindAllStringSubmatch(html, -1) {
		id := match[1]
		if item, ok := ectx.ItemByID(id); ok {
			html = strings.ReplaceAll(html, match[0], fmt.Sprintf(`data-manager-link-codename="%s"`, item.Codename))
			continue
		}
		if ectx.replaceInvalidLinks {
			html = anchorWithItemID(id).ReplaceAllString(html, "$1")
			richTextLog.Printf("Element %q: stripped link to unknown item %s", elementCodename, id)
			continue
		}
		ectx.warnings.addf("element %q links to unknown item %s; link left untouched", elementCodename, id)
	}

	// Pass 2: embedded objects (linked items and components).
	var components []MigrationComponent
	var objectErr error
	html = objectTagRe.ReplaceAllStringFunc(html, func(tag string) string {
		attrs := parseTagAttrs(tag)
		if attrs["type"] != objectTypeKenticoCloud {
			return tag
		}

		if attrs["data-rel"] == "component" || attrs["data-type"] == "component" {
			raw := attrs["data-id"]
			if raw == "" {
				raw = attrs["data-codename"]
			}
			component, err := exportComponent(ectx, value.Components, raw, elementCodename)
			if err != nil {
				if objectErr == nil {
					objectErr = err
				}
				return tag
			}
			components = append(components, component)
			return fmt.Sprintf(`<object type=%q data-type="component" data-id="%s"></object>`, objectTypeKenticoCloud, component.Id)
		}

		if attrs["data-type"] == "item" {
			id := attrs["data-id"]
			item, ok := ectx.ItemByID(id)
			if !ok {
				ectx.warnings.addf("element %q embeds unknown item %s; reference left untouched", elementCodename, id)
				return tag
			}
			return fmt.Sprintf(`<object type=%q data-type="item" data-codename="%s"></object>`, objectTypeKenticoCloud, item.Codename)
		}

		return tag
	})
	if objectErr != nil {
		return "", nil, objectErr
	}

	// Pass 3: asset references. Unresolved assets are a hard error, in
	// line with the asset element semantics.
	var assetErr error
	html = assetIDAttrRe.ReplaceAllStringFunc(html, func(attr string) string {
		id := assetIDAttrRe.FindStringSubmatch(attr)[1]
		asset, ok := ectx.AssetByID(id)
		if !ok {
			if assetErr == nil {
				assetErr = &LookupError{Entity: "asset", Identifier: id}
			}
			return attr
		}
		return fmt.Sprintf(`data-asset-codename="%s"`, asset.Codename)
	})
	if assetErr != nil {
		return "", nil, assetErr
	}

	return html, components, nil
}

// exportComponent maps one wire component (matched by its raw data-id
// or data-codename) into a MigrationComponent with a normalized UUID id.
func exportComponent(ectx *ExportContext, wireComponents []kontent.ComponentValue, raw, elementCodename string) (MigrationComponent, error) {
	normalized := ComponentID(raw)
	for _, wire := range wireComponents {
		if wire.Id != raw && ComponentID(wire.Id) != normalized {
			continue
		}
		componentType, ok := ectx.Environment.ContentTypeByID(wire.Type.Id)
		if !ok && wire.Type.Codename != "" {
			componentType, ok = ectx.Environment.ContentTypeByCodename(wire.Type.Codename)
		}
		if !ok {
			return MigrationComponent{}, &LookupError{Entity: "content type", Identifier: wire.Type.Id}
		}
		elements, err := transformElementsExport(ectx, componentType, wire.Elements)
		if err != nil {
			return MigrationComponent{}, fmt.Errorf("component %s: %w", normalized, err)
		}
		return MigrationComponent{
			Id:       normalized,
			Type:     CodenameRef{Codename: componentType.Codename},
			Elements: elements,
		}, nil
	}
	return MigrationComponent{}, &TransformError{
		ElementCodename: elementCodename,
		Reason:          fmt.Sprintf("embedded component %q has no body in the element value", raw),
	}
}

// importRichText is the inverse pass: re-embeds components, maps
// codenames back to target ids and normalizes attributes the API
// refuses.
func importRichText(ictx *ImportContext, element MigrationElement, elementCodename string) (string, []kontent.ComponentValue, error) {
	html, _ := element.Value.(string)

	// Item links back to ids.
	for _, match := range itemLinkCodenameRe.FindAllStringSubmatch(html, -1) {
		codename := match[1]
		if id, ok := ictx.TargetItemID(codename); ok {
			html = strings.ReplaceAll(html, match[0], fmt.Sprintf(`data-item-id="%s"`, id))
			continue
		}
		ictx.warnings.addf("element %q links to item %q missing in target; link stripped", elementCodename, codename)
		html = anchorWithItemCodename(codename).ReplaceAllString(html, "$1")
	}

	// Embedded objects.
	html = objectTagRe.ReplaceAllStringFunc(html, func(tag string) string {
		attrs := parseTagAttrs(tag)
		if attrs["type"] != objectTypeKenticoCloud {
			return tag
		}
		if attrs["data-type"] == "item" {
			codename := attrs["data-codename"]
			id, ok := ictx.TargetItemID(codename)
			if !ok {
				ictx.warnings.addf("element %q embeds item %q missing in target; reference dropped", elementCodename, codename)
				return ""
			}
			return fmt.Sprintf(`<object type=%q data-type="item" data-id="%s"></object>`, objectTypeKenticoCloud, id)
		}
		// Component objects already carry normalized UUIDs.
		return tag
	})

	// Asset references back to ids. Missing target assets drop the
	// reference with a warning, mirroring the asset element import.
	html = assetCodenameRe.ReplaceAllStringFunc(html, func(attr string) string {
		codename := assetCodenameRe.FindStringSubmatch(attr)[1]
		id, ok := ictx.TargetAssetID(codename)
		if !ok {
			ictx.warnings.addf("element %q references asset %q missing in target; reference dropped", elementCodename, codename)
			return ""
		}
		return fmt.Sprintf(`data-asset-id="%s"`, id)
	})

	// Attribute normalization: the editor emits these but the
	// Management API refuses them.
	html = targetBlankAttrRe.ReplaceAllString(html, ` data-new-window="true"`)
	html = relAttrRe.ReplaceAllString(html, "")
	html = emptyHrefAttrRe.ReplaceAllString(html, "")
	html = imgTagRe.ReplaceAllString(html, "")
	html = dataImageIDAttrRe.ReplaceAllString(html, "")

	// Re-embed components.
	var components []kontent.ComponentValue
	for _, component := range element.Components {
		componentType, ok := ictx.Environment.ContentTypeByCodename(component.Type.Codename)
		if !ok {
			return "", nil, &LookupError{Entity: "content type", Identifier: component.Type.Codename}
		}
		elements, err := transformElementsImport(ictx, componentType, component.Elements)
		if err != nil {
			return "", nil, fmt.Errorf("component %s: %w", component.Id, err)
		}
		components = append(components, kontent.ComponentValue{
			Id:       ComponentID(component.Id),
			Type:     kontent.ByCodename(component.Type.Codename),
			Elements: elements,
		})
	}

	return html, components, nil
}
