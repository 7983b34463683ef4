package migrate

import (
	"fmt"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
)

var elementsLog = logger.New("migrate:elements")

// The transform registry translates element values between the
// id-addressed wire form and the codename-addressed migration form.
// One entry per element type, export and import directions. The element
// type set is closed, so this is a plain table rather than an open
// interface.
//
// Resolution strictness per type:
//
//	asset, taxonomy, multiple_choice, subpages  unresolved reference is a hard error
//	modular_content                             unresolved references are dropped
//	                                            (deleted items are expected)
type elementTransform struct {
	export func(*ExportContext, kontent.ElementValue, kontent.TypeElement) (MigrationElement, error)
	imp    func(*ImportContext, MigrationElement, kontent.TypeElement) (kontent.ElementValue, error)
}

var elementTransforms map[kontent.ElementType]elementTransform

// Populated in init rather than a var initializer: the rich text
// transforms recurse through transformElementsExport/Import for
// components, which would otherwise form an initialization cycle.
func init() {
	elementTransforms = map[kontent.ElementType]elementTransform{
		kontent.ElementTypeText:           {export: exportIdentity(kontent.ElementTypeText), imp: importIdentity},
		kontent.ElementTypeCustom:         {export: exportIdentity(kontent.ElementTypeCustom), imp: importIdentity},
		kontent.ElementTypeNumber:         {export: exportIdentity(kontent.ElementTypeNumber), imp: importIdentity},
		kontent.ElementTypeDateTime:       {export: exportDateTime, imp: importDateTime},
		kontent.ElementTypeUrlSlug:        {export: exportUrlSlug, imp: importUrlSlug},
		kontent.ElementTypeAsset:          {export: exportAsset, imp: importAsset},
		kontent.ElementTypeTaxonomy:       {export: exportTaxonomy, imp: importTaxonomy},
		kontent.ElementTypeMultipleChoice: {export: exportMultipleChoice, imp: importMultipleChoice},
		kontent.ElementTypeModularContent: {export: exportModularContent, imp: importModularContent},
		kontent.ElementTypeSubpages:       {export: exportSubpages, imp: importSubpages},
		kontent.ElementTypeRichText:       {export: exportRichTextElement, imp: importRichTextElement},
	}
}

// transformElementsExport maps a wire element set into migration
// elements keyed by element codename.
func transformElementsExport(ectx *ExportContext, contentType kontent.FlattenedContentType, values []kontent.ElementValue) (map[string]MigrationElement, error) {
	elements := make(map[string]MigrationElement, len(values))
	for _, value := range values {
		typeElement, ok := typeElementFor(contentType, value.Element)
		if !ok {
			return nil, &LookupError{Entity: "element", Identifier: value.Element.Id + value.Element.Codename}
		}
		transform, ok := elementTransforms[typeElement.Type]
		if !ok {
			return nil, &TransformError{ElementCodename: typeElement.Codename, Reason: fmt.Sprintf("unsupported element type %q", typeElement.Type)}
		}
		element, err := transform.export(ectx, value, typeElement)
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", typeElement.Codename, err)
		}
		elements[typeElement.Codename] = element
	}
	return elements, nil
}

// transformElementsImport maps migration elements back into the wire
// contract, iterating in canonical codename order. Elements are
// addressed by codename on the wire; the target's element ids never
// need resolving.
func transformElementsImport(ictx *ImportContext, contentType kontent.FlattenedContentType, elements map[string]MigrationElement) ([]kontent.ElementValue, error) {
	values := make([]kontent.ElementValue, 0, len(elements))
	for _, codename := range SortedElementCodenames(elements) {
		element := elements[codename]
		typeElement, ok := typeElementFor(contentType, kontent.ByCodename(codename))
		if !ok {
			return nil, &LookupError{Entity: "element", Identifier: codename}
		}
		if typeElement.Type != element.Type {
			return nil, &TransformError{ElementCodename: codename, Reason: fmt.Sprintf("snapshot type %q does not match target type %q", element.Type, typeElement.Type)}
		}
		transform, ok := elementTransforms[typeElement.Type]
		if !ok {
			return nil, &TransformError{ElementCodename: codename, Reason: fmt.Sprintf("unsupported element type %q", typeElement.Type)}
		}
		value, err := transform.imp(ictx, element, typeElement)
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", codename, err)
		}
		value.Element = kontent.ByCodename(codename)
		values = append(values, value)
	}
	return values, nil
}

// exportIdentity passes the value through untouched. Covers text,
// custom and number; zero is a valid number and survives because the
// wire value is carried as-is.
func exportIdentity(elementType kontent.ElementType) func(*ExportContext, kontent.ElementValue, kontent.TypeElement) (MigrationElement, error) {
	return func(_ *ExportContext, value kontent.ElementValue, _ kontent.TypeElement) (MigrationElement, error) {
		return MigrationElement{Type: elementType, Value: value.Value}, nil
	}
}

func importIdentity(_ *ImportContext, element MigrationElement, _ kontent.TypeElement) (kontent.ElementValue, error) {
	return kontent.ElementValue{Value: element.Value}, nil
}

func exportDateTime(_ *ExportContext, value kontent.ElementValue, _ kontent.TypeElement) (MigrationElement, error) {
	return MigrationElement{
		Type:            kontent.ElementTypeDateTime,
		Value:           value.Value,
		DisplayTimezone: value.DisplayTimezone,
	}, nil
}

func importDateTime(_ *ImportContext, element MigrationElement, _ kontent.TypeElement) (kontent.ElementValue, error) {
	return kontent.ElementValue{Value: element.Value, DisplayTimezone: element.DisplayTimezone}, nil
}

func exportUrlSlug(_ *ExportContext, value kontent.ElementValue, _ kontent.TypeElement) (MigrationElement, error) {
	mode := value.Mode
	if mode == "" {
		mode = "autogenerated"
	}
	return MigrationElement{Type: kontent.ElementTypeUrlSlug, Value: value.Value, Mode: mode}, nil
}

// importUrlSlug always writes mode custom: the exported slug is the
// source of truth and must not be regenerated from the target's name.
func importUrlSlug(_ *ImportContext, element MigrationElement, _ kontent.TypeElement) (kontent.ElementValue, error) {
	return kontent.ElementValue{Value: element.Value, Mode: "custom"}, nil
}

func exportAsset(ectx *ExportContext, value kontent.ElementValue, _ kontent.TypeElement) (MigrationElement, error) {
	refs, err := referenceArray(value.Value)
	if err != nil {
		return MigrationElement{}, err
	}
	codenames := make([]CodenameRef, 0, len(refs))
	for _, ref := range refs {
		asset, ok := ectx.AssetByID(ref.Id)
		if !ok {
			return MigrationElement{}, &LookupError{Entity: "asset", Identifier: ref.Id}
		}
		codenames = append(codenames, CodenameRef{Codename: asset.Codename})
	}
	return MigrationElement{Type: kontent.ElementTypeAsset, Value: codenames}, nil
}

func importAsset(ictx *ImportContext, element MigrationElement, _ kontent.TypeElement) (kontent.ElementValue, error) {
	codenames, err := codenameArray(element.Value)
	if err != nil {
		return kontent.ElementValue{}, err
	}
	refs := make([]kontent.Reference, 0, len(codenames))
	for _, codename := range codenames {
		id, ok := ictx.TargetAssetID(codename)
		if !ok {
			ictx.warnings.addf("asset %q missing in target; reference skipped", codename)
			continue
		}
		refs = append(refs, kontent.ByID(id))
	}
	return kontent.ElementValue{Value: refs}, nil
}

func exportTaxonomy(ectx *ExportContext, value kontent.ElementValue, typeElement kontent.TypeElement) (MigrationElement, error) {
	group, err := taxonomyGroupFor(ectx.Environment, typeElement)
	if err != nil {
		return MigrationElement{}, err
	}
	refs, err := referenceArray(value.Value)
	if err != nil {
		return MigrationElement{}, err
	}
	codenames := make([]CodenameRef, 0, len(refs))
	for _, ref := range refs {
		term, ok := TermByID(group, ref.Id)
		if !ok {
			return MigrationElement{}, &LookupError{Entity: "taxonomy term", Identifier: ref.Id}
		}
		codenames = append(codenames, CodenameRef{Codename: term.Codename})
	}
	return MigrationElement{Type: kontent.ElementTypeTaxonomy, Value: codenames}, nil
}

func importTaxonomy(ictx *ImportContext, element MigrationElement, typeElement kontent.TypeElement) (kontent.ElementValue, error) {
	group, err := taxonomyGroupFor(ictx.Environment, typeElement)
	if err != nil {
		return kontent.ElementValue{}, err
	}
	codenames, err := codenameArray(element.Value)
	if err != nil {
		return kontent.ElementValue{}, err
	}
	refs := make([]kontent.Reference, 0, len(codenames))
	for _, codename := range codenames {
		term, ok := TermByCodename(group, codename)
		if !ok {
			return kontent.ElementValue{}, &LookupError{Entity: "taxonomy term", Identifier: codename}
		}
		refs = append(refs, kontent.ByID(term.Id))
	}
	return kontent.ElementValue{Value: refs}, nil
}

func taxonomyGroupFor(env *EnvironmentData, typeElement kontent.TypeElement) (kontent.Taxonomy, error) {
	if typeElement.TaxonomyGroup == nil {
		return kontent.Taxonomy{}, &TransformError{ElementCodename: typeElement.Codename, Reason: "taxonomy element declares no taxonomy group"}
	}
	if group, ok := env.TaxonomyByID(typeElement.TaxonomyGroup.Id); ok {
		return group, nil
	}
	if group, ok := env.TaxonomyByCodename(typeElement.TaxonomyGroup.Codename); ok {
		return group, nil
	}
	return kontent.Taxonomy{}, &LookupError{Entity: "taxonomy group", Identifier: typeElement.TaxonomyGroup.Id + typeElement.TaxonomyGroup.Codename}
}

func exportMultipleChoice(_ *ExportContext, value kontent.ElementValue, typeElement kontent.TypeElement) (MigrationElement, error) {
	refs, err := referenceArray(value.Value)
	if err != nil {
		return MigrationElement{}, err
	}
	codenames := make([]CodenameRef, 0, len(refs))
	for _, ref := range refs {
		option, ok := optionByID(typeElement, ref.Id)
		if !ok {
			return MigrationElement{}, &LookupError{Entity: "multiple choice option", Identifier: ref.Id}
		}
		codenames = append(codenames, CodenameRef{Codename: option.Codename})
	}
	return MigrationElement{Type: kontent.ElementTypeMultipleChoice, Value: codenames}, nil
}

func importMultipleChoice(_ *ImportContext, element MigrationElement, typeElement kontent.TypeElement) (kontent.ElementValue, error) {
	codenames, err := codenameArray(element.Value)
	if err != nil {
		return kontent.ElementValue{}, err
	}
	refs := make([]kontent.Reference, 0, len(codenames))
	for _, codename := range codenames {
		option, ok := optionByCodename(typeElement, codename)
		if !ok {
			return kontent.ElementValue{}, &LookupError{Entity: "multiple choice option", Identifier: codename}
		}
		refs = append(refs, kontent.ByID(option.Id))
	}
	return kontent.ElementValue{Value: refs}, nil
}

func optionByID(typeElement kontent.TypeElement, id string) (kontent.MultipleChoiceOption, bool) {
	for _, option := range typeElement.Options {
		if option.Id == id {
			return option, true
		}
	}
	return kontent.MultipleChoiceOption{}, false
}

func optionByCodename(typeElement kontent.TypeElement, codename string) (kontent.MultipleChoiceOption, bool) {
	for _, option := range typeElement.Options {
		if option.Codename == codename {
			return option, true
		}
	}
	return kontent.MultipleChoiceOption{}, false
}

// exportModularContent is lenient: linked items deleted in the source
// are silently dropped rather than failing the item.
func exportModularContent(ectx *ExportContext, value kontent.ElementValue, typeElement kontent.TypeElement) (MigrationElement, error) {
	refs, err := referenceArray(value.Value)
	if err != nil {
		return MigrationElement{}, err
	}
	codenames := make([]CodenameRef, 0, len(refs))
	for _, ref := range refs {
		item, ok := ectx.ItemByID(ref.Id)
		if !ok {
			elementsLog.Printf("Element %q: dropping reference to missing item %s", typeElement.Codename, ref.Id)
			continue
		}
		codenames = append(codenames, CodenameRef{Codename: item.Codename})
	}
	return MigrationElement{Type: kontent.ElementTypeModularContent, Value: codenames}, nil
}

func importModularContent(ictx *ImportContext, element MigrationElement, typeElement kontent.TypeElement) (kontent.ElementValue, error) {
	codenames, err := codenameArray(element.Value)
	if err != nil {
		return kontent.ElementValue{}, err
	}
	refs := make([]kontent.Reference, 0, len(codenames))
	for _, codename := range codenames {
		id, ok := ictx.TargetItemID(codename)
		if !ok {
			ictx.warnings.addf("linked item %q missing in target; reference dropped from element %q", codename, typeElement.Codename)
			continue
		}
		refs = append(refs, kontent.ByID(id))
	}
	return kontent.ElementValue{Value: refs}, nil
}

// exportSubpages uses the same mapping as modular content but treats an
// unresolved id as a hard error: a page tree with holes is not usable.
func exportSubpages(ectx *ExportContext, value kontent.ElementValue, _ kontent.TypeElement) (MigrationElement, error) {
	refs, err := referenceArray(value.Value)
	if err != nil {
		return MigrationElement{}, err
	}
	codenames := make([]CodenameRef, 0, len(refs))
	for _, ref := range refs {
		item, ok := ectx.ItemByID(ref.Id)
		if !ok {
			return MigrationElement{}, &LookupError{Entity: "subpage item", Identifier: ref.Id}
		}
		codenames = append(codenames, CodenameRef{Codename: item.Codename})
	}
	return MigrationElement{Type: kontent.ElementTypeSubpages, Value: codenames}, nil
}

func importSubpages(ictx *ImportContext, element MigrationElement, _ kontent.TypeElement) (kontent.ElementValue, error) {
	codenames, err := codenameArray(element.Value)
	if err != nil {
		return kontent.ElementValue{}, err
	}
	refs := make([]kontent.Reference, 0, len(codenames))
	for _, codename := range codenames {
		id, ok := ictx.TargetItemID(codename)
		if !ok {
			return kontent.ElementValue{}, &LookupError{Entity: "subpage item", Identifier: codename}
		}
		refs = append(refs, kontent.ByID(id))
	}
	return kontent.ElementValue{Value: refs}, nil
}

func exportRichTextElement(ectx *ExportContext, value kontent.ElementValue, typeElement kontent.TypeElement) (MigrationElement, error) {
	html, components, err := exportRichText(ectx, value, typeElement.Codename)
	if err != nil {
		return MigrationElement{}, err
	}
	return MigrationElement{Type: kontent.ElementTypeRichText, Value: html, Components: components}, nil
}

func importRichTextElement(ictx *ImportContext, element MigrationElement, typeElement kontent.TypeElement) (kontent.ElementValue, error) {
	html, components, err := importRichText(ictx, element, typeElement.Codename)
	if err != nil {
		return kontent.ElementValue{}, err
	}
	return kontent.ElementValue{Value: html, Components: components}, nil
}

// referenceArray decodes a wire reference-array value. Accepts nil (no
// value), typed references and the generic JSON decoding.
func referenceArray(value any) ([]kontent.Reference, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []kontent.Reference:
		return v, nil
	case []any:
		refs := make([]kontent.Reference, 0, len(v))
		for _, entry := range v {
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("expected an array of references, found %T in the array", entry)
			}
			ref := kontent.Reference{}
			ref.Id, _ = m["id"].(string)
			ref.Codename, _ = m["codename"].(string)
			ref.ExternalId, _ = m["external_id"].(string)
			refs = append(refs, ref)
		}
		return refs, nil
	default:
		return nil, fmt.Errorf("expected an array of references, got %T", value)
	}
}

// codenameArray decodes a migration reference-array value into plain
// codenames. Accepts the in-process []CodenameRef form and the generic
// JSON decoding of items.json.
func codenameArray(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []CodenameRef:
		codenames := make([]string, 0, len(v))
		for _, ref := range v {
			codenames = append(codenames, ref.Codename)
		}
		return codenames, nil
	case []any:
		codenames := make([]string, 0, len(v))
		for _, entry := range v {
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("expected an array of codename references, found %T in the array", entry)
			}
			codename, _ := m["codename"].(string)
			codenames = append(codenames, codename)
		}
		return codenames, nil
	default:
		return nil, fmt.Errorf("expected an array of codename references, got %T", value)
	}
}
