package kontent

// Wire types for the Management API. Every entity carries both a
// server-assigned id and a stable codename; references in request bodies
// may use either.

// Reference identifies an entity by id, codename or external id.
// Exactly one field should be set.
type Reference struct {
	Id         string `json:"id,omitempty"`
	Codename   string `json:"codename,omitempty"`
	ExternalId string `json:"external_id,omitempty"`
}

// ByID returns a reference addressing an entity by id.
func ByID(id string) Reference { return Reference{Id: id} }

// ByCodename returns a reference addressing an entity by codename.
func ByCodename(codename string) Reference { return Reference{Codename: codename} }

// ElementType enumerates the element kinds the Management API serves.
type ElementType string

const (
	ElementTypeText           ElementType = "text"
	ElementTypeNumber         ElementType = "number"
	ElementTypeDateTime       ElementType = "date_time"
	ElementTypeRichText       ElementType = "rich_text"
	ElementTypeAsset          ElementType = "asset"
	ElementTypeTaxonomy       ElementType = "taxonomy"
	ElementTypeModularContent ElementType = "modular_content"
	ElementTypeCustom         ElementType = "custom"
	ElementTypeUrlSlug        ElementType = "url_slug"
	ElementTypeMultipleChoice ElementType = "multiple_choice"
	ElementTypeSubpages       ElementType = "subpages"
)

// ContentItem is the language-agnostic shell of a piece of content.
type ContentItem struct {
	Id           string    `json:"id"`
	Name         string    `json:"name"`
	Codename     string    `json:"codename"`
	Type         Reference `json:"type"`
	Collection   Reference `json:"collection"`
	ExternalId   string    `json:"external_id,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
}

// AddContentItemData is the payload for creating a content item.
type AddContentItemData struct {
	Name       string    `json:"name"`
	Codename   string    `json:"codename,omitempty"`
	Type       Reference `json:"type"`
	Collection Reference `json:"collection,omitempty"`
	ExternalId string    `json:"external_id,omitempty"`
}

// UpsertContentItemData is the payload for updating a content item shell.
// Only name and collection are updatable on an existing item.
type UpsertContentItemData struct {
	Name       string     `json:"name,omitempty"`
	Collection *Reference `json:"collection,omitempty"`
}

// ElementValue is one element inside a language variant or component.
type ElementValue struct {
	Element         Reference        `json:"element"`
	Value           any              `json:"value,omitempty"`
	Components      []ComponentValue `json:"components,omitempty"`
	Mode            string           `json:"mode,omitempty"`
	DisplayTimezone string           `json:"display_timezone,omitempty"`
}

// ComponentValue is an inline component nested in a rich text element.
type ComponentValue struct {
	Id       string         `json:"id"`
	Type     Reference      `json:"type"`
	Elements []ElementValue `json:"elements"`
}

// WorkflowAssignment records which workflow and step a variant sits in.
type WorkflowAssignment struct {
	WorkflowIdentifier      Reference  `json:"workflow_identifier"`
	StepIdentifier          Reference  `json:"step_identifier"`
	ScheduledStepIdentifier *Reference `json:"scheduled_step_identifier,omitempty"`
}

// VariantSchedule carries the scheduled publish/unpublish times of a variant.
type VariantSchedule struct {
	PublishTime              string `json:"publish_time,omitempty"`
	PublishDisplayTimezone   string `json:"publish_display_timezone,omitempty"`
	UnpublishTime            string `json:"unpublish_time,omitempty"`
	UnpublishDisplayTimezone string `json:"unpublish_display_timezone,omitempty"`
}

// LanguageVariant is the per-language payload of a content item.
type LanguageVariant struct {
	Item         Reference           `json:"item"`
	Language     Reference           `json:"language"`
	Elements     []ElementValue      `json:"elements"`
	Workflow     *WorkflowAssignment `json:"workflow,omitempty"`
	Schedule     *VariantSchedule    `json:"schedule,omitempty"`
	LastModified string              `json:"last_modified,omitempty"`
}

// UpsertLanguageVariantData is the payload for upserting a variant.
type UpsertLanguageVariantData struct {
	Elements []ElementValue      `json:"elements"`
	Workflow *WorkflowAssignment `json:"workflow,omitempty"`
}

// SchedulePayload is the optional body of publish/unpublish calls.
type SchedulePayload struct {
	ScheduledTo     string `json:"scheduled_to"`
	DisplayTimezone string `json:"display_timezone,omitempty"`
}

// WorkflowStep is one node in a workflow's step graph.
type WorkflowStep struct {
	Id            string      `json:"id"`
	Name          string      `json:"name"`
	Codename      string      `json:"codename"`
	TransitionsTo []Reference `json:"transitions_to,omitempty"`
}

// Workflow is a directed graph of steps plus the three pseudo-steps
// every workflow carries.
type Workflow struct {
	Id            string         `json:"id"`
	Name          string         `json:"name"`
	Codename      string         `json:"codename"`
	Steps         []WorkflowStep `json:"steps"`
	PublishedStep WorkflowStep   `json:"published_step"`
	ArchivedStep  WorkflowStep   `json:"archived_step"`
	ScheduledStep WorkflowStep   `json:"scheduled_step"`
}

// Language is one language configured in an environment.
type Language struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Codename  string `json:"codename"`
	IsActive  bool   `json:"is_active"`
	IsDefault bool   `json:"is_default"`
}

// Collection groups content items.
type Collection struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Codename string `json:"codename"`
}

// TaxonomyTerm is one node of a taxonomy tree.
type TaxonomyTerm struct {
	Id       string         `json:"id"`
	Name     string         `json:"name"`
	Codename string         `json:"codename"`
	Terms    []TaxonomyTerm `json:"terms,omitempty"`
}

// Taxonomy is a taxonomy group with its term tree.
type Taxonomy struct {
	Id       string         `json:"id"`
	Name     string         `json:"name"`
	Codename string         `json:"codename"`
	Terms    []TaxonomyTerm `json:"terms,omitempty"`
}

// MultipleChoiceOption is one option of a multiple_choice element.
type MultipleChoiceOption struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Codename string `json:"codename"`
}

// TypeElement is one element descriptor of a flattened content type.
type TypeElement struct {
	Id            string                 `json:"id"`
	Codename      string                 `json:"codename"`
	Type          ElementType            `json:"type"`
	TaxonomyGroup *Reference             `json:"taxonomy_group,omitempty"`
	Options       []MultipleChoiceOption `json:"options,omitempty"`
}

// FlattenedContentType is a content type reduced to the element
// descriptors the migration engine needs for value translation.
type FlattenedContentType struct {
	Id       string        `json:"id"`
	Name     string        `json:"name"`
	Codename string        `json:"codename"`
	Elements []TypeElement `json:"elements"`
}

// AssetFolder is one node of the asset folder tree.
type AssetFolder struct {
	Id       string        `json:"id"`
	Name     string        `json:"name"`
	Codename string        `json:"codename"`
	Folders  []AssetFolder `json:"folders,omitempty"`
}

// AssetDescription is the per-language description of an asset.
type AssetDescription struct {
	Language    Reference `json:"language"`
	Description string    `json:"description"`
}

// Asset is a binary file with metadata.
type Asset struct {
	Id           string             `json:"id"`
	Codename     string             `json:"codename"`
	FileName     string             `json:"file_name"`
	Title        string             `json:"title,omitempty"`
	Size         int64              `json:"size,omitempty"`
	Type         string             `json:"type,omitempty"`
	Url          string             `json:"url,omitempty"`
	ExternalId   string             `json:"external_id,omitempty"`
	Collection   *Reference         `json:"collection,omitempty"`
	Folder       *Reference         `json:"folder,omitempty"`
	Descriptions []AssetDescription `json:"descriptions,omitempty"`
}

// FileReference points at an uploaded binary awaiting asset creation.
type FileReference struct {
	Id   string `json:"id"`
	Type string `json:"type"`
}

// AddAssetData is the payload for creating an asset from an uploaded binary.
type AddAssetData struct {
	FileReference FileReference      `json:"file_reference"`
	Codename      string             `json:"codename,omitempty"`
	ExternalId    string             `json:"external_id,omitempty"`
	Title         string             `json:"title,omitempty"`
	Collection    *Reference         `json:"collection,omitempty"`
	Folder        *Reference         `json:"folder,omitempty"`
	Descriptions  []AssetDescription `json:"descriptions,omitempty"`
}

// UpsertAssetData is the payload for updating asset metadata, with an
// optional binary replacement.
type UpsertAssetData struct {
	FileReference *FileReference     `json:"file_reference,omitempty"`
	Title         string             `json:"title,omitempty"`
	Collection    *Reference         `json:"collection,omitempty"`
	Folder        *Reference         `json:"folder,omitempty"`
	Descriptions  []AssetDescription `json:"descriptions,omitempty"`
}

// BinaryFile is a binary payload for upload.
type BinaryFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
