package migrate

import (
	"fmt"
	"sort"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
)

// The migration model is the codename-addressed snapshot format. Ids
// never appear here; they only live inside the export/import contexts.

// CodenameRef references an entity by codename only.
type CodenameRef struct {
	Codename string `json:"codename"`
}

// MigrationData is a self-consistent snapshot of items and assets.
type MigrationData struct {
	Items  []MigrationItem  `json:"items"`
	Assets []MigrationAsset `json:"assets"`
}

// MigrationItemSystem carries the language-agnostic identity of an item
// plus the language this MigrationItem covers.
type MigrationItemSystem struct {
	Name       string      `json:"name"`
	Codename   string      `json:"codename"`
	Language   CodenameRef `json:"language"`
	Type       CodenameRef `json:"type"`
	Collection CodenameRef `json:"collection"`
	Workflow   CodenameRef `json:"workflow"`
}

// MigrationItem is one content item within one language.
type MigrationItem struct {
	System   MigrationItemSystem    `json:"system"`
	Versions []MigrationItemVersion `json:"versions"`
}

// MigrationSchedule carries scheduled publish/unpublish times of a version.
type MigrationSchedule struct {
	PublishTime              string `json:"publish_time,omitempty"`
	PublishDisplayTimezone   string `json:"publish_display_timezone,omitempty"`
	UnpublishTime            string `json:"unpublish_time,omitempty"`
	UnpublishDisplayTimezone string `json:"unpublish_display_timezone,omitempty"`
}

// MigrationItemVersion is one workflow version of an item. A
// MigrationItem holds at most one published and at most one draft
// version.
//
// Elements are keyed by element codename. encoding/json marshals maps
// in sorted key order, which keeps snapshots byte-reproducible.
type MigrationItemVersion struct {
	Elements     map[string]MigrationElement `json:"elements"`
	Schedule     *MigrationSchedule          `json:"schedule,omitempty"`
	WorkflowStep CodenameRef                 `json:"workflow_step"`
}

// MigrationElement is a single element value tagged by element type.
// The value shape depends on Type: strings for text-likes, numbers for
// number, []CodenameRef for reference arrays, HTML string for rich_text.
type MigrationElement struct {
	Type            kontent.ElementType  `json:"type"`
	Value           any                  `json:"value"`
	Components      []MigrationComponent `json:"components,omitempty"`
	Mode            string               `json:"mode,omitempty"`
	DisplayTimezone string               `json:"display_timezone,omitempty"`
}

// MigrationComponent is inline content nested in a rich text element.
// Id is always a valid UUID (see ComponentID).
type MigrationComponent struct {
	Id       string                      `json:"id"`
	Type     CodenameRef                 `json:"type"`
	Elements map[string]MigrationElement `json:"elements"`
}

// MigrationAssetDescription is the per-language description of an asset.
type MigrationAssetDescription struct {
	Language    CodenameRef `json:"language"`
	Description string      `json:"description"`
}

// MigrationAsset is an asset with its binary. The binary itself is not
// part of items.json; the snapshot writer stores it in assets.zip.
type MigrationAsset struct {
	Codename     string                      `json:"codename"`
	Filename     string                      `json:"filename"`
	Title        string                      `json:"title,omitempty"`
	Collection   *CodenameRef                `json:"collection,omitempty"`
	Folder       *CodenameRef                `json:"folder,omitempty"`
	Descriptions []MigrationAssetDescription `json:"descriptions,omitempty"`

	BinaryData []byte `json:"-"`
}

// SortedElementCodenames returns the element codenames in ascending
// order, the canonical iteration order for snapshot elements.
func SortedElementCodenames(elements map[string]MigrationElement) []string {
	codenames := make([]string, 0, len(elements))
	for codename := range elements {
		codenames = append(codenames, codename)
	}
	sort.Strings(codenames)
	return codenames
}

// categorizeVersions partitions an item's versions into at most one
// published and one draft version. More of either is a per-item error.
func categorizeVersions(item MigrationItem, wf *kontent.Workflow) (published, draft *MigrationItemVersion, err error) {
	for i := range item.Versions {
		version := &item.Versions[i]
		if version.WorkflowStep.Codename == wf.PublishedStep.Codename {
			if published != nil {
				return nil, nil, fmt.Errorf("item %q has more than one published version", item.System.Codename)
			}
			published = version
			continue
		}
		if draft != nil {
			return nil, nil, fmt.Errorf("item %q has more than one draft version", item.System.Codename)
		}
		draft = version
	}
	return published, draft, nil
}
