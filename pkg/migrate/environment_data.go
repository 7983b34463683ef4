package migrate

import (
	"context"
	"fmt"
	"sync"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
)

var environmentLog = logger.New("migrate:environment")

// EnvironmentData is the bulk metadata of one environment, pulled once
// per run. Lookup helpers cover both directions (id and codename)
// because wire data is id-addressed while the snapshot is
// codename-addressed.
type EnvironmentData struct {
	Collections  []kontent.Collection
	ContentTypes []kontent.FlattenedContentType
	Languages    []kontent.Language
	Workflows    []kontent.Workflow
	Taxonomies   []kontent.Taxonomy
	AssetFolders []kontent.AssetFolder
}

// LoadEnvironmentData pulls collections, flattened content types,
// languages, workflows, taxonomies and asset folders. A failure here is
// fatal for the whole run: no per-item recovery is possible without
// environment metadata.
func LoadEnvironmentData(ctx context.Context, api ManagementAPI) (*EnvironmentData, error) {
	environmentLog.Print("Loading environment data")
	env := &EnvironmentData{}

	var err error
	if env.Collections, err = api.ListCollections(ctx); err != nil {
		return nil, fmt.Errorf("failed to load environment data: %w", err)
	}
	if env.ContentTypes, err = api.ListContentTypesFlattened(ctx); err != nil {
		return nil, fmt.Errorf("failed to load environment data: %w", err)
	}
	if env.Languages, err = api.ListLanguages(ctx); err != nil {
		return nil, fmt.Errorf("failed to load environment data: %w", err)
	}
	if env.Workflows, err = api.ListWorkflows(ctx); err != nil {
		return nil, fmt.Errorf("failed to load environment data: %w", err)
	}
	if env.Taxonomies, err = api.ListTaxonomies(ctx); err != nil {
		return nil, fmt.Errorf("failed to load environment data: %w", err)
	}
	if env.AssetFolders, err = api.ListAssetFolders(ctx); err != nil {
		return nil, fmt.Errorf("failed to load environment data: %w", err)
	}

	environmentLog.Printf("Environment data loaded: collections=%d, types=%d, languages=%d, workflows=%d, taxonomies=%d",
		len(env.Collections), len(env.ContentTypes), len(env.Languages), len(env.Workflows), len(env.Taxonomies))
	return env, nil
}

// CollectionByID resolves a collection by id.
func (e *EnvironmentData) CollectionByID(id string) (kontent.Collection, bool) {
	for _, c := range e.Collections {
		if c.Id == id {
			return c, true
		}
	}
	return kontent.Collection{}, false
}

// CollectionByCodename resolves a collection by codename.
func (e *EnvironmentData) CollectionByCodename(codename string) (kontent.Collection, bool) {
	for _, c := range e.Collections {
		if c.Codename == codename {
			return c, true
		}
	}
	return kontent.Collection{}, false
}

// ContentTypeByID resolves a flattened content type by id.
func (e *EnvironmentData) ContentTypeByID(id string) (kontent.FlattenedContentType, bool) {
	for _, t := range e.ContentTypes {
		if t.Id == id {
			return t, true
		}
	}
	return kontent.FlattenedContentType{}, false
}

// ContentTypeByCodename resolves a flattened content type by codename.
func (e *EnvironmentData) ContentTypeByCodename(codename string) (kontent.FlattenedContentType, bool) {
	for _, t := range e.ContentTypes {
		if t.Codename == codename {
			return t, true
		}
	}
	return kontent.FlattenedContentType{}, false
}

// LanguageByID resolves a language by id.
func (e *EnvironmentData) LanguageByID(id string) (kontent.Language, bool) {
	for _, l := range e.Languages {
		if l.Id == id {
			return l, true
		}
	}
	return kontent.Language{}, false
}

// LanguageByCodename resolves a language by codename.
func (e *EnvironmentData) LanguageByCodename(codename string) (kontent.Language, bool) {
	for _, l := range e.Languages {
		if l.Codename == codename {
			return l, true
		}
	}
	return kontent.Language{}, false
}

// WorkflowByID resolves a workflow by id.
func (e *EnvironmentData) WorkflowByID(id string) (*kontent.Workflow, bool) {
	for i := range e.Workflows {
		if e.Workflows[i].Id == id {
			return &e.Workflows[i], true
		}
	}
	return nil, false
}

// TaxonomyByID resolves a taxonomy group by id.
func (e *EnvironmentData) TaxonomyByID(id string) (kontent.Taxonomy, bool) {
	for _, t := range e.Taxonomies {
		if t.Id == id {
			return t, true
		}
	}
	return kontent.Taxonomy{}, false
}

// TaxonomyByCodename resolves a taxonomy group by codename.
func (e *EnvironmentData) TaxonomyByCodename(codename string) (kontent.Taxonomy, bool) {
	for _, t := range e.Taxonomies {
		if t.Codename == codename {
			return t, true
		}
	}
	return kontent.Taxonomy{}, false
}

// TermByID finds a term in a taxonomy group's tree by id (DFS).
func TermByID(group kontent.Taxonomy, id string) (kontent.TaxonomyTerm, bool) {
	return findTerm(group.Terms, func(t kontent.TaxonomyTerm) bool { return t.Id == id })
}

// TermByCodename finds a term in a taxonomy group's tree by codename (DFS).
func TermByCodename(group kontent.Taxonomy, codename string) (kontent.TaxonomyTerm, bool) {
	return findTerm(group.Terms, func(t kontent.TaxonomyTerm) bool { return t.Codename == codename })
}

func findTerm(terms []kontent.TaxonomyTerm, match func(kontent.TaxonomyTerm) bool) (kontent.TaxonomyTerm, bool) {
	for _, term := range terms {
		if match(term) {
			return term, true
		}
		if found, ok := findTerm(term.Terms, match); ok {
			return found, true
		}
	}
	return kontent.TaxonomyTerm{}, false
}

// AssetFolderByID finds a folder in the folder tree by id (DFS).
func (e *EnvironmentData) AssetFolderByID(id string) (kontent.AssetFolder, bool) {
	return findFolder(e.AssetFolders, func(f kontent.AssetFolder) bool { return f.Id == id })
}

// AssetFolderByCodename finds a folder in the folder tree by codename (DFS).
func (e *EnvironmentData) AssetFolderByCodename(codename string) (kontent.AssetFolder, bool) {
	return findFolder(e.AssetFolders, func(f kontent.AssetFolder) bool { return f.Codename == codename })
}

func findFolder(folders []kontent.AssetFolder, match func(kontent.AssetFolder) bool) (kontent.AssetFolder, bool) {
	for _, folder := range folders {
		if match(folder) {
			return folder, true
		}
		if found, ok := findFolder(folder.Folders, match); ok {
			return found, true
		}
	}
	return kontent.AssetFolder{}, false
}

// warningSink collects non-fatal findings for the end-of-run report.
// Safe for concurrent use.
type warningSink struct {
	mu       sync.Mutex
	warnings []string
}

func (w *warningSink) addf(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warnings = append(w.warnings, fmt.Sprintf(format, args...))
}

func (w *warningSink) all() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.warnings...)
}
