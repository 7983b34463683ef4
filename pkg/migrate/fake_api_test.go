package migrate

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
)

// fakeAPI is an in-memory ManagementAPI. State maps are keyed the way
// the wire addresses them; calls records every mutating operation in
// order so tests can assert workflow-driver sequencing.
type fakeAPI struct {
	mu sync.Mutex

	collections  []kontent.Collection
	languages    []kontent.Language
	workflows    []kontent.Workflow
	taxonomies   []kontent.Taxonomy
	contentTypes []kontent.FlattenedContentType
	assetFolders []kontent.AssetFolder

	itemsByCodename   map[string]kontent.ContentItem
	itemsByID         map[string]kontent.ContentItem
	variants          map[string]kontent.LanguageVariant // "item/lang"
	publishedVariants map[string]kontent.LanguageVariant
	assetsByID        map[string]kontent.Asset
	assetsByCodename  map[string]kontent.Asset
	files             map[string][]byte // download url -> binary

	// errOn forces an error for the named call key, e.g. "publish article/en".
	errOn map[string]error

	calls []string

	nextID int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		itemsByCodename:   map[string]kontent.ContentItem{},
		itemsByID:         map[string]kontent.ContentItem{},
		variants:          map[string]kontent.LanguageVariant{},
		publishedVariants: map[string]kontent.LanguageVariant{},
		assetsByID:        map[string]kontent.Asset{},
		assetsByCodename:  map[string]kontent.Asset{},
		files:             map[string][]byte{},
		errOn:             map[string]error{},
	}
}

func notFoundErr() error {
	return &kontent.APIError{StatusCode: http.StatusNotFound, Message: "not found"}
}

func validationErr(message string) error {
	return &kontent.APIError{StatusCode: http.StatusBadRequest, ErrorCode: 5, Message: message}
}

func (f *fakeAPI) record(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := fmt.Sprintf(format, args...)
	f.calls = append(f.calls, call)
	return f.errOn[call]
}

func (f *fakeAPI) addItem(item kontent.ContentItem) {
	f.itemsByCodename[item.Codename] = item
	f.itemsByID[item.Id] = item
}

func (f *fakeAPI) addAsset(asset kontent.Asset) {
	f.assetsByID[asset.Id] = asset
	f.assetsByCodename[asset.Codename] = asset
}

func variantFakeKey(itemCodename, languageCodename string) string {
	return itemCodename + "/" + languageCodename
}

func (f *fakeAPI) ListCollections(context.Context) ([]kontent.Collection, error) {
	return f.collections, nil
}

func (f *fakeAPI) ListLanguages(context.Context) ([]kontent.Language, error) {
	return f.languages, nil
}

func (f *fakeAPI) ListWorkflows(context.Context) ([]kontent.Workflow, error) {
	return f.workflows, nil
}

func (f *fakeAPI) ListTaxonomies(context.Context) ([]kontent.Taxonomy, error) {
	return f.taxonomies, nil
}

func (f *fakeAPI) ListContentTypesFlattened(context.Context) ([]kontent.FlattenedContentType, error) {
	return f.contentTypes, nil
}

func (f *fakeAPI) ListAssetFolders(context.Context) ([]kontent.AssetFolder, error) {
	return f.assetFolders, nil
}

func (f *fakeAPI) ViewContentItemByCodename(_ context.Context, codename string) (kontent.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.itemsByCodename[codename]
	if !ok {
		return kontent.ContentItem{}, notFoundErr()
	}
	return item, nil
}

func (f *fakeAPI) ViewContentItemByID(_ context.Context, id string) (kontent.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.itemsByID[id]
	if !ok {
		return kontent.ContentItem{}, notFoundErr()
	}
	return item, nil
}

func (f *fakeAPI) AddContentItem(_ context.Context, data kontent.AddContentItemData) (kontent.ContentItem, error) {
	if err := f.record("addItem %s", data.Codename); err != nil {
		return kontent.ContentItem{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	item := kontent.ContentItem{
		Id:         fmt.Sprintf("created-%d", f.nextID),
		Name:       data.Name,
		Codename:   data.Codename,
		Type:       data.Type,
		Collection: data.Collection,
		ExternalId: data.ExternalId,
	}
	f.itemsByCodename[item.Codename] = item
	f.itemsByID[item.Id] = item
	return item, nil
}

func (f *fakeAPI) UpsertContentItem(_ context.Context, codename string, data kontent.UpsertContentItemData) (kontent.ContentItem, error) {
	if err := f.record("upsertItem %s", codename); err != nil {
		return kontent.ContentItem{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	item := f.itemsByCodename[codename]
	if data.Name != "" {
		item.Name = data.Name
	}
	if data.Collection != nil {
		item.Collection = *data.Collection
	}
	f.itemsByCodename[codename] = item
	f.itemsByID[item.Id] = item
	return item, nil
}

func (f *fakeAPI) ViewLanguageVariant(_ context.Context, itemCodename, languageCodename string) (kontent.LanguageVariant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	variant, ok := f.variants[variantFakeKey(itemCodename, languageCodename)]
	if !ok {
		return kontent.LanguageVariant{}, notFoundErr()
	}
	return variant, nil
}

func (f *fakeAPI) ViewPublishedLanguageVariant(_ context.Context, itemCodename, languageCodename string) (kontent.LanguageVariant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	variant, ok := f.publishedVariants[variantFakeKey(itemCodename, languageCodename)]
	if !ok {
		return kontent.LanguageVariant{}, notFoundErr()
	}
	return variant, nil
}

func (f *fakeAPI) UpsertLanguageVariant(_ context.Context, itemCodename, languageCodename string, data kontent.UpsertLanguageVariantData) (kontent.LanguageVariant, error) {
	if err := f.record("upsertVariant %s/%s", itemCodename, languageCodename); err != nil {
		return kontent.LanguageVariant{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	variant := kontent.LanguageVariant{
		Item:     kontent.ByCodename(itemCodename),
		Language: kontent.ByCodename(languageCodename),
		Elements: data.Elements,
		Workflow: data.Workflow,
	}
	f.variants[variantFakeKey(itemCodename, languageCodename)] = variant
	return variant, nil
}

func (f *fakeAPI) CreateNewVersion(_ context.Context, itemCodename, languageCodename string) error {
	return f.record("createNewVersion %s/%s", itemCodename, languageCodename)
}

func (f *fakeAPI) ChangeWorkflowOfLanguageVariant(_ context.Context, itemCodename, languageCodename string, workflow, step kontent.Reference) error {
	return f.record("changeWorkflow %s/%s -> %s", itemCodename, languageCodename, step.Codename)
}

func (f *fakeAPI) PublishLanguageVariant(_ context.Context, itemCodename, languageCodename string, schedule *kontent.SchedulePayload) error {
	if schedule != nil {
		return f.record("schedulePublish %s/%s at %s", itemCodename, languageCodename, schedule.ScheduledTo)
	}
	return f.record("publish %s/%s", itemCodename, languageCodename)
}

func (f *fakeAPI) UnpublishLanguageVariant(_ context.Context, itemCodename, languageCodename string, schedule *kontent.SchedulePayload) error {
	if schedule != nil {
		return f.record("scheduleUnpublish %s/%s at %s", itemCodename, languageCodename, schedule.ScheduledTo)
	}
	return f.record("unpublish %s/%s", itemCodename, languageCodename)
}

func (f *fakeAPI) CancelScheduledPublish(_ context.Context, itemCodename, languageCodename string) error {
	return f.record("cancelScheduledPublish %s/%s", itemCodename, languageCodename)
}

func (f *fakeAPI) CancelScheduledUnpublish(_ context.Context, itemCodename, languageCodename string) error {
	return f.record("cancelScheduledUnpublish %s/%s", itemCodename, languageCodename)
}

func (f *fakeAPI) ViewAssetByID(_ context.Context, id string) (kontent.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	asset, ok := f.assetsByID[id]
	if !ok {
		return kontent.Asset{}, notFoundErr()
	}
	return asset, nil
}

func (f *fakeAPI) ViewAssetByCodename(_ context.Context, codename string) (kontent.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	asset, ok := f.assetsByCodename[codename]
	if !ok {
		return kontent.Asset{}, notFoundErr()
	}
	return asset, nil
}

func (f *fakeAPI) AddAsset(_ context.Context, data kontent.AddAssetData) (kontent.Asset, error) {
	if err := f.record("addAsset %s", data.Codename); err != nil {
		return kontent.Asset{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	asset := kontent.Asset{
		Id:           fmt.Sprintf("asset-created-%d", f.nextID),
		Codename:     data.Codename,
		Title:        data.Title,
		ExternalId:   data.ExternalId,
		Collection:   data.Collection,
		Folder:       data.Folder,
		Descriptions: data.Descriptions,
	}
	f.assetsByID[asset.Id] = asset
	f.assetsByCodename[asset.Codename] = asset
	return asset, nil
}

func (f *fakeAPI) UpsertAsset(_ context.Context, codename string, data kontent.UpsertAssetData) (kontent.Asset, error) {
	if err := f.record("upsertAsset %s", codename); err != nil {
		return kontent.Asset{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	asset := f.assetsByCodename[codename]
	asset.Title = data.Title
	asset.Collection = data.Collection
	asset.Folder = data.Folder
	asset.Descriptions = data.Descriptions
	f.assetsByCodename[codename] = asset
	f.assetsByID[asset.Id] = asset
	return asset, nil
}

func (f *fakeAPI) UploadBinaryFile(_ context.Context, file kontent.BinaryFile) (kontent.FileReference, error) {
	if err := f.record("uploadBinary %s", file.Filename); err != nil {
		return kontent.FileReference{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return kontent.FileReference{Id: fmt.Sprintf("file-%d", f.nextID), Type: "internal"}, nil
}

func (f *fakeAPI) DownloadFile(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	binary, ok := f.files[url]
	if !ok {
		return nil, notFoundErr()
	}
	return binary, nil
}

// fixtureEnvironment seeds the fake with the metadata both pipelines
// need: one collection, one language, a three-step workflow and an
// article content type exercising every element kind.
func fixtureEnvironment(f *fakeAPI) {
	f.collections = []kontent.Collection{{Id: "coll-1", Name: "Default", Codename: "default"}}
	f.languages = []kontent.Language{
		{Id: "lang-1", Name: "English (US)", Codename: "en_us"},
		{Id: "lang-2", Name: "Czech", Codename: "cs_cz"},
	}
	f.workflows = []kontent.Workflow{fixtureWorkflow()}
	f.taxonomies = []kontent.Taxonomy{{
		Id:       "tax-1",
		Name:     "Topics",
		Codename: "topics",
		Terms: []kontent.TaxonomyTerm{
			{Id: "term-1", Name: "Go", Codename: "go", Terms: []kontent.TaxonomyTerm{
				{Id: "term-2", Name: "Concurrency", Codename: "concurrency"},
			}},
		},
	}}
	f.assetFolders = []kontent.AssetFolder{{Id: "folder-1", Name: "Images", Codename: "images"}}
	f.contentTypes = []kontent.FlattenedContentType{fixtureArticleType()}
}

func fixtureWorkflow() kontent.Workflow {
	return kontent.Workflow{
		Id:       "wf-1",
		Name:     "Default",
		Codename: "default",
		Steps: []kontent.WorkflowStep{
			{Id: "step-draft", Name: "Draft", Codename: "draft", TransitionsTo: []kontent.Reference{
				{Id: "step-review"}, {Id: "step-published"},
			}},
			{Id: "step-review", Name: "Review", Codename: "review", TransitionsTo: []kontent.Reference{
				{Id: "step-draft"}, {Id: "step-published"}, {Id: "step-archived"},
			}},
		},
		PublishedStep: kontent.WorkflowStep{Id: "step-published", Name: "Published", Codename: "published"},
		ArchivedStep:  kontent.WorkflowStep{Id: "step-archived", Name: "Archived", Codename: "archived"},
		ScheduledStep: kontent.WorkflowStep{Id: "step-scheduled", Name: "Scheduled", Codename: "scheduled"},
	}
}

func fixtureArticleType() kontent.FlattenedContentType {
	return kontent.FlattenedContentType{
		Id:       "type-article",
		Name:     "Article",
		Codename: "article",
		Elements: []kontent.TypeElement{
			{Id: "el-title", Codename: "title", Type: kontent.ElementTypeText},
			{Id: "el-rating", Codename: "rating", Type: kontent.ElementTypeNumber},
			{Id: "el-released", Codename: "released", Type: kontent.ElementTypeDateTime},
			{Id: "el-slug", Codename: "slug", Type: kontent.ElementTypeUrlSlug},
			{Id: "el-body", Codename: "body", Type: kontent.ElementTypeRichText},
			{Id: "el-hero", Codename: "hero", Type: kontent.ElementTypeAsset},
			{Id: "el-topics", Codename: "topics", Type: kontent.ElementTypeTaxonomy, TaxonomyGroup: &kontent.Reference{Id: "tax-1"}},
			{Id: "el-related", Codename: "related", Type: kontent.ElementTypeModularContent},
			{Id: "el-format", Codename: "format", Type: kontent.ElementTypeMultipleChoice, Options: []kontent.MultipleChoiceOption{
				{Id: "opt-long", Codename: "long_form"},
				{Id: "opt-short", Codename: "short_form"},
			}},
		},
	}
}

// fixtureEnvironmentData loads the fake's metadata straight into
// EnvironmentData for tests that bypass the API.
func fixtureEnvironmentData() *EnvironmentData {
	f := newFakeAPI()
	fixtureEnvironment(f)
	return &EnvironmentData{
		Collections:  f.collections,
		ContentTypes: f.contentTypes,
		Languages:    f.languages,
		Workflows:    f.workflows,
		Taxonomies:   f.taxonomies,
		AssetFolders: f.assetFolders,
	}
}
