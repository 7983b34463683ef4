package migrate

import (
	"context"
	"testing"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedSourceEnvironment populates the fake with one draft article that
// has an older published version, a linked item and one asset.
func seedSourceEnvironment(f *fakeAPI) {
	fixtureEnvironment(f)

	f.addItem(kontent.ContentItem{
		Id: "item-main", Name: "Article one", Codename: "article_one",
		Type: kontent.ByID("type-article"), Collection: kontent.ByID("coll-1"),
	})
	f.addItem(kontent.ContentItem{
		Id: "item-1", Name: "Linked article", Codename: "linked_article",
		Type: kontent.ByID("type-article"), Collection: kontent.ByID("coll-1"),
	})
	f.addAsset(kontent.Asset{
		Id: "asset-1", Codename: "hero_image", FileName: "hero.png",
		Title: "Hero", Url: "https://assets.test/hero.png",
		Collection:   &kontent.Reference{Id: "coll-1"},
		Folder:       &kontent.Reference{Id: "folder-1"},
		Descriptions: []kontent.AssetDescription{{Language: kontent.ByID("lang-1"), Description: "The hero"}},
	})
	f.files["https://assets.test/hero.png"] = []byte("png-bytes")

	f.variants[variantFakeKey("article_one", "en_us")] = kontent.LanguageVariant{
		Item:     kontent.ByID("item-main"),
		Language: kontent.ByID("lang-1"),
		Workflow: &kontent.WorkflowAssignment{
			WorkflowIdentifier: kontent.ByID("wf-1"),
			StepIdentifier:     kontent.ByID("step-review"),
		},
		Elements: []kontent.ElementValue{
			{Element: kontent.ByID("el-title"), Value: "Article one v2"},
			{Element: kontent.ByID("el-body"), Value: `<p>see <a data-item-id="item-1" href="">this</a></p><figure data-asset-id="asset-1"></figure>`},
			{Element: kontent.ByID("el-related"), Value: []any{map[string]any{"id": "item-1"}}},
		},
	}
	f.publishedVariants[variantFakeKey("article_one", "en_us")] = kontent.LanguageVariant{
		Item:     kontent.ByID("item-main"),
		Language: kontent.ByID("lang-1"),
		Workflow: &kontent.WorkflowAssignment{
			WorkflowIdentifier: kontent.ByID("wf-1"),
			StepIdentifier:     kontent.ByID("step-published"),
		},
		Elements: []kontent.ElementValue{
			{Element: kontent.ByID("el-title"), Value: "Article one v1"},
		},
	}
}

func TestExportMigrationData(t *testing.T) {
	f := newFakeAPI()
	seedSourceEnvironment(f)

	result, err := ExportMigrationData(context.Background(), f, ExportOptions{
		Items: []ExportRequest{{ItemCodename: "article_one", LanguageCodename: "en_us"}},
	})
	require.NoError(t, err)
	require.Len(t, result.Data.Items, 1)
	assert.Empty(t, result.ItemErrors)

	item := result.Data.Items[0]
	assert.Equal(t, "article_one", item.System.Codename)
	assert.Equal(t, "article", item.System.Type.Codename)
	assert.Equal(t, "default", item.System.Collection.Codename)
	assert.Equal(t, "en_us", item.System.Language.Codename)
	assert.Equal(t, "default", item.System.Workflow.Codename)

	// Latest (draft) version first, the published version behind it.
	require.Len(t, item.Versions, 2)
	assert.Equal(t, "review", item.Versions[0].WorkflowStep.Codename)
	assert.Equal(t, "published", item.Versions[1].WorkflowStep.Codename)
	assert.Equal(t, "Article one v2", item.Versions[0].Elements["title"].Value)
	assert.Equal(t, "Article one v1", item.Versions[1].Elements["title"].Value)

	// Rich text ids became codenames.
	body, _ := item.Versions[0].Elements["body"].Value.(string)
	assert.Contains(t, body, `data-manager-link-codename="linked_article"`)
	assert.Contains(t, body, `data-asset-codename="hero_image"`)

	// The referenced asset was downloaded and mapped.
	require.Len(t, result.Data.Assets, 1)
	asset := result.Data.Assets[0]
	assert.Equal(t, "hero_image", asset.Codename)
	assert.Equal(t, "hero.png", asset.Filename)
	assert.Equal(t, []byte("png-bytes"), asset.BinaryData)
	require.NotNil(t, asset.Collection)
	assert.Equal(t, "default", asset.Collection.Codename)
	require.NotNil(t, asset.Folder)
	assert.Equal(t, "images", asset.Folder.Codename)
	require.Len(t, asset.Descriptions, 1)
	assert.Equal(t, "en_us", asset.Descriptions[0].Language.Codename)
}

func TestExportMigrationDataMissingItemIsPerItemError(t *testing.T) {
	f := newFakeAPI()
	seedSourceEnvironment(f)

	result, err := ExportMigrationData(context.Background(), f, ExportOptions{
		Items: []ExportRequest{
			{ItemCodename: "article_one", LanguageCodename: "en_us"},
			{ItemCodename: "missing_article", LanguageCodename: "en_us"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, result.Data.Items, 1)

	require.Len(t, result.ItemErrors, 1)
	perItem := result.ItemErrors[ExportRequest{ItemCodename: "missing_article", LanguageCodename: "en_us"}]
	assert.True(t, kontent.IsNotFound(perItem))
}

func TestExportMigrationDataOutputValidates(t *testing.T) {
	f := newFakeAPI()
	seedSourceEnvironment(f)

	result, err := ExportMigrationData(context.Background(), f, ExportOptions{
		Items: []ExportRequest{{ItemCodename: "article_one", LanguageCodename: "en_us"}},
	})
	require.NoError(t, err)
	require.NoError(t, ValidateMigrationData(result.Data))
}
