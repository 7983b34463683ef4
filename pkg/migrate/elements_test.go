package migrate

import (
	"testing"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformElementsExport(t *testing.T) {
	ectx := testExportContext()
	articleType := fixtureArticleType()

	values := []kontent.ElementValue{
		{Element: kontent.ByID("el-title"), Value: "Hello"},
		{Element: kontent.ByID("el-rating"), Value: float64(0)},
		{Element: kontent.ByID("el-released"), Value: "2024-01-02T00:00:00Z", DisplayTimezone: "Europe/Prague"},
		{Element: kontent.ByID("el-slug"), Value: "hello"},
		{Element: kontent.ByID("el-hero"), Value: []any{map[string]any{"id": "asset-1"}}},
		{Element: kontent.ByID("el-topics"), Value: []any{map[string]any{"id": "term-2"}}},
		{Element: kontent.ByID("el-related"), Value: []any{
			map[string]any{"id": "item-1"},
			map[string]any{"id": "deleted-item"},
		}},
		{Element: kontent.ByID("el-format"), Value: []any{map[string]any{"id": "opt-short"}}},
	}

	elements, err := transformElementsExport(ectx, articleType, values)
	require.NoError(t, err)
	require.Len(t, elements, 8)

	assert.Equal(t, "Hello", elements["title"].Value)

	// Zero is a valid number and must survive.
	rating := elements["rating"]
	assert.Equal(t, kontent.ElementTypeNumber, rating.Type)
	assert.Equal(t, float64(0), rating.Value)

	released := elements["released"]
	assert.Equal(t, "Europe/Prague", released.DisplayTimezone)

	// Slug without an explicit mode defaults to autogenerated.
	assert.Equal(t, "autogenerated", elements["slug"].Mode)

	assert.Equal(t, []CodenameRef{{Codename: "hero_image"}}, elements["hero"].Value)
	assert.Equal(t, []CodenameRef{{Codename: "concurrency"}}, elements["topics"].Value)
	assert.Equal(t, []CodenameRef{{Codename: "short_form"}}, elements["format"].Value)

	// Deleted linked items are dropped, not failed.
	assert.Equal(t, []CodenameRef{{Codename: "linked_article"}}, elements["related"].Value)
}

func TestTransformElementsExportStrictLookups(t *testing.T) {
	ectx := testExportContext()
	articleType := fixtureArticleType()

	tests := []struct {
		name  string
		value kontent.ElementValue
	}{
		{
			name:  "unresolved asset",
			value: kontent.ElementValue{Element: kontent.ByID("el-hero"), Value: []any{map[string]any{"id": "missing"}}},
		},
		{
			name:  "unresolved taxonomy term",
			value: kontent.ElementValue{Element: kontent.ByID("el-topics"), Value: []any{map[string]any{"id": "missing"}}},
		},
		{
			name:  "unresolved multiple choice option",
			value: kontent.ElementValue{Element: kontent.ByID("el-format"), Value: []any{map[string]any{"id": "missing"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transformElementsExport(ectx, articleType, []kontent.ElementValue{tt.value})
			var lookupErr *LookupError
			require.ErrorAs(t, err, &lookupErr)
		})
	}
}

func TestTransformElementsExportUnknownElement(t *testing.T) {
	ectx := testExportContext()
	_, err := transformElementsExport(ectx, fixtureArticleType(), []kontent.ElementValue{
		{Element: kontent.ByID("el-unknown"), Value: "x"},
	})
	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "element", lookupErr.Entity)
}

func TestTransformElementsImport(t *testing.T) {
	ictx := testImportContext()
	articleType := fixtureArticleType()

	elements := map[string]MigrationElement{
		"title":    {Type: kontent.ElementTypeText, Value: "Hello"},
		"rating":   {Type: kontent.ElementTypeNumber, Value: float64(0)},
		"slug":     {Type: kontent.ElementTypeUrlSlug, Value: "hello", Mode: "autogenerated"},
		"released": {Type: kontent.ElementTypeDateTime, Value: "2024-01-02T00:00:00Z", DisplayTimezone: "Europe/Prague"},
		"hero":     {Type: kontent.ElementTypeAsset, Value: []CodenameRef{{Codename: "hero_image"}}},
		"topics":   {Type: kontent.ElementTypeTaxonomy, Value: []CodenameRef{{Codename: "concurrency"}}},
		"related": {Type: kontent.ElementTypeModularContent, Value: []CodenameRef{
			{Codename: "linked_article"},
			{Codename: "missing_in_target"},
		}},
		"format": {Type: kontent.ElementTypeMultipleChoice, Value: []CodenameRef{{Codename: "long_form"}}},
	}

	values, err := transformElementsImport(ictx, articleType, elements)
	require.NoError(t, err)
	require.Len(t, values, 8)

	// Canonical codename order.
	var order []string
	byCodename := map[string]kontent.ElementValue{}
	for _, value := range values {
		order = append(order, value.Element.Codename)
		byCodename[value.Element.Codename] = value
	}
	assert.Equal(t, []string{"format", "hero", "rating", "related", "released", "slug", "title", "topics"}, order)

	assert.Equal(t, float64(0), byCodename["rating"].Value)

	// Imported slugs always go back as custom.
	assert.Equal(t, "custom", byCodename["slug"].Mode)

	assert.Equal(t, []kontent.Reference{kontent.ByID("target-asset-1")}, byCodename["hero"].Value)
	assert.Equal(t, []kontent.Reference{kontent.ByID("term-2")}, byCodename["topics"].Value)
	assert.Equal(t, []kontent.Reference{kontent.ByID("opt-long")}, byCodename["format"].Value)

	// Items missing in the target drop out with a warning.
	assert.Equal(t, []kontent.Reference{kontent.ByID("target-item-1")}, byCodename["related"].Value)
	assert.NotEmpty(t, ictx.Warnings())
}

func TestTransformElementsImportTypeMismatch(t *testing.T) {
	ictx := testImportContext()
	_, err := transformElementsImport(ictx, fixtureArticleType(), map[string]MigrationElement{
		"title": {Type: kontent.ElementTypeNumber, Value: float64(1)},
	})
	require.Error(t, err)
	var transformErr *TransformError
	require.ErrorAs(t, err, &transformErr)
	assert.Equal(t, "title", transformErr.ElementCodename)
}

func TestReferenceArrayShapes(t *testing.T) {
	refs, err := referenceArray(nil)
	require.NoError(t, err)
	assert.Empty(t, refs)

	refs, err = referenceArray([]kontent.Reference{kontent.ByID("a")})
	require.NoError(t, err)
	assert.Equal(t, "a", refs[0].Id)

	// Generic JSON decoding.
	refs, err = referenceArray([]any{map[string]any{"id": "b", "codename": "c"}})
	require.NoError(t, err)
	assert.Equal(t, "b", refs[0].Id)
	assert.Equal(t, "c", refs[0].Codename)

	_, err = referenceArray("not an array")
	assert.Error(t, err)

	_, err = referenceArray([]any{"not an object"})
	assert.Error(t, err)
}

func TestCodenameArrayShapes(t *testing.T) {
	codenames, err := codenameArray([]CodenameRef{{Codename: "a"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, codenames)

	codenames, err = codenameArray([]any{map[string]any{"codename": "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, codenames)

	_, err = codenameArray(42)
	assert.Error(t, err)
}
