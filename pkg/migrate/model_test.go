package migrate

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizeVersions(t *testing.T) {
	wf := fixtureWorkflow()

	item := MigrationItem{
		System: MigrationItemSystem{Codename: "article_one"},
		Versions: []MigrationItemVersion{
			{WorkflowStep: CodenameRef{Codename: "published"}},
			{WorkflowStep: CodenameRef{Codename: "review"}},
		},
	}
	published, draft, err := categorizeVersions(item, &wf)
	require.NoError(t, err)
	require.NotNil(t, published)
	require.NotNil(t, draft)
	assert.Equal(t, "published", published.WorkflowStep.Codename)
	assert.Equal(t, "review", draft.WorkflowStep.Codename)
}

func TestCategorizeVersionsSingleDraft(t *testing.T) {
	wf := fixtureWorkflow()
	item := MigrationItem{Versions: []MigrationItemVersion{
		{WorkflowStep: CodenameRef{Codename: "draft"}},
	}}
	published, draft, err := categorizeVersions(item, &wf)
	require.NoError(t, err)
	assert.Nil(t, published)
	require.NotNil(t, draft)
}

func TestCategorizeVersionsRejectsDuplicates(t *testing.T) {
	wf := fixtureWorkflow()

	_, _, err := categorizeVersions(MigrationItem{
		System: MigrationItemSystem{Codename: "dup"},
		Versions: []MigrationItemVersion{
			{WorkflowStep: CodenameRef{Codename: "published"}},
			{WorkflowStep: CodenameRef{Codename: "published"}},
		},
	}, &wf)
	assert.ErrorContains(t, err, "more than one published version")

	_, _, err = categorizeVersions(MigrationItem{
		System: MigrationItemSystem{Codename: "dup"},
		Versions: []MigrationItemVersion{
			{WorkflowStep: CodenameRef{Codename: "draft"}},
			{WorkflowStep: CodenameRef{Codename: "review"}},
		},
	}, &wf)
	assert.ErrorContains(t, err, "more than one draft version")
}

func TestSortedElementCodenames(t *testing.T) {
	elements := map[string]MigrationElement{
		"zebra": {}, "alpha": {}, "mid": {},
	}
	assert.Equal(t, []string{"alpha", "mid", "zebra"}, SortedElementCodenames(elements))
}

func TestMigrationItemMarshalIsDeterministic(t *testing.T) {
	item := MigrationItem{
		System: MigrationItemSystem{
			Name: "A", Codename: "a",
			Language:   CodenameRef{Codename: "en_us"},
			Type:       CodenameRef{Codename: "article"},
			Collection: CodenameRef{Codename: "default"},
			Workflow:   CodenameRef{Codename: "default"},
		},
		Versions: []MigrationItemVersion{{
			Elements: map[string]MigrationElement{
				"title": {Type: kontent.ElementTypeText, Value: "A"},
				"body":  {Type: kontent.ElementTypeRichText, Value: "<p></p>"},
			},
			WorkflowStep: CodenameRef{Codename: "draft"},
		}},
	}

	first, err := json.Marshal(item)
	require.NoError(t, err)
	second, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	// Element maps marshal in sorted key order.
	assert.Less(t,
		strings.Index(string(first), `"body"`),
		strings.Index(string(first), `"title"`))
}
