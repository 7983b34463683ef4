package migrate

import (
	"testing"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepCodenames(steps []kontent.WorkflowStep) []string {
	codenames := make([]string, 0, len(steps))
	for _, step := range steps {
		codenames = append(codenames, step.Codename)
	}
	return codenames
}

func TestShortestPath(t *testing.T) {
	wf := fixtureWorkflow()

	tests := []struct {
		name string
		from string
		to   string
		want []string
	}{
		{name: "direct transition", from: "draft", to: "review", want: []string{"draft", "review"}},
		{name: "direct publish from draft", from: "draft", to: "published", want: []string{"draft", "published"}},
		{name: "archive goes through review", from: "draft", to: "archived", want: []string{"draft", "review", "archived"}},
		{name: "same step", from: "review", to: "review", want: []string{"review"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := ShortestPath(&wf, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stepCodenames(path))
		})
	}
}

func TestShortestPathNoRoute(t *testing.T) {
	wf := fixtureWorkflow()

	// Pseudo-steps have no outgoing transitions.
	_, err := ShortestPath(&wf, "published", "draft")
	assert.Error(t, err)

	_, err = ShortestPath(&wf, "draft", "missing_step")
	assert.Error(t, err)
}

func TestShortestPathTieBreaksByStepOrder(t *testing.T) {
	// Two equal-length routes to published; the winner must follow the
	// insertion order of wf.Steps.
	wf := kontent.Workflow{
		Id:       "wf-tie",
		Codename: "tie",
		Steps: []kontent.WorkflowStep{
			{Id: "s1", Codename: "start", TransitionsTo: []kontent.Reference{{Id: "s2"}, {Id: "s3"}}},
			{Id: "s2", Codename: "left", TransitionsTo: []kontent.Reference{{Id: "pub"}}},
			{Id: "s3", Codename: "right", TransitionsTo: []kontent.Reference{{Id: "pub"}}},
		},
		PublishedStep: kontent.WorkflowStep{Id: "pub", Codename: "published"},
		ArchivedStep:  kontent.WorkflowStep{Id: "arc", Codename: "archived"},
		ScheduledStep: kontent.WorkflowStep{Id: "sch", Codename: "scheduled"},
	}

	path, err := ShortestPath(&wf, "start", "published")
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "left", "published"}, stepCodenames(path))
}

func TestPenultimateStepToPublish(t *testing.T) {
	wf := fixtureWorkflow()

	step, err := PenultimateStepToPublish(&wf, "draft")
	require.NoError(t, err)
	assert.Equal(t, "draft", step.Codename)

	step, err = PenultimateStepToPublish(&wf, "review")
	require.NoError(t, err)
	assert.Equal(t, "review", step.Codename)

	// Already published.
	step, err = PenultimateStepToPublish(&wf, "published")
	require.NoError(t, err)
	assert.Equal(t, "published", step.Codename)
}

func TestStepLookupsIncludePseudoSteps(t *testing.T) {
	wf := fixtureWorkflow()

	step, ok := StepByCodename(&wf, "scheduled")
	require.True(t, ok)
	assert.Equal(t, "step-scheduled", step.Id)

	step, ok = StepByID(&wf, "step-archived")
	require.True(t, ok)
	assert.Equal(t, "archived", step.Codename)

	assert.True(t, IsPublishedStep(&wf, "published"))
	assert.True(t, IsArchivedStep(&wf, "archived"))
	assert.True(t, IsScheduledStep(&wf, "scheduled"))
	assert.False(t, IsPublishedStep(&wf, "draft"))
}
