package migrate

import (
	"fmt"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
)

// Pure lookup and graph utilities over workflow definitions. The step
// graph is directed: each step lists the steps it may transition to.
// The published, archived and scheduled pseudo-steps are valid targets
// but have no outgoing transitions.

// WorkflowByCodename finds a workflow definition.
func WorkflowByCodename(workflows []kontent.Workflow, codename string) (*kontent.Workflow, error) {
	for i := range workflows {
		if workflows[i].Codename == codename {
			return &workflows[i], nil
		}
	}
	return nil, fmt.Errorf("workflow %q not found", codename)
}

// allSteps returns the workflow's steps in insertion order with the
// pseudo-steps appended, which fixes the tie-breaking order for BFS.
func allSteps(wf *kontent.Workflow) []kontent.WorkflowStep {
	steps := make([]kontent.WorkflowStep, 0, len(wf.Steps)+3)
	steps = append(steps, wf.Steps...)
	steps = append(steps, wf.PublishedStep, wf.ArchivedStep, wf.ScheduledStep)
	return steps
}

// StepByID finds a step (including pseudo-steps) by id.
func StepByID(wf *kontent.Workflow, id string) (kontent.WorkflowStep, bool) {
	for _, step := range allSteps(wf) {
		if step.Id == id {
			return step, true
		}
	}
	return kontent.WorkflowStep{}, false
}

// StepByCodename finds a step (including pseudo-steps) by codename.
func StepByCodename(wf *kontent.Workflow, codename string) (kontent.WorkflowStep, bool) {
	for _, step := range allSteps(wf) {
		if step.Codename == codename {
			return step, true
		}
	}
	return kontent.WorkflowStep{}, false
}

// IsPublishedStep reports whether codename names the workflow's
// published pseudo-step.
func IsPublishedStep(wf *kontent.Workflow, codename string) bool {
	return codename == wf.PublishedStep.Codename
}

// IsArchivedStep reports whether codename names the workflow's archived
// pseudo-step.
func IsArchivedStep(wf *kontent.Workflow, codename string) bool {
	return codename == wf.ArchivedStep.Codename
}

// IsScheduledStep reports whether codename names the workflow's
// scheduled pseudo-step.
func IsScheduledStep(wf *kontent.Workflow, codename string) bool {
	return codename == wf.ScheduledStep.Codename
}

// ShortestPath returns the minimum-hop step sequence from the step named
// from to the step named to, both inclusive, following transitions_to
// edges. Ties are broken by the insertion order of wf.Steps. Returns an
// error when no path exists.
func ShortestPath(wf *kontent.Workflow, from, to string) ([]kontent.WorkflowStep, error) {
	start, ok := StepByCodename(wf, from)
	if !ok {
		return nil, fmt.Errorf("step %q not found in workflow %q", from, wf.Codename)
	}
	goal, ok := StepByCodename(wf, to)
	if !ok {
		return nil, fmt.Errorf("step %q not found in workflow %q", to, wf.Codename)
	}
	if start.Codename == goal.Codename {
		return []kontent.WorkflowStep{start}, nil
	}

	steps := allSteps(wf)
	transitions := make(map[string]map[string]bool, len(steps))
	for _, step := range steps {
		targets := make(map[string]bool, len(step.TransitionsTo))
		for _, ref := range step.TransitionsTo {
			targets[ref.Id] = true
			if ref.Codename != "" {
				targets[ref.Codename] = true
			}
		}
		transitions[step.Codename] = targets
	}

	// BFS worklist; neighbors expand in allSteps order so equal-length
	// paths resolve deterministically.
	parent := map[string]string{start.Codename: ""}
	queue := []kontent.WorkflowStep{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, candidate := range steps {
			if _, visited := parent[candidate.Codename]; visited {
				continue
			}
			targets := transitions[current.Codename]
			if !targets[candidate.Id] && !targets[candidate.Codename] {
				continue
			}
			parent[candidate.Codename] = current.Codename
			if candidate.Codename == goal.Codename {
				return buildPath(wf, parent, goal.Codename), nil
			}
			queue = append(queue, candidate)
		}
	}
	return nil, fmt.Errorf("no path from step %q to step %q in workflow %q", from, to, wf.Codename)
}

func buildPath(wf *kontent.Workflow, parent map[string]string, end string) []kontent.WorkflowStep {
	var reversed []kontent.WorkflowStep
	for codename := end; codename != ""; codename = parent[codename] {
		step, _ := StepByCodename(wf, codename)
		reversed = append(reversed, step)
	}
	path := make([]kontent.WorkflowStep, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return path
}

// PenultimateStepToPublish returns the last regular step on the
// shortest path from the given step to the published pseudo-step. The
// API only accepts publish calls from specific predecessor steps, so the
// workflow driver moves a variant here before publishing.
func PenultimateStepToPublish(wf *kontent.Workflow, from string) (kontent.WorkflowStep, error) {
	path, err := ShortestPath(wf, from, wf.PublishedStep.Codename)
	if err != nil {
		return kontent.WorkflowStep{}, err
	}
	if len(path) < 2 {
		// Already at the published step.
		return path[0], nil
	}
	return path[len(path)-2], nil
}
