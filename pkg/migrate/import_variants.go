package migrate

import (
	"context"
	"fmt"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
)

var importVariantsLog = logger.New("migrate:import_variants")

// VariantImportOutcome summarizes the variant import stage.
type VariantImportOutcome struct {
	Imported int
	// Errors maps "item/language" to the per-item failure.
	Errors map[string]error
}

// ImportLanguageVariants is the workflow driver: for each snapshot item
// it prepares the target variant, upserts the versions and walks the
// workflow graph until the variant sits in the step the snapshot names.
// Runs serially; within one item the order is strictly published
// version first, then draft.
func ImportLanguageVariants(ctx context.Context, api ManagementAPI, ictx *ImportContext, data *MigrationData, shells map[string]kontent.ContentItem, opts ImportOptions) (*VariantImportOutcome, error) {
	outcome := &VariantImportOutcome{Errors: map[string]error{}}

	results, err := ProcessItems(ctx, data.Items, ProcessOptions[MigrationItem]{
		Parallel:    1,
		FailOnError: opts.FailOnError,
		ItemInfo: func(item MigrationItem) string {
			return "variant " + item.System.Codename + "/" + item.System.Language.Codename
		},
		Progress: opts.Progress,
	}, func(ctx context.Context, item MigrationItem) (struct{}, error) {
		if _, ok := shells[item.System.Codename]; !ok {
			return struct{}{}, fmt.Errorf("item shell for %q was not imported", item.System.Codename)
		}
		return struct{}{}, importItemVariant(ctx, api, ictx, item)
	})
	if err != nil {
		return nil, err
	}

	for _, result := range results {
		key := result.Input.System.Codename + "/" + result.Input.System.Language.Codename
		switch result.State {
		case ResultValid:
			outcome.Imported++
		case ResultNotFound, ResultError:
			importVariantsLog.Printf("Failed to import variant %s: %v", key, result.Err)
			outcome.Errors[key] = result.Err
		}
	}
	return outcome, nil
}

func importItemVariant(ctx context.Context, api ManagementAPI, ictx *ImportContext, item MigrationItem) error {
	itemCodename := item.System.Codename
	languageCodename := item.System.Language.Codename

	wf, err := WorkflowByCodename(ictx.Environment.Workflows, item.System.Workflow.Codename)
	if err != nil {
		return err
	}
	if len(wf.Steps) == 0 {
		return fmt.Errorf("workflow %q has no steps", wf.Codename)
	}
	contentType, ok := ictx.Environment.ContentTypeByCodename(item.System.Type.Codename)
	if !ok {
		return &LookupError{Entity: "content type", Identifier: item.System.Type.Codename}
	}

	published, draft, err := categorizeVersions(item, wf)
	if err != nil {
		return err
	}

	state := ictx.VariantState(itemCodename, languageCodename)
	if err := prepareTargetVariant(ctx, api, wf, itemCodename, languageCodename, state); err != nil {
		return err
	}

	// Published strictly before draft so both can coexist as the
	// published and the open version of the same variant.
	if published != nil {
		if err := importVersion(ctx, api, ictx, wf, contentType, itemCodename, languageCodename, published); err != nil {
			return err
		}
	}
	if draft != nil {
		if published != nil {
			if err := api.CreateNewVersion(ctx, itemCodename, languageCodename); err != nil {
				return fmt.Errorf("failed to create a new version after publish: %w", err)
			}
		}
		if err := importVersion(ctx, api, ictx, wf, contentType, itemCodename, languageCodename, draft); err != nil {
			return err
		}
	}

	// The target had a published variant the snapshot no longer has:
	// unpublish it and park the variant in the first step.
	if state.Published != nil && published == nil {
		importVariantsLog.Printf("Unpublishing variant %s/%s: snapshot has no published version", itemCodename, languageCodename)
		if err := api.UnpublishLanguageVariant(ctx, itemCodename, languageCodename, nil); err != nil {
			return fmt.Errorf("failed to unpublish variant: %w", err)
		}
		if err := changeStep(ctx, api, wf, itemCodename, languageCodename, wf.Steps[0]); err != nil {
			return err
		}
	}

	return nil
}

// prepareTargetVariant moves an existing target variant into a state
// that accepts an upsert: schedules cancelled, published variants
// forked into a new version, archived variants revived.
//
// The published endpoint is known to report stale or inverted scheduled
// states, so whatever schedule was observed is cancelled and a "nothing
// scheduled" rejection is tolerated.
func prepareTargetVariant(ctx context.Context, api ManagementAPI, wf *kontent.Workflow, itemCodename, languageCodename string, state TargetVariantState) error {
	if state.Draft != nil && state.Draft.ScheduledState == ScheduledPublish {
		if err := api.CancelScheduledPublish(ctx, itemCodename, languageCodename); err != nil && !kontent.IsValidationFailure(err) {
			return fmt.Errorf("failed to cancel scheduled publish: %w", err)
		}
	}
	if state.Published != nil && state.Published.ScheduledState == ScheduledUnpublish {
		if err := api.CancelScheduledUnpublish(ctx, itemCodename, languageCodename); err != nil && !kontent.IsValidationFailure(err) {
			return fmt.Errorf("failed to cancel scheduled unpublish: %w", err)
		}
	}

	if state.Published != nil && state.Draft == nil {
		importVariantsLog.Printf("Creating a new version of published variant %s/%s", itemCodename, languageCodename)
		if err := api.CreateNewVersion(ctx, itemCodename, languageCodename); err != nil {
			return fmt.Errorf("failed to create a new version: %w", err)
		}
		return nil
	}
	if state.Draft != nil && state.Draft.WorkflowState == WorkflowStateArchived {
		importVariantsLog.Printf("Reviving archived variant %s/%s", itemCodename, languageCodename)
		return changeStep(ctx, api, wf, itemCodename, languageCodename, wf.Steps[0])
	}
	return nil
}

// importVersion upserts one version's elements into the first workflow
// step, drives the step to the snapshot's step and applies scheduling.
func importVersion(ctx context.Context, api ManagementAPI, ictx *ImportContext, wf *kontent.Workflow, contentType kontent.FlattenedContentType, itemCodename, languageCodename string, version *MigrationItemVersion) error {
	elements, err := transformElementsImport(ictx, contentType, version.Elements)
	if err != nil {
		return err
	}

	firstStep := wf.Steps[0]
	if _, err := api.UpsertLanguageVariant(ctx, itemCodename, languageCodename, kontent.UpsertLanguageVariantData{
		Elements: elements,
		Workflow: &kontent.WorkflowAssignment{
			WorkflowIdentifier: kontent.ByCodename(wf.Codename),
			StepIdentifier:     kontent.ByCodename(firstStep.Codename),
		},
	}); err != nil {
		return fmt.Errorf("failed to upsert variant: %w", err)
	}

	if err := driveWorkflowStep(ctx, api, wf, itemCodename, languageCodename, firstStep, version.WorkflowStep.Codename); err != nil {
		return err
	}

	return applySchedule(ctx, api, itemCodename, languageCodename, version.Schedule)
}

// driveWorkflowStep moves a variant sitting in the current step to the
// target step.
func driveWorkflowStep(ctx context.Context, api ManagementAPI, wf *kontent.Workflow, itemCodename, languageCodename string, current kontent.WorkflowStep, targetStep string) error {
	switch {
	case IsPublishedStep(wf, targetStep):
		penultimate, err := PenultimateStepToPublish(wf, current.Codename)
		if err != nil {
			return err
		}
		if penultimate.Codename != current.Codename {
			if err := changeStep(ctx, api, wf, itemCodename, languageCodename, penultimate); err != nil {
				return err
			}
		}
		if err := api.PublishLanguageVariant(ctx, itemCodename, languageCodename, nil); err != nil {
			// The server refuses publishes that violate its own
			// validation (missing required elements and the like); the
			// variant stays in the penultimate step.
			if kontent.IsValidationFailure(err) {
				importVariantsLog.Printf("publishError for %s/%s: %v", itemCodename, languageCodename, err)
				return nil
			}
			return fmt.Errorf("failed to publish variant: %w", err)
		}
		return nil

	case IsArchivedStep(wf, targetStep):
		return changeStep(ctx, api, wf, itemCodename, languageCodename, wf.ArchivedStep)

	case IsScheduledStep(wf, targetStep):
		// Scheduling is applied separately from the schedule payload.
		return nil

	case targetStep == current.Codename:
		return nil

	default:
		step, ok := StepByCodename(wf, targetStep)
		if !ok {
			return &LookupError{Entity: "workflow step", Identifier: targetStep}
		}
		return changeStep(ctx, api, wf, itemCodename, languageCodename, step)
	}
}

func changeStep(ctx context.Context, api ManagementAPI, wf *kontent.Workflow, itemCodename, languageCodename string, step kontent.WorkflowStep) error {
	if err := api.ChangeWorkflowOfLanguageVariant(ctx, itemCodename, languageCodename,
		kontent.ByCodename(wf.Codename), kontent.ByCodename(step.Codename)); err != nil {
		return fmt.Errorf("failed to move variant to step %q: %w", step.Codename, err)
	}
	return nil
}

func applySchedule(ctx context.Context, api ManagementAPI, itemCodename, languageCodename string, schedule *MigrationSchedule) error {
	if schedule == nil {
		return nil
	}
	if schedule.PublishTime != "" {
		if err := api.PublishLanguageVariant(ctx, itemCodename, languageCodename, &kontent.SchedulePayload{
			ScheduledTo:     schedule.PublishTime,
			DisplayTimezone: schedule.PublishDisplayTimezone,
		}); err != nil {
			return fmt.Errorf("failed to schedule publish: %w", err)
		}
	}
	if schedule.UnpublishTime != "" {
		if err := api.UnpublishLanguageVariant(ctx, itemCodename, languageCodename, &kontent.SchedulePayload{
			ScheduledTo:     schedule.UnpublishTime,
			DisplayTimezone: schedule.UnpublishDisplayTimezone,
		}); err != nil {
			return fmt.Errorf("failed to schedule unpublish: %w", err)
		}
	}
	return nil
}
