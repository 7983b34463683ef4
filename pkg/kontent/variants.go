package kontent

import (
	"context"
	"fmt"
	"net/http"
)

func variantPath(itemCodename, languageCodename string) string {
	return fmt.Sprintf("/items/codename/%s/variants/codename/%s", itemCodename, languageCodename)
}

// ViewLanguageVariant fetches the latest version of a language variant.
func (c *Client) ViewLanguageVariant(ctx context.Context, itemCodename, languageCodename string) (LanguageVariant, error) {
	var variant LanguageVariant
	if err := c.do(ctx, http.MethodGet, variantPath(itemCodename, languageCodename), nil, nil, &variant); err != nil {
		return LanguageVariant{}, fmt.Errorf("failed to view variant %s/%s: %w", itemCodename, languageCodename, err)
	}
	return variant, nil
}

// ViewPublishedLanguageVariant fetches the published version of a
// language variant. Returns a 404 *APIError when nothing is published.
func (c *Client) ViewPublishedLanguageVariant(ctx context.Context, itemCodename, languageCodename string) (LanguageVariant, error) {
	var variant LanguageVariant
	if err := c.do(ctx, http.MethodGet, variantPath(itemCodename, languageCodename)+"/published", nil, nil, &variant); err != nil {
		return LanguageVariant{}, fmt.Errorf("failed to view published variant %s/%s: %w", itemCodename, languageCodename, err)
	}
	return variant, nil
}

// UpsertLanguageVariant writes element values (and optionally a workflow
// assignment) to a variant, creating it when absent.
func (c *Client) UpsertLanguageVariant(ctx context.Context, itemCodename, languageCodename string, data UpsertLanguageVariantData) (LanguageVariant, error) {
	var variant LanguageVariant
	if err := c.do(ctx, http.MethodPut, variantPath(itemCodename, languageCodename), nil, data, &variant); err != nil {
		return LanguageVariant{}, fmt.Errorf("failed to upsert variant %s/%s: %w", itemCodename, languageCodename, err)
	}
	return variant, nil
}

// CreateNewVersion moves a published variant back to the first workflow
// step so a new draft can be edited alongside the published version.
func (c *Client) CreateNewVersion(ctx context.Context, itemCodename, languageCodename string) error {
	if err := c.do(ctx, http.MethodPut, variantPath(itemCodename, languageCodename)+"/new-version", nil, nil, nil); err != nil {
		return fmt.Errorf("failed to create new version of %s/%s: %w", itemCodename, languageCodename, err)
	}
	return nil
}

// ChangeWorkflowOfLanguageVariant moves a variant to the given workflow step.
func (c *Client) ChangeWorkflowOfLanguageVariant(ctx context.Context, itemCodename, languageCodename string, workflow, step Reference) error {
	body := WorkflowAssignment{WorkflowIdentifier: workflow, StepIdentifier: step}
	if err := c.do(ctx, http.MethodPut, variantPath(itemCodename, languageCodename)+"/change-workflow", nil, body, nil); err != nil {
		return fmt.Errorf("failed to change workflow of %s/%s to %s: %w", itemCodename, languageCodename, step.Codename, err)
	}
	return nil
}

// PublishLanguageVariant publishes a variant, immediately or at the
// scheduled time when schedule is non-nil.
func (c *Client) PublishLanguageVariant(ctx context.Context, itemCodename, languageCodename string, schedule *SchedulePayload) error {
	var body any
	if schedule != nil {
		body = schedule
	}
	if err := c.do(ctx, http.MethodPut, variantPath(itemCodename, languageCodename)+"/publish", nil, body, nil); err != nil {
		return fmt.Errorf("failed to publish %s/%s: %w", itemCodename, languageCodename, err)
	}
	return nil
}

// UnpublishLanguageVariant unpublishes a variant, immediately or at the
// scheduled time when schedule is non-nil.
func (c *Client) UnpublishLanguageVariant(ctx context.Context, itemCodename, languageCodename string, schedule *SchedulePayload) error {
	var body any
	if schedule != nil {
		body = schedule
	}
	if err := c.do(ctx, http.MethodPut, variantPath(itemCodename, languageCodename)+"/unpublish", nil, body, nil); err != nil {
		return fmt.Errorf("failed to unpublish %s/%s: %w", itemCodename, languageCodename, err)
	}
	return nil
}

// CancelScheduledPublish cancels a pending scheduled publish.
// The API answers 400 when nothing is scheduled; callers that probe
// blindly should tolerate that with IsValidationFailure.
func (c *Client) CancelScheduledPublish(ctx context.Context, itemCodename, languageCodename string) error {
	if err := c.do(ctx, http.MethodPut, variantPath(itemCodename, languageCodename)+"/cancel-scheduled-publish", nil, nil, nil); err != nil {
		return fmt.Errorf("failed to cancel scheduled publish of %s/%s: %w", itemCodename, languageCodename, err)
	}
	return nil
}

// CancelScheduledUnpublish cancels a pending scheduled unpublish.
func (c *Client) CancelScheduledUnpublish(ctx context.Context, itemCodename, languageCodename string) error {
	if err := c.do(ctx, http.MethodPut, variantPath(itemCodename, languageCodename)+"/cancel-scheduled-unpublish", nil, nil, nil); err != nil {
		return fmt.Errorf("failed to cancel scheduled unpublish of %s/%s: %w", itemCodename, languageCodename, err)
	}
	return nil
}
