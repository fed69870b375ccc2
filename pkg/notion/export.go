package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/aiquira/assetrisk/internal/model"
)

// AssessmentProperties builds the Notion page properties for one
// assessment. The target database needs: Property (title), Assessment ID
// (rich text), Score (number), Level (select), Compliance (select),
// Open Issues (number), Assessed At (date).
func AssessmentProperties(rec *model.PropertyRecord, a *model.RiskAssessment) notionapi.Properties {
	title := a.PropertyID
	if rec != nil && rec.Address != "" {
		title = fmt.Sprintf("%s (%s)", rec.Address, a.PropertyID)
	}

	openIssues := 0
	for _, issue := range a.Issues {
		if issue.Status == model.IssueOpen {
			openIssues++
		}
	}

	assessedAt := notionapi.Date(a.AssessedAt)

	return notionapi.Properties{
		"Property": notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: title}}},
		},
		"Assessment ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: a.ID}}},
		},
		"Score": notionapi.NumberProperty{Number: a.Score},
		"Level": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(a.Level)},
		},
		"Compliance": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(a.Compliance.Status)},
		},
		"Open Issues": notionapi.NumberProperty{Number: float64(openIssues)},
		"Assessed At": notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &assessedAt},
		},
	}
}

// ExportAssessment publishes an assessment to the review database,
// updating the existing page when the assessment was exported before.
func ExportAssessment(ctx context.Context, c Client, dbID string, rec *model.PropertyRecord, a *model.RiskAssessment) (string, error) {
	props := AssessmentProperties(rec, a)

	existing, err := findAssessmentPage(ctx, c, dbID, a.ID)
	if err != nil {
		return "", err
	}

	if existing != "" {
		if _, err := c.UpdatePage(ctx, existing, &notionapi.PageUpdateRequest{Properties: props}); err != nil {
			return "", eris.Wrapf(err, "notion: update assessment %s", a.ID)
		}
		return existing, nil
	}

	page, err := c.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{DatabaseID: notionapi.DatabaseID(dbID)},
		Properties: props,
	})
	if err != nil {
		return "", eris.Wrapf(err, "notion: export assessment %s", a.ID)
	}
	return string(page.ID), nil
}

// findAssessmentPage returns the page ID holding this assessment, or ""
// when it has not been exported yet.
func findAssessmentPage(ctx context.Context, c Client, dbID, assessmentID string) (string, error) {
	resp, err := c.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Assessment ID",
			RichText: &notionapi.TextFilterCondition{Equals: assessmentID},
		},
		PageSize: 1,
	})
	if err != nil {
		return "", eris.Wrapf(err, "notion: find assessment %s", assessmentID)
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return string(resp.Results[0].ID), nil
}
