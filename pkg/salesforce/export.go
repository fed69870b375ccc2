package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/aiquira/assetrisk/internal/model"
)

// AssessmentFields maps an assessment onto the custom object's fields.
// The object needs: Assessment_ID__c (external ID), Property_ID__c,
// Score__c, Level__c, Compliance_Status__c, Open_Issues__c,
// Assessed_At__c.
func AssessmentFields(a *model.RiskAssessment) map[string]any {
	openIssues := 0
	for _, issue := range a.Issues {
		if issue.Status == model.IssueOpen {
			openIssues++
		}
	}

	return map[string]any{
		"Assessment_ID__c":     a.ID,
		"Property_ID__c":       a.PropertyID,
		"Score__c":             a.Score,
		"Level__c":             string(a.Level),
		"Compliance_Status__c": string(a.Compliance.Status),
		"Open_Issues__c":       openIssues,
		"Assessed_At__c":       a.AssessedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// idRecord captures the Id column of a SOQL result row.
type idRecord struct {
	ID string `json:"Id"`
}

// UpsertAssessment writes the assessment to the custom object, updating
// the existing record when the assessment was exported before. Returns
// the Salesforce record ID.
func UpsertAssessment(ctx context.Context, c Client, object string, a *model.RiskAssessment) (string, error) {
	if object == "" {
		return "", eris.New("sf: object name is required")
	}
	if strings.ContainsAny(a.ID, "'\\") {
		return "", eris.Errorf("sf: unsafe assessment id %q", a.ID)
	}

	var existing []idRecord
	soql := fmt.Sprintf("SELECT Id FROM %s WHERE Assessment_ID__c = '%s' LIMIT 1", object, a.ID)
	if err := c.Query(ctx, soql, &existing); err != nil {
		return "", eris.Wrapf(err, "sf: find assessment %s", a.ID)
	}

	fields := AssessmentFields(a)

	if len(existing) > 0 {
		if err := c.UpdateOne(ctx, object, existing[0].ID, fields); err != nil {
			return "", err
		}
		return existing[0].ID, nil
	}

	id, err := c.InsertOne(ctx, object, fields)
	if err != nil {
		return "", err
	}
	return id, nil
}
