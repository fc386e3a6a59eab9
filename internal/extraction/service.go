// Package extraction turns recognized pages into structured item records
// using a tenant-owned document profile. The profile's rules name the
// fields to pull and the regex that captures each one; its schema, when
// present, gates what is persisted.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/vitohq/docintel/internal/models"
	"github.com/vitohq/docintel/internal/recognition"
)

// FieldRule captures one profile-defined field. Pattern is a regular
// expression; the first capture group (or the whole match) becomes the
// field value. Page 0 means every page.
type FieldRule struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Page    int    `json:"page,omitempty"`
}

type profileRules struct {
	Fields []FieldRule `json:"fields"`
}

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// ExtractItems produces one DocumentItem per page that matches at least
// one profile field. An empty result is valid: not every document yields
// items.
func (s *Service) ExtractItems(ctx context.Context, result *recognition.Result, profile *models.DocumentProfile, tenantID, jobID string) ([]models.DocumentItem, error) {
	var rules profileRules
	if err := json.Unmarshal(profile.Rules, &rules); err != nil {
		return nil, fmt.Errorf("parse profile rules: %w", err)
	}

	compiled := make([]*regexp.Regexp, len(rules.Fields))
	for i, f := range rules.Fields {
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", f.Name, err)
		}
		compiled[i] = re
	}

	schema, err := compileSchema(profile)
	if err != nil {
		return nil, err
	}

	var items []models.DocumentItem
	for _, page := range result.Pages {
		fields := map[string]string{}
		for i, f := range rules.Fields {
			if f.Page != 0 && f.Page != page.Number {
				continue
			}
			m := compiled[i].FindStringSubmatch(page.Text)
			if m == nil {
				continue
			}
			value := m[0]
			if len(m) > 1 {
				value = m[1]
			}
			fields[f.Name] = value
		}
		if len(fields) == 0 {
			continue
		}

		if schema != nil {
			if err := validateFields(schema, fields); err != nil {
				// Drop the item rather than persist rows the profile
				// schema rejects. Field values stay out of the log.
				slog.Warn("extracted item failed schema validation",
					"job_id", jobID, "page", page.Number, "fields", len(fields))
				continue
			}
		}

		raw, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("marshal item fields: %w", err)
		}

		items = append(items, models.DocumentItem{
			TenantID:      tenantID,
			DocumentJobID: jobID,
			PageNumber:    page.Number,
			Fields:        raw,
		})
	}

	return items, nil
}

func compileSchema(profile *models.DocumentProfile) (*jsonschema.Schema, error) {
	if len(profile.Schema) == 0 {
		return nil, nil
	}
	schema, err := jsonschema.CompileString("profile://"+profile.ID, string(profile.Schema))
	if err != nil {
		return nil, fmt.Errorf("compile profile schema: %w", err)
	}
	return schema, nil
}

func validateFields(schema *jsonschema.Schema, fields map[string]string) error {
	// jsonschema validates decoded JSON values, not Go maps of strings.
	doc := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		doc[k] = v
	}
	return schema.Validate(doc)
}
