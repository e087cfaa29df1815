package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"vitrine/models"
)

// decodeDocument parses a serialized document, runs pending migrations and
// merges it over the defaults. A top-level key that is present replaces the
// default value for that key wholesale; absent keys keep their defaults.
func decodeDocument(data []byte) (*models.Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalidDocument)
	}

	if err := migrate(raw); err != nil {
		return nil, err
	}

	doc := Default()
	for key, value := range raw {
		var err error
		switch key {
		case "projects":
			var v []models.Project
			if err = json.Unmarshal(value, &v); err == nil {
				doc.Projects = v
			}
		case "skills":
			var v models.SkillMap
			if err = json.Unmarshal(value, &v); err == nil {
				doc.Skills = v
			}
		case "blogPosts":
			var v []models.BlogPost
			if err = json.Unmarshal(value, &v); err == nil {
				doc.BlogPosts = v
			}
		case "pages":
			var v map[string]models.Fields
			if err = json.Unmarshal(value, &v); err == nil {
				doc.Pages = v
			}
		case "navigation":
			var v []models.NavigationItem
			if err = json.Unmarshal(value, &v); err == nil {
				doc.Navigation = v
			}
		case "siteSettings":
			var v models.SiteSettings
			if err = json.Unmarshal(value, &v); err == nil {
				doc.SiteSettings = v
			}
		}
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrInvalidDocument, key, err)
		}
	}

	normalize(doc)
	doc.SchemaVersion = CurrentSchemaVersion
	return doc, nil
}

// normalize replaces null collections with empty ones so mutators never
// have to special-case them.
func normalize(doc *models.Document) {
	if doc.Projects == nil {
		doc.Projects = []models.Project{}
	}
	if doc.Skills == nil {
		doc.Skills = models.SkillMap{}
	}
	if doc.BlogPosts == nil {
		doc.BlogPosts = []models.BlogPost{}
	}
	if doc.Pages == nil {
		doc.Pages = map[string]models.Fields{}
	}
	if doc.Navigation == nil {
		doc.Navigation = []models.NavigationItem{}
	}
}

// applyFields shallow-merges patch into current: every key in patch replaces
// the matching JSON field. Keys listed in protected are ignored in any letter
// case, since decoding matches field names case-insensitively.
func applyFields[T any](current T, patch models.Fields, protected ...string) (T, error) {
	encoded, err := json.Marshal(current)
	if err != nil {
		return current, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &obj); err != nil {
		return current, err
	}

	for key, value := range patch {
		if contains(protected, key) {
			continue
		}
		b, err := json.Marshal(value)
		if err != nil {
			return current, fmt.Errorf("%w: field %s: %v", ErrInvalidPatch, key, err)
		}
		obj[key] = b
	}

	merged, err := json.Marshal(obj)
	if err != nil {
		return current, err
	}
	var next T
	if err := json.Unmarshal(merged, &next); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return current, fmt.Errorf("%w: field %s: %v", ErrInvalidPatch, typeErr.Field, err)
		}
		return current, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return next, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// readTime is one minute per thousand characters, never below one.
// Characters are runes, so text outside the BMP counts once per symbol.
func readTime(content string) int {
	minutes := int(math.Ceil(float64(utf8.RuneCountInString(content)) / 1000))
	if minutes < 1 {
		return 1
	}
	return minutes
}
