package content

import (
	"encoding/json"
	"fmt"

	"vitrine/models"
)

// UpdatePageContent shallow-merges patch into the named page, creating the
// page when it does not exist yet.
func (s *Store) UpdatePageContent(page string, patch models.Fields) {
	_ = s.mutate(OpUpdatePage, func(doc *models.Document) error {
		current := doc.Pages[page]
		if current == nil {
			current = models.Fields{}
		}
		for k, v := range patch.Clone() {
			current[k] = v
		}
		doc.Pages[page] = current
		return nil
	})
}

func (s *Store) Page(name string) (models.Fields, bool) {
	var (
		out models.Fields
		ok  bool
	)
	s.read(func(doc *models.Document) {
		var page models.Fields
		page, ok = doc.Pages[name]
		out = page.Clone()
	})
	return out, ok
}

// UpdateNavigation replaces the navigation list; order is kept as given.
func (s *Store) UpdateNavigation(items []models.NavigationItem) {
	_ = s.mutate(OpUpdateNavigation, func(doc *models.Document) error {
		doc.Navigation = append([]models.NavigationItem{}, items...)
		return nil
	})
}

func (s *Store) Navigation() []models.NavigationItem {
	var out []models.NavigationItem
	s.read(func(doc *models.Document) {
		out = append([]models.NavigationItem{}, doc.Navigation...)
	})
	return out
}

// UpdateSiteSettings shallow-merges patch into the settings. The
// customStyles and socialLinks maps are merged key by key instead of being
// replaced.
func (s *Store) UpdateSiteSettings(patch models.Fields) error {
	return s.mutate(OpUpdateSettings, func(doc *models.Document) error {
		patch = patch.Clone()
		for _, key := range []string{"customStyles", "socialLinks"} {
			value, ok := patch[key]
			if !ok || value == nil {
				continue
			}
			var current map[string]string
			if key == "customStyles" {
				current = doc.SiteSettings.CustomStyles
			} else {
				current = doc.SiteSettings.SocialLinks
			}
			merged, err := mergeStringMap(current, value)
			if err != nil {
				return fmt.Errorf("%w: field %s: %v", ErrInvalidPatch, key, err)
			}
			patch[key] = merged
		}

		next, err := applyFields(doc.SiteSettings, patch)
		if err != nil {
			return err
		}
		doc.SiteSettings = next
		return nil
	})
}

func (s *Store) SiteSettings() models.SiteSettings {
	var out models.SiteSettings
	s.read(func(doc *models.Document) {
		out = doc.SiteSettings.Clone()
	})
	return out
}

func mergeStringMap(current map[string]string, value any) (map[string]string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var incoming map[string]string
	if err := json.Unmarshal(encoded, &incoming); err != nil {
		return nil, err
	}
	merged := make(map[string]string, len(current)+len(incoming))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	return merged, nil
}
