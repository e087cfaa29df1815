package content

import (
	"encoding/json"
	"fmt"

	"vitrine/models"
)

// CurrentSchemaVersion is written into every document the store produces.
const CurrentSchemaVersion = 1

type migration struct {
	from  int
	name  string
	apply func(raw map[string]json.RawMessage) error
}

// migrations are applied in order to documents older than CurrentSchemaVersion.
var migrations = []migration{
	{from: 0, name: "assign skill ids", apply: assignSkillIDs},
}

func migrate(raw map[string]json.RawMessage) error {
	version := 0
	if v, ok := raw["schemaVersion"]; ok {
		if err := json.Unmarshal(v, &version); err != nil {
			return fmt.Errorf("%w: schemaVersion: %v", ErrInvalidDocument, err)
		}
	}
	if version > CurrentSchemaVersion {
		return fmt.Errorf("%w: schema version %d is newer than %d", ErrInvalidDocument, version, CurrentSchemaVersion)
	}

	for _, m := range migrations {
		if m.from < version {
			continue
		}
		if err := m.apply(raw); err != nil {
			return fmt.Errorf("%w: migration %q: %v", ErrInvalidDocument, m.name, err)
		}
		version = m.from + 1
	}

	encoded, _ := json.Marshal(version)
	raw["schemaVersion"] = encoded
	return nil
}

// assignSkillIDs gives every skill written before skills had ids a stable one.
// Legacy documents addressed skills by array position only. Decoding into
// SkillMap issues the ids and keeps the category order.
func assignSkillIDs(raw map[string]json.RawMessage) error {
	skillsRaw, ok := raw["skills"]
	if !ok {
		return nil
	}

	var categories models.SkillMap
	if err := json.Unmarshal(skillsRaw, &categories); err != nil {
		return err
	}
	if categories == nil {
		return nil
	}

	encoded, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	raw["skills"] = encoded
	return nil
}
