package content

import "vitrine/models"

// AddSkillCategory creates an empty category.
func (s *Store) AddSkillCategory(name, icon, color string) error {
	return s.mutate(OpAddCategory, func(doc *models.Document) error {
		if _, ok := doc.Skills[name]; ok {
			return ErrCategoryExists
		}
		doc.Skills.Put(name, models.NewSkillCategory(icon, color))
		return nil
	})
}

func (s *Store) DeleteSkillCategory(name string) error {
	return s.mutate(OpDeleteCategory, func(doc *models.Document) error {
		if _, ok := doc.Skills[name]; !ok {
			return ErrCategoryNotFound
		}
		doc.Skills.Remove(name)
		return nil
	})
}

// AddSkill appends skill to an existing category. A skill without an id gets
// a generated one, as does one whose id is already taken in the category.
func (s *Store) AddSkill(category string, skill models.Skill) (models.Skill, error) {
	var added models.Skill
	err := s.mutate(OpAddSkill, func(doc *models.Document) error {
		cat, ok := doc.Skills[category]
		if !ok {
			return ErrCategoryNotFound
		}
		added = cat.Append(skill)
		doc.Skills[category] = cat
		return nil
	})
	return added, err
}

// UpdateSkill merges patch into the skill with the given id.
func (s *Store) UpdateSkill(category, id string, patch models.Fields) error {
	return s.mutate(OpUpdateSkill, func(doc *models.Document) error {
		cat, ok := doc.Skills[category]
		if !ok {
			return ErrCategoryNotFound
		}
		current, ok := cat.Items[id]
		if !ok {
			return ErrNotFound
		}
		next, err := applyFields(current, patch, "id")
		if err != nil {
			return err
		}
		cat.Items[id] = next
		doc.Skills[category] = cat
		return nil
	})
}

// UpdateSkillAt addresses the skill by its display position.
func (s *Store) UpdateSkillAt(category string, index int, patch models.Fields) error {
	id, err := s.skillIDAt(category, index)
	if err != nil {
		return err
	}
	return s.UpdateSkill(category, id, patch)
}

func (s *Store) DeleteSkill(category, id string) error {
	return s.mutate(OpDeleteSkill, func(doc *models.Document) error {
		cat, ok := doc.Skills[category]
		if !ok {
			return ErrCategoryNotFound
		}
		if _, ok := cat.Items[id]; !ok {
			return ErrNotFound
		}
		delete(cat.Items, id)
		cat.Order = removeString(cat.Order, id)
		doc.Skills[category] = cat
		return nil
	})
}

// DeleteSkillAt addresses the skill by its display position.
func (s *Store) DeleteSkillAt(category string, index int) error {
	id, err := s.skillIDAt(category, index)
	if err != nil {
		return err
	}
	return s.DeleteSkill(category, id)
}

// MoveSkill moves the skill to position index, clamped to the list bounds.
func (s *Store) MoveSkill(category, id string, index int) error {
	return s.mutate(OpMoveSkill, func(doc *models.Document) error {
		cat, ok := doc.Skills[category]
		if !ok {
			return ErrCategoryNotFound
		}
		if _, ok := cat.Items[id]; !ok {
			return ErrNotFound
		}
		order := removeString(cat.Order, id)
		if index < 0 {
			index = 0
		}
		if index > len(order) {
			index = len(order)
		}
		order = append(order[:index], append([]string{id}, order[index:]...)...)
		cat.Order = order
		doc.Skills[category] = cat
		return nil
	})
}

// Skills returns a copy of every category.
func (s *Store) Skills() models.SkillMap {
	var out models.SkillMap
	s.read(func(doc *models.Document) {
		out = doc.Skills.Clone()
	})
	return out
}

func (s *Store) skillIDAt(category string, index int) (string, error) {
	var (
		id  string
		err error
	)
	s.read(func(doc *models.Document) {
		cat, ok := doc.Skills[category]
		if !ok {
			err = ErrCategoryNotFound
			return
		}
		if index < 0 || index >= len(cat.Order) {
			err = ErrNotFound
			return
		}
		id = cat.Order[index]
	})
	return id, err
}

func removeString(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
