package content

import (
	"vitrine/models"
)

// AddProject appends p with a fresh id and both timestamps set to now.
func (s *Store) AddProject(p models.Project) models.Project {
	var created models.Project
	_ = s.mutate(OpAddProject, func(doc *models.Document) error {
		now := s.now()
		p.ID = s.nextIDLocked(now)
		p.CreatedAt = now
		p.UpdatedAt = now
		p.Tech = append([]string{}, p.Tech...)
		doc.Projects = append(doc.Projects, p)
		created = p
		return nil
	})
	return created
}

// UpdateProject merges patch into the project and refreshes UpdatedAt.
// The id and createdAt fields cannot be patched.
func (s *Store) UpdateProject(id int64, patch models.Fields) error {
	return s.mutate(OpUpdateProject, func(doc *models.Document) error {
		i := projectIndex(doc, id)
		if i < 0 {
			return ErrNotFound
		}
		next, err := applyFields(doc.Projects[i], patch, "id", "createdAt")
		if err != nil {
			return err
		}
		next.UpdatedAt = s.now()
		doc.Projects[i] = next
		return nil
	})
}

func (s *Store) DeleteProject(id int64) error {
	return s.mutate(OpDeleteProject, func(doc *models.Document) error {
		i := projectIndex(doc, id)
		if i < 0 {
			return ErrNotFound
		}
		doc.Projects = append(doc.Projects[:i], doc.Projects[i+1:]...)
		return nil
	})
}

// ReorderProjects replaces the project list wholesale. Callers are
// responsible for passing every project they want to keep.
func (s *Store) ReorderProjects(projects []models.Project) {
	_ = s.mutate(OpReorderProjects, func(doc *models.Document) error {
		next := make([]models.Project, len(projects))
		for i, p := range projects {
			p.Tech = append([]string{}, p.Tech...)
			next[i] = p
		}
		doc.Projects = next
		return nil
	})
}

func (s *Store) Projects() []models.Project {
	var out []models.Project
	s.read(func(doc *models.Document) {
		out = make([]models.Project, len(doc.Projects))
		for i, p := range doc.Projects {
			p.Tech = append([]string{}, p.Tech...)
			out[i] = p
		}
	})
	return out
}

func (s *Store) Project(id int64) (models.Project, bool) {
	var (
		out   models.Project
		found bool
	)
	s.read(func(doc *models.Document) {
		if i := projectIndex(doc, id); i >= 0 {
			out = doc.Projects[i]
			out.Tech = append([]string{}, out.Tech...)
			found = true
		}
	})
	return out, found
}

func projectIndex(doc *models.Document, id int64) int {
	for i, p := range doc.Projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}
