package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Fields is a free-form JSON object used for page content and partial updates.
type Fields map[string]any

type ProjectStatus string

const (
	StatusPlanning   ProjectStatus = "planning"
	StatusInProgress ProjectStatus = "in-progress"
	StatusCompleted  ProjectStatus = "completed"
	StatusPaused     ProjectStatus = "paused"
)

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

type Metrics struct {
	Stars int `json:"stars"`
	Forks int `json:"forks"`
	Views int `json:"views"`
}

type Project struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Tech         []string      `json:"tech"`
	Category     string        `json:"category"`
	Status       ProjectStatus `json:"status"`
	Featured     bool          `json:"featured"`
	Image        string        `json:"image"`
	DemoURL      string        `json:"demoUrl"`
	GithubURL    string        `json:"githubUrl"`
	Content      string        `json:"content"`
	LearningNote string        `json:"learningNote"`
	Metrics      Metrics       `json:"metrics"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type Skill struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Level      int    `json:"level"` // 0-100
	Experience string `json:"experience"`
	Projects   int    `json:"projects"`
	Learning   bool   `json:"learning"`
}

// SkillCategory keeps its skills keyed by id with a separate display order.
// On the wire the skills are written as an ordered array.
type SkillCategory struct {
	Icon     string
	Color    string
	Order    []string
	Items    map[string]Skill
	Position int
}

type skillCategoryJSON struct {
	Icon   string  `json:"icon"`
	Color  string  `json:"color"`
	Skills []Skill `json:"skills"`
}

func NewSkillCategory(icon, color string, skills ...Skill) SkillCategory {
	cat := SkillCategory{Icon: icon, Color: color, Order: []string{}, Items: map[string]Skill{}}
	for _, s := range skills {
		cat.Append(s)
	}
	return cat
}

// Append adds a skill at the end of the category. A skill without an id, or
// with one already used in the category, gets a fresh id.
func (c *SkillCategory) Append(s Skill) Skill {
	if c.Items == nil {
		c.Items = map[string]Skill{}
	}
	if _, taken := c.Items[s.ID]; s.ID == "" || taken {
		s.ID = uuid.NewString()
	}
	c.Order = append(c.Order, s.ID)
	c.Items[s.ID] = s
	return s
}

// Skills returns the category's skills in display order.
func (c SkillCategory) Skills() []Skill {
	out := make([]Skill, 0, len(c.Order))
	for _, id := range c.Order {
		if s, ok := c.Items[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (c SkillCategory) Clone() SkillCategory {
	out := SkillCategory{
		Icon:     c.Icon,
		Color:    c.Color,
		Order:    append([]string{}, c.Order...),
		Items:    make(map[string]Skill, len(c.Items)),
		Position: c.Position,
	}
	for id, s := range c.Items {
		out.Items[id] = s
	}
	return out
}

func (c SkillCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(skillCategoryJSON{Icon: c.Icon, Color: c.Color, Skills: c.Skills()})
}

func (c *SkillCategory) UnmarshalJSON(data []byte) error {
	var raw skillCategoryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = NewSkillCategory(raw.Icon, raw.Color, raw.Skills...)
	return nil
}

// SkillMap holds the skill categories by name. Categories keep the order in
// which they were added, and are written as a JSON object in that order.
type SkillMap map[string]SkillCategory

// Names returns the category names in display order.
func (m SkillMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		pi, pj := m[names[i]].Position, m[names[j]].Position
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})
	return names
}

// Put adds cat after the existing categories, or replaces a category of the
// same name in place.
func (m SkillMap) Put(name string, cat SkillCategory) {
	if old, ok := m[name]; ok {
		cat.Position = old.Position
	} else {
		cat.Position = len(m)
	}
	m[name] = cat
}

// Remove deletes a category and closes the gap it leaves in the order.
func (m SkillMap) Remove(name string) {
	if _, ok := m[name]; !ok {
		return
	}
	delete(m, name)
	for i, n := range m.Names() {
		cat := m[n]
		cat.Position = i
		m[n] = cat
	}
}

func (m SkillMap) Clone() SkillMap {
	out := make(SkillMap, len(m))
	for name, cat := range m {
		out[name] = cat.Clone()
	}
	return out
}

func (m SkillMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the categories in the order they appear in data.
func (m *SkillMap) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("skills: expected object, got %v", tok)
	}

	out := SkillMap{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("skills: unexpected key %v", tok)
		}
		var cat SkillCategory
		if err := dec.Decode(&cat); err != nil {
			return fmt.Errorf("skills: category %s: %w", name, err)
		}
		out.Put(name, cat)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

type BlogPost struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	FeaturedImage string     `json:"featuredImage"`
	Tags          []string   `json:"tags"`
	Category      string     `json:"category"`
	Status        PostStatus `json:"status"`
	Featured      bool       `json:"featured"`
	Author        string     `json:"author"`
	PublishDate   time.Time  `json:"publishDate"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	ReadTime      int        `json:"readTime"`
}

type NavigationItem struct {
	ID     int    `json:"id"`
	Label  string `json:"label"`
	Path   string `json:"path"`
	Active bool   `json:"active"`
}

type SiteSettings struct {
	SiteName       string            `json:"siteName"`
	Tagline        string            `json:"tagline"`
	Description    string            `json:"description"`
	Author         string            `json:"author"`
	Email          string            `json:"email"`
	PrimaryColor   string            `json:"primaryColor"`
	SecondaryColor string            `json:"secondaryColor"`
	Logo           string            `json:"logo"`
	Favicon        string            `json:"favicon"`
	SocialLinks    map[string]string `json:"socialLinks"`
	CustomStyles   map[string]string `json:"customStyles"`
}

func (s SiteSettings) Clone() SiteSettings {
	out := s
	out.SocialLinks = cloneStrings(s.SocialLinks)
	out.CustomStyles = cloneStrings(s.CustomStyles)
	return out
}

// Document is the single aggregate holding all editable site content.
type Document struct {
	SchemaVersion int               `json:"schemaVersion"`
	Projects      []Project         `json:"projects"`
	Skills        SkillMap          `json:"skills"`
	BlogPosts     []BlogPost        `json:"blogPosts"`
	Pages         map[string]Fields `json:"pages"`
	Navigation    []NavigationItem  `json:"navigation"`
	SiteSettings  SiteSettings      `json:"siteSettings"`
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		SchemaVersion: d.SchemaVersion,
		Projects:      make([]Project, len(d.Projects)),
		Skills:        d.Skills.Clone(),
		BlogPosts:     make([]BlogPost, len(d.BlogPosts)),
		Pages:         make(map[string]Fields, len(d.Pages)),
		Navigation:    append([]NavigationItem{}, d.Navigation...),
		SiteSettings:  d.SiteSettings.Clone(),
	}
	for i, p := range d.Projects {
		p.Tech = append([]string{}, p.Tech...)
		out.Projects[i] = p
	}
	for i, p := range d.BlogPosts {
		p.Tags = append([]string{}, p.Tags...)
		out.BlogPosts[i] = p
	}
	for name, page := range d.Pages {
		out.Pages[name] = page.Clone()
	}
	return out
}

// Clone deep-copies nested objects and arrays; scalar values are shared.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Fields(t).Clone())
	case Fields:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func cloneStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
