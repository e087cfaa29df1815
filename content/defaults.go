package content

import (
	"time"

	"vitrine/models"
)

// DefaultKey is the key the document is persisted under.
const DefaultKey = "portfolio-content"

var seedTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Default returns a fresh copy of the built-in document. Loaded and imported
// documents are merged over it key by key.
func Default() *models.Document {
	skills := models.SkillMap{}
	skills.Put("Frontend", models.NewSkillCategory("code", "#3b82f6",
		models.Skill{ID: "frontend-react", Name: "React", Level: 85, Experience: "3 years", Projects: 12, Learning: false},
		models.Skill{ID: "frontend-typescript", Name: "TypeScript", Level: 75, Experience: "2 years", Projects: 8, Learning: true},
		models.Skill{ID: "frontend-css", Name: "CSS", Level: 80, Experience: "4 years", Projects: 15, Learning: false},
	))
	skills.Put("Backend", models.NewSkillCategory("server", "#10b981",
		models.Skill{ID: "backend-go", Name: "Go", Level: 70, Experience: "2 years", Projects: 6, Learning: true},
		models.Skill{ID: "backend-node", Name: "Node.js", Level: 75, Experience: "3 years", Projects: 9, Learning: false},
	))
	skills.Put("Hardware", models.NewSkillCategory("cpu", "#f59e0b",
		models.Skill{ID: "hardware-arduino", Name: "Arduino", Level: 65, Experience: "2 years", Projects: 5, Learning: true},
	))

	return &models.Document{
		SchemaVersion: CurrentSchemaVersion,
		Projects: []models.Project{
			{
				ID:           1,
				Title:        "Portfolio Website",
				Description:  "Personal portfolio and knowledge hub with a built-in content editor.",
				Tech:         []string{"React", "Tailwind CSS", "Go"},
				Category:     "Web",
				Status:       models.StatusInProgress,
				Featured:     true,
				Image:        "/images/projects/portfolio.png",
				DemoURL:      "",
				GithubURL:    "",
				Content:      "A single-page portfolio with projects, skills and a blog.",
				LearningNote: "Learned how to keep one content document editable from an admin panel.",
				Metrics:      models.Metrics{Stars: 0, Forks: 0, Views: 0},
				CreatedAt:    seedTime,
				UpdatedAt:    seedTime,
			},
		},
		Skills: skills,
		BlogPosts: []models.BlogPost{
			{
				ID:            1,
				Title:         "Welcome to the knowledge hub",
				Content:       "This is where tutorials and notes about my projects live.",
				Excerpt:       "Tutorials and notes about my projects.",
				FeaturedImage: "",
				Tags:          []string{"meta"},
				Category:      "General",
				Status:        models.PostPublished,
				Featured:      true,
				Author:        "Admin",
				PublishDate:   seedTime,
				UpdatedAt:     seedTime,
				ReadTime:      1,
			},
		},
		Pages: map[string]models.Fields{
			"home": {
				"heroTitle":    "Hi, I build things",
				"heroSubtitle": "Software, hardware and everything in between.",
				"ctaText":      "See my work",
			},
			"about": {
				"title":   "About me",
				"content": "Developer and maker.",
			},
			"contact": {
				"title":       "Get in touch",
				"description": "Send me a message and I will get back to you.",
				"email":       "hello@example.com",
			},
		},
		Navigation: []models.NavigationItem{
			{ID: 1, Label: "Home", Path: "/", Active: true},
			{ID: 2, Label: "Projects", Path: "/projects", Active: true},
			{ID: 3, Label: "Skills", Path: "/skills", Active: true},
			{ID: 4, Label: "Blog", Path: "/blog", Active: true},
			{ID: 5, Label: "Contact", Path: "/contact", Active: true},
		},
		SiteSettings: models.SiteSettings{
			SiteName:       "My Portfolio",
			Tagline:        "Building, learning, sharing",
			Description:    "Projects, skills and tutorials.",
			Author:         "Admin",
			Email:          "hello@example.com",
			PrimaryColor:   "#3b82f6",
			SecondaryColor: "#10b981",
			Logo:           "",
			Favicon:        "/favicon.ico",
			SocialLinks: map[string]string{
				"github":   "",
				"linkedin": "",
			},
			CustomStyles: map[string]string{},
		},
	}
}
