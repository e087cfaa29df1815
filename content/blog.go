package content

import (
	"sort"

	"vitrine/models"
)

// AddBlogPost appends post with a fresh id, derived read time and, when the
// post has no publish date, a publish date of now.
func (s *Store) AddBlogPost(post models.BlogPost) models.BlogPost {
	var created models.BlogPost
	_ = s.mutate(OpAddBlogPost, func(doc *models.Document) error {
		now := s.now()
		post.ID = s.nextIDLocked(now)
		if post.PublishDate.IsZero() {
			post.PublishDate = now
		}
		if post.Status == "" {
			post.Status = models.PostDraft
		}
		post.UpdatedAt = now
		// Counted in runes: an emoji is one character, not two UTF-16 units.
		post.ReadTime = readTime(post.Content)
		post.Tags = append([]string{}, post.Tags...)
		doc.BlogPosts = append(doc.BlogPosts, post)
		created = post
		return nil
	})
	return created
}

// UpdateBlogPost merges patch into the post and recomputes the read time.
func (s *Store) UpdateBlogPost(id int64, patch models.Fields) error {
	return s.mutate(OpUpdateBlogPost, func(doc *models.Document) error {
		i := postIndex(doc, id)
		if i < 0 {
			return ErrNotFound
		}
		next, err := applyFields(doc.BlogPosts[i], patch, "id", "readTime")
		if err != nil {
			return err
		}
		next.UpdatedAt = s.now()
		next.ReadTime = readTime(next.Content)
		doc.BlogPosts[i] = next
		return nil
	})
}

func (s *Store) DeleteBlogPost(id int64) error {
	return s.mutate(OpDeleteBlogPost, func(doc *models.Document) error {
		i := postIndex(doc, id)
		if i < 0 {
			return ErrNotFound
		}
		doc.BlogPosts = append(doc.BlogPosts[:i], doc.BlogPosts[i+1:]...)
		return nil
	})
}

func (s *Store) BlogPosts() []models.BlogPost {
	var out []models.BlogPost
	s.read(func(doc *models.Document) {
		out = clonePosts(doc.BlogPosts, false)
	})
	return out
}

// PublishedPosts returns published posts, newest publish date first.
func (s *Store) PublishedPosts() []models.BlogPost {
	var out []models.BlogPost
	s.read(func(doc *models.Document) {
		out = clonePosts(doc.BlogPosts, true)
	})
	newestFirst(out)
	return out
}

// PublishedDocument returns a copy of the document without drafts. Both are
// read under one lock, so the posts always match the rest of the document.
func (s *Store) PublishedDocument() *models.Document {
	var out *models.Document
	s.read(func(doc *models.Document) {
		out = doc.Clone()
		out.BlogPosts = clonePosts(doc.BlogPosts, true)
	})
	newestFirst(out.BlogPosts)
	return out
}

func newestFirst(posts []models.BlogPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishDate.After(posts[j].PublishDate)
	})
}

func (s *Store) BlogPost(id int64) (models.BlogPost, bool) {
	var (
		out   models.BlogPost
		found bool
	)
	s.read(func(doc *models.Document) {
		if i := postIndex(doc, id); i >= 0 {
			out = doc.BlogPosts[i]
			out.Tags = append([]string{}, out.Tags...)
			found = true
		}
	})
	return out, found
}

func clonePosts(posts []models.BlogPost, publishedOnly bool) []models.BlogPost {
	out := make([]models.BlogPost, 0, len(posts))
	for _, p := range posts {
		if publishedOnly && p.Status != models.PostPublished {
			continue
		}
		p.Tags = append([]string{}, p.Tags...)
		out = append(out, p)
	}
	return out
}

func postIndex(doc *models.Document, id int64) int {
	for i, p := range doc.BlogPosts {
		if p.ID == id {
			return i
		}
	}
	return -1
}
