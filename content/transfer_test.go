package content

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitrine/kv"
	"vitrine/models"
)

func TestExport_IsIndentedJSON(t *testing.T) {
	store := newTestStore(t, nil)

	data, err := store.Export()
	require.NoError(t, err)

	assert.Contains(t, string(data), "\n  \"projects\": [")
	assert.True(t, json.Valid(data))
}

func TestExportImport_RoundTrip(t *testing.T) {
	source := newTestStore(t, nil)
	source.AddProject(models.Project{Title: "Round", Tech: []string{"Go"}})
	source.AddBlogPost(models.BlogPost{Title: "Trip", Content: "body", Tags: []string{"x"}})
	source.UpdatePageContent("home", models.Fields{"heroTitle": "Exported"})
	_, err := source.AddSkill("Hardware", models.Skill{Name: "KiCad", Level: 40})
	require.NoError(t, err)

	data, err := source.Export()
	require.NoError(t, err)

	target := newTestStore(t, nil)
	require.NoError(t, target.Import(data))

	assert.Equal(t, source.Document(), target.Document())
}

func TestExportImport_PreservesNavigationOrder(t *testing.T) {
	source := newTestStore(t, nil)
	data, err := source.Export()
	require.NoError(t, err)

	target := newTestStore(t, nil)
	target.UpdateNavigation(nil)
	require.NoError(t, target.Import(data))

	var labels []string
	for _, item := range target.Navigation() {
		labels = append(labels, item.Label)
	}
	assert.Equal(t, []string{"Home", "Projects", "Skills", "Blog", "Contact"}, labels)
}

func TestImport_DuplicateSkillIDsKeepBothSkills(t *testing.T) {
	store := newTestStore(t, nil)

	err := store.Import([]byte(`{"schemaVersion":1,"skills":{"X":{"skills":[{"id":"a","name":"A"},{"id":"a","name":"B"}]}}}`))
	require.NoError(t, err)

	skills := store.Skills()["X"].Skills()
	require.Len(t, skills, 2)
	assert.Equal(t, "a", skills[0].ID)
	assert.Equal(t, "A", skills[0].Name)
	assert.Equal(t, "B", skills[1].Name)
	assert.NotEqual(t, skills[0].ID, skills[1].ID)

	data, err := store.Export()
	require.NoError(t, err)
	target := newTestStore(t, nil)
	require.NoError(t, target.Import(data))
	assert.Equal(t, store.Skills(), target.Skills())
}

func TestExportImport_PreservesSkillCategoryOrder(t *testing.T) {
	store := newTestStore(t, nil)
	require.NoError(t, store.AddSkillCategory("Design", "pen", "#ec4899"))
	require.NoError(t, store.DeleteSkillCategory("Backend"))

	want := []string{"Frontend", "Hardware", "Design"}
	assert.Equal(t, want, store.Skills().Names())

	data, err := store.Export()
	require.NoError(t, err)
	frontend := bytes.Index(data, []byte(`"Frontend"`))
	hardware := bytes.Index(data, []byte(`"Hardware"`))
	design := bytes.Index(data, []byte(`"Design"`))
	assert.True(t, frontend < hardware && hardware < design, string(data))

	target := newTestStore(t, nil)
	require.NoError(t, target.Import(data))
	assert.Equal(t, want, target.Skills().Names())
}

func TestImport_InvalidJSONLeavesDocument(t *testing.T) {
	store := newTestStore(t, nil)
	store.AddProject(models.Project{Title: "Keep me"})
	before := store.Document()
	revision := store.Revision()

	for _, input := range []string{"{broken", "[]", "null", `"text"`, `{"projects":"nope"}`} {
		err := store.Import([]byte(input))
		assert.ErrorIs(t, err, ErrInvalidDocument, input)
	}

	assert.Equal(t, before, store.Document())
	assert.Equal(t, revision, store.Revision())
}

func TestImport_PartialDocumentMergesOverDefaults(t *testing.T) {
	store := newTestStore(t, nil)
	store.AddProject(models.Project{Title: "Dropped by import"})

	require.NoError(t, store.Import([]byte(`{"siteSettings":{"siteName":"Imported"}}`)))

	doc := store.Document()
	assert.Equal(t, "Imported", doc.SiteSettings.SiteName)
	// the whole settings record was replaced, not merged field by field
	assert.Empty(t, doc.SiteSettings.Tagline)
	assert.Equal(t, Default().Projects, doc.Projects)
}

func TestImport_NewIDsStayFresh(t *testing.T) {
	store := newTestStore(t, nil)
	far := `{"projects":[{"id":9999999999999,"title":"Future"}]}`
	require.NoError(t, store.Import([]byte(far)))

	created := store.AddProject(models.Project{Title: "After import"})

	assert.Greater(t, created.ID, int64(9999999999999))
}

func TestReset_IsIdempotentAndClearsPersistedCopy(t *testing.T) {
	backend := kv.NewMemory()
	store := newTestStore(t, backend)
	store.AddProject(models.Project{Title: "Temporary"})

	store.Reset()
	first := store.Document()
	store.Reset()
	second := store.Document()

	assert.Equal(t, Default(), first)
	assert.Equal(t, first, second)
	_, err := backend.Get(context.Background(), DefaultKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}
