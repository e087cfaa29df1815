package admin

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitrine/models"
)

func TestProjectLifecycle(t *testing.T) {
	router, store := setupTestAdmin(t)
	cookies := login(t, router)

	w := doRequest(router, "POST", "/admin/api/projects",
		`{"title":"Weather Station","tech":["Arduino","C++"],"status":"planning"}`, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Len(t, store.Projects(), 2)

	path := "/admin/api/projects/" + strconv.FormatInt(created.ID, 10)
	w = doRequest(router, "PATCH", path, `{"status":"completed","id":1}`, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, "Weather Station", updated.Title)

	w = doRequest(router, "DELETE", path, "", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	_, ok := store.Project(created.ID)
	assert.False(t, ok)

	w = doRequest(router, "DELETE", path, "", cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "project not found")
}

func TestUpdateProject_BadRequests(t *testing.T) {
	router, _ := setupTestAdmin(t)
	cookies := login(t, router)

	w := doRequest(router, "PATCH", "/admin/api/projects/abc", `{"title":"x"}`, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "PATCH", "/admin/api/projects/1", `["not","an","object"]`, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "PATCH", "/admin/api/projects/1", `{"title":42}`, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "PATCH", "/admin/api/projects/999", `{"title":"x"}`, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReorderProjects(t *testing.T) {
	router, store := setupTestAdmin(t)
	cookies := login(t, router)

	second := store.AddProject(models.Project{Title: "Second"})
	projects := store.Projects()
	reversed := []models.Project{projects[1], projects[0]}
	body, _ := json.Marshal(reversed)

	w := doRequest(router, "PUT", "/admin/api/projects/order", string(body), cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, second.ID, store.Projects()[0].ID)
}

func TestSkillEndpoints(t *testing.T) {
	router, store := setupTestAdmin(t)
	cookies := login(t, router)

	w := doRequest(router, "POST", "/admin/api/skills", `{"name":"Tools","icon":"wrench","color":"gray"}`, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, "POST", "/admin/api/skills", `{"name":"Tools"}`, cookies)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(router, "POST", "/admin/api/skills/Tools/skills", `{"name":"Git","level":80}`, cookies)
	require.Equal(t, http.StatusCreated, w.Code)
	var git models.Skill
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &git))
	assert.NotEmpty(t, git.ID)

	w = doRequest(router, "POST", "/admin/api/skills/Tools/skills", `{"name":"Docker","level":60}`, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, "PATCH", "/admin/api/skills/Tools/skills/"+git.ID, `{"level":90}`, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 90, store.Skills()["Tools"].Items[git.ID].Level)

	w = doRequest(router, "PUT", "/admin/api/skills/Tools/skills/"+git.ID+"/position", `{"index":1}`, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Git", store.Skills()["Tools"].Skills()[1].Name)

	w = doRequest(router, "PUT", "/admin/api/skills/Tools/skills/"+git.ID+"/position", `{}`, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "PATCH", "/admin/api/skills/Tools/index/0", `{"learning":true}`, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, store.Skills()["Tools"].Skills()[0].Learning)

	w = doRequest(router, "PATCH", "/admin/api/skills/Tools/index/9", `{"level":1}`, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, "DELETE", "/admin/api/skills/Tools/index/0", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.Skill{store.Skills()["Tools"].Items[git.ID]}, store.Skills()["Tools"].Skills())

	w = doRequest(router, "DELETE", "/admin/api/skills/Tools/skills/"+git.ID, "", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.Skills()["Tools"].Skills())

	w = doRequest(router, "POST", "/admin/api/skills/Missing/skills", `{"name":"x"}`, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "skill category not found")

	w = doRequest(router, "DELETE", "/admin/api/skills/Tools", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, store.Skills(), "Tools")
}

func TestBlogEndpoints(t *testing.T) {
	router, store := setupTestAdmin(t)
	cookies := login(t, router)

	w := doRequest(router, "POST", "/admin/api/blog", `{"title":"Hello","content":"Some text"}`, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	var post models.BlogPost
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	assert.Equal(t, models.PostDraft, post.Status)
	assert.Equal(t, 1, post.ReadTime)

	path := "/admin/api/blog/" + strconv.FormatInt(post.ID, 10)
	w = doRequest(router, "PATCH", path, `{"status":"published"}`, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	got, _ := store.BlogPost(post.ID)
	assert.Equal(t, models.PostPublished, got.Status)

	w = doRequest(router, "GET", "/admin/api/blog", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	var posts []models.BlogPost
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	assert.Len(t, posts, 2)

	w = doRequest(router, "DELETE", path, "", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(router, "PATCH", path, `{"title":"gone"}`, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "post not found")
}

func TestPageEndpoints(t *testing.T) {
	router, store := setupTestAdmin(t)
	cookies := login(t, router)

	w := doRequest(router, "PATCH", "/admin/api/pages/home", `{"heroTitle":"Welcome"}`, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	home, ok := store.Page("home")
	require.True(t, ok)
	assert.Equal(t, "Welcome", home["heroTitle"])
	assert.Equal(t, "See my work", home["ctaText"])

	w = doRequest(router, "GET", "/admin/api/pages/uses", "", cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, "PATCH", "/admin/api/pages/uses", `{"title":"Uses"}`, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(router, "GET", "/admin/api/pages/uses", "", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"Uses"}`, w.Body.String())
}

func TestNavigationEndpoint(t *testing.T) {
	router, store := setupTestAdmin(t)
	cookies := login(t, router)

	w := doRequest(router, "PUT", "/admin/api/navigation",
		`[{"id":2,"label":"Work","path":"/work","active":true},{"id":1,"label":"Home","path":"/","active":false}]`, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	nav := store.Navigation()
	require.Len(t, nav, 2)
	assert.Equal(t, "Work", nav[0].Label)
	assert.False(t, nav[1].Active)

	w = doRequest(router, "PUT", "/admin/api/navigation", `{"id":1}`, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsEndpoint(t *testing.T) {
	router, store := setupTestAdmin(t)
	cookies := login(t, router)

	w := doRequest(router, "PATCH", "/admin/api/settings",
		`{"siteName":"Ana's Lab","socialLinks":{"github":"https://github.com/ana"}}`, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	settings := store.SiteSettings()
	assert.Equal(t, "Ana's Lab", settings.SiteName)
	assert.Equal(t, "https://github.com/ana", settings.SocialLinks["github"])
	assert.Contains(t, settings.SocialLinks, "linkedin")
	assert.Equal(t, "Building, learning, sharing", settings.Tagline)
}

func TestDocumentEndpoint_IncludesDrafts(t *testing.T) {
	router, store := setupTestAdmin(t)
	cookies := login(t, router)
	store.AddBlogPost(models.BlogPost{Title: "Draft"})

	w := doRequest(router, "GET", "/admin/api/content", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var doc models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Len(t, doc.BlogPosts, 2)
}
