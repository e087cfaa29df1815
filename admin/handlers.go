package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vitrine/content"
	"vitrine/models"
)

// respondError maps store errors to HTTP statuses.
func respondError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, content.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "skill category not found"})
	case errors.Is(err, content.ErrCategoryExists):
		c.JSON(http.StatusConflict, gin.H{"error": "skill category already exists"})
	case errors.Is(err, content.ErrInvalidPatch), errors.Is(err, content.ErrInvalidDocument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func bindPatch(c *gin.Context) (models.Fields, bool) {
	var patch models.Fields
	if err := c.ShouldBindJSON(&patch); err != nil || patch == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return nil, false
	}
	return patch, true
}

func (a *AdminModule) document(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.Document())
}

func (a *AdminModule) listProjects(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.Projects())
}

func (a *AdminModule) createProject(c *gin.Context) {
	var project models.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project"})
		return
	}

	c.JSON(http.StatusCreated, a.store.AddProject(project))
}

func (a *AdminModule) updateProject(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	patch, ok := bindPatch(c)
	if !ok {
		return
	}

	if err := a.store.UpdateProject(id, patch); err != nil {
		respondError(c, err, "project not found")
		return
	}

	project, _ := a.store.Project(id)
	c.JSON(http.StatusOK, project)
}

func (a *AdminModule) deleteProject(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := a.store.DeleteProject(id); err != nil {
		respondError(c, err, "project not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}

// reorderProjects replaces the project list with the posted one, which is
// how the panel persists drag-and-drop ordering.
func (a *AdminModule) reorderProjects(c *gin.Context) {
	var projects []models.Project
	if err := c.ShouldBindJSON(&projects); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a project array"})
		return
	}

	a.store.ReorderProjects(projects)
	c.JSON(http.StatusOK, a.store.Projects())
}

func (a *AdminModule) listSkills(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.Skills())
}

type categoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (a *AdminModule) createSkillCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category name is required"})
		return
	}

	if err := a.store.AddSkillCategory(req.Name, req.Icon, req.Color); err != nil {
		respondError(c, err, "skill category not found")
		return
	}

	c.JSON(http.StatusCreated, a.store.Skills()[req.Name])
}

func (a *AdminModule) deleteSkillCategory(c *gin.Context) {
	if err := a.store.DeleteSkillCategory(c.Param("category")); err != nil {
		respondError(c, err, "skill category not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "skill category deleted"})
}

func (a *AdminModule) createSkill(c *gin.Context) {
	var skill models.Skill
	if err := c.ShouldBindJSON(&skill); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid skill"})
		return
	}

	added, err := a.store.AddSkill(c.Param("category"), skill)
	if err != nil {
		respondError(c, err, "skill not found")
		return
	}

	c.JSON(http.StatusCreated, added)
}

func (a *AdminModule) updateSkill(c *gin.Context) {
	patch, ok := bindPatch(c)
	if !ok {
		return
	}

	category := c.Param("category")
	if err := a.store.UpdateSkill(category, c.Param("id"), patch); err != nil {
		respondError(c, err, "skill not found")
		return
	}

	c.JSON(http.StatusOK, a.store.Skills()[category].Items[c.Param("id")])
}

func (a *AdminModule) deleteSkill(c *gin.Context) {
	if err := a.store.DeleteSkill(c.Param("category"), c.Param("id")); err != nil {
		respondError(c, err, "skill not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "skill deleted"})
}

type positionRequest struct {
	Index *int `json:"index" binding:"required"`
}

func (a *AdminModule) moveSkill(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index is required"})
		return
	}

	category := c.Param("category")
	if err := a.store.MoveSkill(category, c.Param("id"), *req.Index); err != nil {
		respondError(c, err, "skill not found")
		return
	}

	c.JSON(http.StatusOK, a.store.Skills()[category])
}

func paramIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return 0, false
	}
	return index, true
}

func (a *AdminModule) updateSkillAt(c *gin.Context) {
	index, ok := paramIndex(c)
	if !ok {
		return
	}
	patch, ok := bindPatch(c)
	if !ok {
		return
	}

	category := c.Param("category")
	if err := a.store.UpdateSkillAt(category, index, patch); err != nil {
		respondError(c, err, "skill not found")
		return
	}

	c.JSON(http.StatusOK, a.store.Skills()[category])
}

func (a *AdminModule) deleteSkillAt(c *gin.Context) {
	index, ok := paramIndex(c)
	if !ok {
		return
	}

	if err := a.store.DeleteSkillAt(c.Param("category"), index); err != nil {
		respondError(c, err, "skill not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "skill deleted"})
}

func (a *AdminModule) listPosts(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.BlogPosts())
}

func (a *AdminModule) createPost(c *gin.Context) {
	var post models.BlogPost
	if err := c.ShouldBindJSON(&post); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid blog post"})
		return
	}

	c.JSON(http.StatusCreated, a.store.AddBlogPost(post))
}

func (a *AdminModule) updatePost(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	patch, ok := bindPatch(c)
	if !ok {
		return
	}

	if err := a.store.UpdateBlogPost(id, patch); err != nil {
		respondError(c, err, "post not found")
		return
	}

	post, _ := a.store.BlogPost(id)
	c.JSON(http.StatusOK, post)
}

func (a *AdminModule) deletePost(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := a.store.DeleteBlogPost(id); err != nil {
		respondError(c, err, "post not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

func (a *AdminModule) page(c *gin.Context) {
	page, ok := a.store.Page(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *AdminModule) updatePage(c *gin.Context) {
	patch, ok := bindPatch(c)
	if !ok {
		return
	}

	name := c.Param("name")
	a.store.UpdatePageContent(name, patch)

	page, _ := a.store.Page(name)
	c.JSON(http.StatusOK, page)
}

func (a *AdminModule) navigation(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.Navigation())
}

func (a *AdminModule) updateNavigation(c *gin.Context) {
	var items []models.NavigationItem
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a navigation array"})
		return
	}

	a.store.UpdateNavigation(items)
	c.JSON(http.StatusOK, a.store.Navigation())
}

func (a *AdminModule) settings(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.SiteSettings())
}

func (a *AdminModule) updateSettings(c *gin.Context) {
	patch, ok := bindPatch(c)
	if !ok {
		return
	}

	if err := a.store.UpdateSiteSettings(patch); err != nil {
		respondError(c, err, "settings not found")
		return
	}

	c.JSON(http.StatusOK, a.store.SiteSettings())
}
