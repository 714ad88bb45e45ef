package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/campuswellness/wellness/resource"
)

// ResourceHandler serves the campus resource directory.
type ResourceHandler struct {
	dir *resource.Directory
}

// NewResourceHandler creates a ResourceHandler.
func NewResourceHandler(dir *resource.Directory) *ResourceHandler {
	return &ResourceHandler{dir: dir}
}

// List handles GET /api/resources.
func (h *ResourceHandler) List(c *gin.Context) {
	out, err := h.dir.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ByCategory handles GET /api/resources/category/:category.
func (h *ResourceHandler) ByCategory(c *gin.Context) {
	out, err := h.dir.ByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Search handles GET /api/resources/search?query=.
func (h *ResourceHandler) Search(c *gin.Context) {
	out, err := h.dir.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
