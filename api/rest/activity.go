package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	mw "github.com/kasuganosora/campuswellness/middleware"
	"github.com/kasuganosora/campuswellness/model"
	"github.com/kasuganosora/campuswellness/wellness/insights"
	"gorm.io/gorm"
)

// ActivityHandler handles activity logging.
type ActivityHandler struct {
	db       *gorm.DB
	insights *insights.Service
}

// NewActivityHandler creates an ActivityHandler.
func NewActivityHandler(db *gorm.DB, in *insights.Service) *ActivityHandler {
	return &ActivityHandler{db: db, insights: in}
}

type activityRequest struct {
	Name  string  `json:"name" binding:"required,max=255"`
	Hours float64 `json:"hours" binding:"required,gt=0,lt=100"`
	Mood  int     `json:"mood" binding:"required,min=1,max=5"`
	Notes string  `json:"notes" binding:"max=2000"`
}

// List handles GET /api/activities, newest first.
func (h *ActivityHandler) List(c *gin.Context) {
	out := []model.Activity{}
	err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", mw.GetUserID(c)).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /api/activities.
func (h *ActivityHandler) Create(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		abort(c, http.StatusBadRequest, "name is required")
		return
	}
	act := model.Activity{
		UserID: mw.GetUserID(c),
		Name:   name,
		Hours:  req.Hours,
		Mood:   req.Mood,
		Notes:  req.Notes,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&act).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, act)
}

// Summary handles GET /api/activities/summary.
func (h *ActivityHandler) Summary(c *gin.Context) {
	out, err := h.insights.ActivitySummary(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
