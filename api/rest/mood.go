package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	mw "github.com/kasuganosora/campuswellness/middleware"
	"github.com/kasuganosora/campuswellness/model"
	"github.com/kasuganosora/campuswellness/wellness/insights"
	"gorm.io/gorm"
)

// MoodHandler handles mood check-ins.
type MoodHandler struct {
	db       *gorm.DB
	insights *insights.Service
}

// NewMoodHandler creates a MoodHandler.
func NewMoodHandler(db *gorm.DB, in *insights.Service) *MoodHandler {
	return &MoodHandler{db: db, insights: in}
}

type moodRequest struct {
	MoodLevel   int    `json:"mood_level" binding:"required,min=1,max=5"`
	StressLevel int    `json:"stress_level" binding:"required,min=1,max=5"`
	Notes       string `json:"notes" binding:"max=2000"`
}

// List handles GET /api/mood, newest first.
func (h *MoodHandler) List(c *gin.Context) {
	out := []model.MoodEntry{}
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

// Create handles POST /api/mood.
func (h *MoodHandler) Create(c *gin.Context) {
	var req moodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	entry := model.MoodEntry{
		UserID:      mw.GetUserID(c),
		MoodLevel:   req.MoodLevel,
		StressLevel: req.StressLevel,
		Notes:       req.Notes,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&entry).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Weekly handles GET /api/mood/weekly.
func (h *MoodHandler) Weekly(c *gin.Context) {
	out, err := h.insights.WeeklyMood(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
