package rest

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	mw "github.com/kasuganosora/campuswellness/middleware"
	"github.com/kasuganosora/campuswellness/model"
	"github.com/kasuganosora/campuswellness/wellness/insights"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatsHandler serves computed insights and report downloads.
type StatsHandler struct {
	db       *gorm.DB
	insights *insights.Service
	logger   *zap.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(db *gorm.DB, in *insights.Service, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{db: db, insights: in, logger: logger}
}

func periodParam(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("period", strconv.Itoa(insights.DefaultPeriod))
	days, err := strconv.Atoi(raw)
	if err != nil || !insights.ValidPeriod(days) {
		abort(c, http.StatusBadRequest, insights.ErrInvalidPeriod.Error())
		return 0, false
	}
	return days, true
}

// Stats handles GET /api/stats?period=7|30|90.
func (h *StatsHandler) Stats(c *gin.Context) {
	days, ok := periodParam(c)
	if !ok {
		return
	}
	st, err := h.insights.Stats(c.Request.Context(), mw.GetUserID(c), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Report handles GET /api/stats/report?format=json|pdf&period=.
func (h *StatsHandler) Report(c *gin.Context) {
	days, ok := periodParam(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "pdf" {
		abort(c, http.StatusBadRequest, "format must be json or pdf")
		return
	}

	userID := mw.GetUserID(c)
	var user model.User
	if err := h.db.WithContext(c.Request.Context()).Select("id", "username").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abort(c, http.StatusNotFound, "User not found")
			return
		}
		respondError(c, err)
		return
	}

	report, err := h.insights.BuildReport(c.Request.Context(), userID, user.Username, days)
	if err != nil {
		respondError(c, err)
		return
	}

	name := report.FileName(format)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	if format == "json" {
		c.IndentedJSON(http.StatusOK, report)
		return
	}

	var buf bytes.Buffer
	if err := insights.RenderPDF(&buf, report); err != nil {
		h.logger.Error("render report", zap.Int64("user_id", userID), zap.Error(err))
		abort(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
