package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/campuswellness/audit"
	mw "github.com/kasuganosora/campuswellness/middleware"
	"github.com/kasuganosora/campuswellness/wellness/challenge"
)

// ChallengeHandler serves the catalog and the caller's memberships.
type ChallengeHandler struct {
	catalog *challenge.Catalog
	svc     *challenge.Service
	audit   audit.Auditor
}

// NewChallengeHandler creates a ChallengeHandler.
func NewChallengeHandler(catalog *challenge.Catalog, svc *challenge.Service, a audit.Auditor) *ChallengeHandler {
	if a == nil {
		a = audit.Nop{}
	}
	return &ChallengeHandler{catalog: catalog, svc: svc, audit: a}
}

// List handles GET /api/challenges.
func (h *ChallengeHandler) List(c *gin.Context) {
	list, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Active handles GET /api/challenges/active.
func (h *ChallengeHandler) Active(c *gin.Context) {
	list, err := h.svc.ListActive(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Mine handles GET /api/challenges/user.
func (h *ChallengeHandler) Mine(c *gin.Context) {
	list, err := h.svc.ListForUser(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Join handles POST /api/challenges/join/:challengeId.
func (h *ChallengeHandler) Join(c *gin.Context) {
	start := time.Now()
	challengeID, ok := paramID(c, "challengeId")
	if !ok {
		return
	}
	userID := mw.GetUserID(c)

	m, err := h.svc.Join(c.Request.Context(), userID, challengeID)
	entry := audit.Entry{
		TraceID: mw.GetTraceID(c),
		UserID:  userID,
		Action:  audit.ActionChallengeJoin,
		Request: gin.H{"challenge_id": challengeID},
		IP:      c.ClientIP(),
	}
	if err != nil {
		entry.Error = err.Error()
		entry.DurationMs = int(time.Since(start).Milliseconds())
		h.audit.Log(entry)
		respondError(c, err)
		return
	}
	entry.Response = m
	entry.DurationMs = int(time.Since(start).Milliseconds())
	h.audit.Log(entry)
	c.JSON(http.StatusCreated, m)
}

type progressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}

// UpdateProgress handles PUT /api/challenges/progress/:challengeId.
func (h *ChallengeHandler) UpdateProgress(c *gin.Context) {
	start := time.Now()
	challengeID, ok := paramID(c, "challengeId")
	if !ok {
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	userID := mw.GetUserID(c)

	m, err := h.svc.UpdateProgress(c.Request.Context(), userID, challengeID, *req.Progress)
	entry := audit.Entry{
		TraceID: mw.GetTraceID(c),
		UserID:  userID,
		Action:  audit.ActionChallengeProgress,
		Request: gin.H{"challenge_id": challengeID, "progress": *req.Progress},
		IP:      c.ClientIP(),
	}
	if err != nil {
		entry.Error = err.Error()
		entry.DurationMs = int(time.Since(start).Milliseconds())
		h.audit.Log(entry)
		respondError(c, err)
		return
	}
	entry.Response = m
	entry.DurationMs = int(time.Since(start).Milliseconds())
	h.audit.Log(entry)
	c.JSON(http.StatusOK, m)
}
