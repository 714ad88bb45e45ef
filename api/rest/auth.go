package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/campuswellness/audit"
	"github.com/kasuganosora/campuswellness/cache"
	"github.com/kasuganosora/campuswellness/config"
	dbadapter "github.com/kasuganosora/campuswellness/db"
	mw "github.com/kasuganosora/campuswellness/middleware"
	"github.com/kasuganosora/campuswellness/model"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler handles authentication REST endpoints.
type AuthHandler struct {
	db     *gorm.DB
	cache  cache.Cache
	sec    config.SecurityConfig
	audit  audit.Auditor
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, c cache.Cache, sec config.SecurityConfig, a audit.Auditor, logger *zap.Logger) *AuthHandler {
	if a == nil {
		a = audit.Nop{}
	}
	return &AuthHandler{db: db, cache: c, sec: sec, audit: a, logger: logger}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=2,max=32"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required_without=Email"`
	Email    string `json:"email" binding:"required_without=Username"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) bcryptCost() int {
	if h.sec.BcryptCost < bcrypt.MinCost || h.sec.BcryptCost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return h.sec.BcryptCost
}

// issueSession signs a token and stores its session key for the token's lifetime.
func (h *AuthHandler) issueSession(ctx context.Context, userID int64) (string, error) {
	token, err := mw.GenerateToken(userID, h.sec.JWTSecret, h.sec.JWTTTLH)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.cache.Set(ctx, mw.SessionKey(token), strconv.FormatInt(userID, 10), h.sec.JWTTTLH); err != nil {
		return "", err
	}
	return token, nil
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost())
	if err != nil {
		abort(c, http.StatusInternalServerError, "internal error")
		return
	}
	user := model.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if dbadapter.IsUniqueViolation(err) {
			abort(c, http.StatusConflict, "Username or email already registered")
			return
		}
		abort(c, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := h.issueSession(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("session issue failed", zap.Int64("user_id", user.ID), zap.Error(err))
		abort(c, http.StatusInternalServerError, "could not start session")
		return
	}
	h.audit.Log(audit.Entry{
		TraceID: mw.GetTraceID(c),
		UserID:  user.ID,
		Action:  audit.ActionUserRegister,
		IP:      c.ClientIP(),
	})
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login handles POST /api/auth/login. Either username or email identifies the user.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	q := h.db.WithContext(c.Request.Context())
	if req.Username != "" {
		q = q.Where("username = ?", strings.TrimSpace(req.Username))
	} else {
		q = q.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email)))
	}
	var user model.User
	if err := q.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abort(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		abort(c, http.StatusInternalServerError, err.Error())
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		abort(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.issueSession(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("session issue failed", zap.Int64("user_id", user.ID), zap.Error(err))
		abort(c, http.StatusInternalServerError, "could not start session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	_ = h.cache.Del(ctx, mw.SessionKey(mw.GetToken(c)))
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Refresh handles POST /api/auth/refresh. The old session is revoked.
func (h *AuthHandler) Refresh(c *gin.Context) {
	userID := mw.GetUserID(c)
	token, err := h.issueSession(c.Request.Context(), userID)
	if err != nil {
		abort(c, http.StatusInternalServerError, "could not start session")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	_ = h.cache.Del(ctx, mw.SessionKey(mw.GetToken(c)))
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	var user model.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, mw.GetUserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abort(c, http.StatusNotFound, "User not found")
			return
		}
		abort(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, user)
}
