package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/campuswellness/wellness/challenge"
	"github.com/kasuganosora/campuswellness/wellness/insights"
	"github.com/kasuganosora/campuswellness/wellness/resource"
)

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

// respondError maps domain errors to status codes. Unclassified errors are
// returned as 500 with the underlying message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, challenge.ErrNotFound):
		abort(c, http.StatusNotFound, "Challenge not found")
	case errors.Is(err, challenge.ErrAlreadyJoined),
		errors.Is(err, challenge.ErrAlreadyCompleted):
		abort(c, http.StatusConflict, err.Error())
	case errors.Is(err, challenge.ErrInvalidProgress),
		errors.Is(err, challenge.ErrInvalidChallenge),
		errors.Is(err, resource.ErrInvalidResource),
		errors.Is(err, insights.ErrInvalidPeriod):
		abort(c, http.StatusBadRequest, err.Error())
	default:
		abort(c, http.StatusInternalServerError, err.Error())
	}
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abort(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
