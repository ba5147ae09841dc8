package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"catalog-service/internal/apperrors"
	"catalog-service/internal/middleware"
	"catalog-service/internal/models"
	"catalog-service/internal/pagination"
)

// Pager turns pageNumber/pageSize query params into clamped pagination params.
type Pager struct {
	DefaultSize int
	MaxSize     int
}

// Parse never fails: missing or unparsable values fall back to defaults.
func (p Pager) Parse(c *gin.Context) pagination.Params {
	page, err := strconv.Atoi(c.Query("pageNumber"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.Query("pageSize"))
	if err != nil || size < 1 {
		size = p.DefaultSize
	}
	if p.MaxSize > 0 && size > p.MaxSize {
		size = p.MaxSize
	}
	return pagination.Normalize(page, size)
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, models.Response{
		ResultStatus: models.ResultOk,
		Success:      true,
		Data:         data,
	})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, models.Response{
		ResultStatus: models.ResultCreated,
		Success:      true,
		Data:         data,
	})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, models.Response{
		ResultStatus: models.ResultOk,
		Success:      true,
		Message:      message,
	})
}

func respondList(c *gin.Context, data interface{}, info pagination.Info) {
	c.JSON(http.StatusOK, models.Response{
		ResultStatus: models.ResultOk,
		Success:      true,
		Data:         data,
		Pagination:   &info,
	})
}

// respondError maps an error kind to its status. Persistence details are
// logged and replaced by a generic message.
func respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	resp := models.Response{
		Success:   false,
		Message:   apperrors.Message(err),
		ErrorType: string(kind),
	}

	var status int
	switch kind {
	case apperrors.KindValidation:
		status, resp.ResultStatus = http.StatusBadRequest, models.ResultInvalid
	case apperrors.KindNotFound:
		status, resp.ResultStatus = http.StatusNotFound, models.ResultNotFound
	case apperrors.KindConflict:
		status, resp.ResultStatus = http.StatusConflict, models.ResultConflict
	default:
		status, resp.ResultStatus = http.StatusInternalServerError, models.ResultError
		middleware.LoggerFrom(c).WithError(err).Error("Request failed")
	}
	c.JSON(status, resp)
}

func respondBindError(c *gin.Context, err error) {
	respondError(c, apperrors.Validation("invalid request body: %v", err))
}

// uuidParam parses a path parameter, answering 400 when it is not a UUID.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, apperrors.Validation("%s must be a valid UUID", name))
		return uuid.Nil, false
	}
	return id, true
}

// currentUser reads the authenticated user, answering 401 when absent.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.Response{
			ResultStatus: models.ResultUnauthorized,
			Success:      false,
			Message:      "Authenticated user is required",
			ErrorType:    "UNAUTHORIZED",
		})
		return uuid.Nil, false
	}
	return userID, true
}
