package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arogyanet/hospital-registry/internal/domain/hospital"
	"github.com/arogyanet/hospital-registry/internal/service"
)

// SuccessResponse is the uniform success envelope.
type SuccessResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse is the uniform error envelope. Code is stable and
// machine-readable; Message is safe to show a caller.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Status: "success", Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, SuccessResponse{Status: "success", Data: data})
}

func respondError(c *gin.Context, status int, message, code string) {
	c.JSON(status, ErrorResponse{Status: "error", Message: message, Code: code})
}

// respondServiceError logs the failure with request context, then maps it
// onto the error taxonomy. Unclassified errors become an opaque 500; raw
// storage detail never reaches the client.
func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	log.Error("request pipeline error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)

	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		respondError(c, http.StatusBadRequest, validErr.Error(), "VALIDATION_ERROR")
		return
	}

	switch {
	case errors.Is(err, hospital.ErrHospitalNotFound):
		respondError(c, http.StatusNotFound, "Hospital not found", "NOT_FOUND")

	case errors.Is(err, hospital.ErrDuplicateName):
		respondError(c, http.StatusConflict, err.Error(), "DUPLICATE_ENTRY")

	case errors.Is(err, hospital.ErrDuplicateKey):
		respondError(c, http.StatusConflict, "Duplicate key error", "DUPLICATE_KEY")

	default:
		respondError(c, http.StatusInternalServerError, "Internal server error", "SERVER_ERROR")
	}
}

// bindStrictJSON decodes the request body rejecting unknown top-level (and
// nested) fields. Gin's own binder tolerates unknown keys, which would let
// misspelled fields silently vanish.
func bindStrictJSON(c *gin.Context, obj any) bool {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error(), "VALIDATION_ERROR")
		return false
	}
	return true
}
