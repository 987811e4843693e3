package xresponse

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Response is the success envelope
type Response struct {
	Code      int         `json:"code"`
	Status    string      `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorResponse is the error envelope. ErrorCode is stable for clients to
// branch on; Message is for display.
type ErrorResponse struct {
	Code      int         `json:"code"`
	Status    string      `json:"status"`
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeRemoteFailure    = "REMOTE_FAILURE"
	ErrCodePersistence      = "PERSISTENCE_FAILURE"
	ErrCodeSyncInProgress   = "SYNC_IN_PROGRESS"
	ErrCodeSyncHalted       = "SYNC_HALTED"
)

// Success sends 200
func Success(c *gin.Context, message string, data interface{}) {
	SuccessWithCode(c, http.StatusOK, message, data)
}

// SuccessWithCode sends a success envelope with statusCode
func SuccessWithCode(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Code:      statusCode,
		Status:    "success",
		Message:   message,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

// Accepted sends 202 for writes queued offline
func Accepted(c *gin.Context, message string, data interface{}) {
	SuccessWithCode(c, http.StatusAccepted, message, data)
}

// ErrorWithDetails sends an error envelope
func ErrorWithDetails(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		Code:      statusCode,
		Status:    "error",
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().Unix(),
	})
}

func BadRequest(c *gin.Context, message string) {
	ErrorWithDetails(c, http.StatusBadRequest, ErrCodeValidationFailed, message, nil)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorWithDetails(c, http.StatusUnauthorized, ErrCodeUnauthorized, message, nil)
}

func Forbidden(c *gin.Context, message string) {
	ErrorWithDetails(c, http.StatusForbidden, ErrCodeForbidden, message, nil)
}

func InternalServerError(c *gin.Context, message string) {
	ErrorWithDetails(c, http.StatusInternalServerError, ErrCodeInternalError, message, nil)
}

// RemoteFailure sends 502 when the remote backend rejected a direct write
func RemoteFailure(c *gin.Context, message string) {
	ErrorWithDetails(c, http.StatusBadGateway, ErrCodeRemoteFailure, message, nil)
}

// PersistenceFailure sends 500 when the local queue could not be written
func PersistenceFailure(c *gin.Context, message string) {
	ErrorWithDetails(c, http.StatusInternalServerError, ErrCodePersistence, message, nil)
}

// SyncInProgress sends 409 when a drain is already running
func SyncInProgress(c *gin.Context, message string) {
	ErrorWithDetails(c, http.StatusConflict, ErrCodeSyncInProgress, message, nil)
}
