package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/logger"
	"github.com/alfanzaky/sitecomply/pkg/observability"
	"github.com/alfanzaky/sitecomply/pkg/xresponse"
)

const offlineMessage = "Saved offline; it will sync when the connection returns"

// writeResult renders a domain write. Offline writes answer 202.
func writeResult(c *gin.Context, status int, message string, result *domain.WriteResult, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	if !result.Success {
		xresponse.BadRequest(c, result.Error)
		return
	}
	if result.Offline {
		xresponse.Accepted(c, offlineMessage, result)
		return
	}
	xresponse.SuccessWithCode(c, status, message, result)
}

// writeError maps core sentinel errors onto the response envelope.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSyncInProgress):
		xresponse.SyncInProgress(c, "A sync is already running")
	case errors.Is(err, domain.ErrRemote):
		observability.LogWithFields(c, "Remote write failed", logger.ErrorField(err))
		xresponse.RemoteFailure(c, "The server rejected the change")
	case errors.Is(err, domain.ErrPersistence):
		observability.RecordSystemError(c, "persistence", "queue", err)
		xresponse.PersistenceFailure(c, "Could not save the change on this device")
	default:
		observability.RecordSystemError(c, "internal", "api", err)
		xresponse.InternalServerError(c, "Internal server error")
	}
}

func bindError(c *gin.Context, err error) {
	xresponse.ErrorWithDetails(c, http.StatusBadRequest, xresponse.ErrCodeValidationFailed, "Invalid request body", err.Error())
}
