package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/logger"
	"github.com/alfanzaky/sitecomply/pkg/xresponse"
)

// ConnectivityReporter receives reachability reported by the platform.
type ConnectivityReporter interface {
	Set(connected bool)
}

// ForegroundNotifier is told when the app returns to the foreground.
type ForegroundNotifier interface {
	AppActive(ctx context.Context)
}

// SyncHandler exposes the sync engine and the platform bridges
type SyncHandler struct {
	syncUC    domain.SyncUsecase
	reporter  ConnectivityReporter
	notifier  ForegroundNotifier
	roleGuard *RoleGuard
}

func NewSyncHandler(syncUC domain.SyncUsecase, reporter ConnectivityReporter, notifier ForegroundNotifier) *SyncHandler {
	return &SyncHandler{
		syncUC:    syncUC,
		reporter:  reporter,
		notifier:  notifier,
		roleGuard: NewRoleGuard(),
	}
}

// ConnectivityRequest is the platform's reachability report
type ConnectivityRequest struct {
	Connected *bool `json:"connected" binding:"required"`
}

// Drain handles POST /sync and runs one drain before answering.
func (h *SyncHandler) Drain(c *gin.Context) {
	result, err := h.syncUC.Drain(c.Request.Context())
	switch {
	case err == nil:
		xresponse.Success(c, "Sync finished", result)
	case errors.Is(err, domain.ErrSyncHalted):
		xresponse.ErrorWithDetails(c, http.StatusBadGateway, xresponse.ErrCodeSyncHalted,
			"Sync stopped at a record the server did not accept", result)
	case result != nil:
		xresponse.ErrorWithDetails(c, http.StatusInternalServerError, xresponse.ErrCodePersistence,
			"Sync stopped because the queue could not be updated", result)
	default:
		writeError(c, err)
	}
}

// Status handles GET /sync/status
func (h *SyncHandler) Status(c *gin.Context) {
	status, err := h.syncUC.Status(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	xresponse.Success(c, "Sync status", status)
}

// Pending handles GET /sync/queue
func (h *SyncHandler) Pending(c *gin.Context) {
	records, err := h.syncUC.Pending(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	xresponse.Success(c, "Pending changes", records)
}

// Drop handles DELETE /sync/queue/:id (managers only)
func (h *SyncHandler) Drop(c *gin.Context) {
	id := c.Param("id")

	h.roleGuard.LogAccess(c, "drop_queue_record", id)
	if err := h.syncUC.Drop(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	xresponse.Success(c, "Queued change discarded", gin.H{"id": id})
}

// ReportConnectivity handles POST /connectivity
func (h *SyncHandler) ReportConnectivity(c *gin.Context) {
	var req ConnectivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	logger.Debug("Platform connectivity report", logger.Bool("connected", *req.Connected))
	h.reporter.Set(*req.Connected)
	xresponse.Success(c, "Connectivity recorded", gin.H{"connected": *req.Connected})
}

// AppActive handles POST /app/active
func (h *SyncHandler) AppActive(c *gin.Context) {
	h.notifier.AppActive(c.Request.Context())
	xresponse.Accepted(c, "Foreground noted", nil)
}
