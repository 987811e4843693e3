package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

type WorkOrderHandler struct {
	workOrderUC domain.WorkOrderUsecase
	roleGuard   *RoleGuard
}

func NewWorkOrderHandler(workOrderUC domain.WorkOrderUsecase) *WorkOrderHandler {
	return &WorkOrderHandler{
		workOrderUC: workOrderUC,
		roleGuard:   NewRoleGuard(),
	}
}

// ResolveTask handles POST /work-orders/:id/resolve
func (h *WorkOrderHandler) ResolveTask(c *gin.Context) {
	var req domain.ResolveTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.TaskID = c.Param("id")
	if req.ResolvedBy == "" {
		req.ResolvedBy = c.GetString("user_id")
	}

	h.roleGuard.LogAccess(c, "resolve_task", req.TaskID)
	result, err := h.workOrderUC.ResolveTask(c.Request.Context(), req)
	writeResult(c, http.StatusOK, "Task resolved", result, err)
}
