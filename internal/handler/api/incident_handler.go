package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

// IncidentHandler handles incident and accident reporting
type IncidentHandler struct {
	incidentUC domain.IncidentUsecase
	roleGuard  *RoleGuard
}

func NewIncidentHandler(incidentUC domain.IncidentUsecase) *IncidentHandler {
	return &IncidentHandler{
		incidentUC: incidentUC,
		roleGuard:  NewRoleGuard(),
	}
}

// LogIncident handles POST /incidents
func (h *IncidentHandler) LogIncident(c *gin.Context) {
	var req domain.LogIncidentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.ReportedBy == "" {
		req.ReportedBy = c.GetString("user_id")
	}

	result, err := h.incidentUC.LogIncident(c.Request.Context(), req)
	writeResult(c, http.StatusCreated, "Incident logged", result, err)
}

// LogAccident handles POST /accidents
func (h *IncidentHandler) LogAccident(c *gin.Context) {
	var req domain.LogAccidentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.ReportedBy == "" {
		req.ReportedBy = c.GetString("user_id")
	}

	h.roleGuard.LogAccess(c, "log_accident", "accidents")
	result, err := h.incidentUC.LogAccident(c.Request.Context(), req)
	writeResult(c, http.StatusCreated, "Accident logged", result, err)
}
