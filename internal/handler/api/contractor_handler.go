package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

// ContractorHandler handles contractor credential endpoints
type ContractorHandler struct {
	contractorUC domain.ContractorUsecase
	roleGuard    *RoleGuard
}

func NewContractorHandler(contractorUC domain.ContractorUsecase) *ContractorHandler {
	return &ContractorHandler{
		contractorUC: contractorUC,
		roleGuard:    NewRoleGuard(),
	}
}

// UpdateSpecialism handles PATCH /contractors/:id/specialism
func (h *ContractorHandler) UpdateSpecialism(c *gin.Context) {
	var req domain.UpdateSpecialismInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.ContractorID = c.Param("id")

	result, err := h.contractorUC.UpdateSpecialism(c.Request.Context(), req)
	writeResult(c, http.StatusOK, "Specialism updated", result, err)
}

// UpdateCompetence handles PATCH /contractors/:id/competence. The optional
// certificate arrives base64 encoded in the JSON body.
func (h *ContractorHandler) UpdateCompetence(c *gin.Context) {
	var req domain.UpdateCompetenceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.ContractorID = c.Param("id")

	result, err := h.contractorUC.UpdateCompetence(c.Request.Context(), req)
	writeResult(c, http.StatusOK, "Competence updated", result, err)
}

// UpdateStatus handles PATCH /contractors/:id/status (managers only)
func (h *ContractorHandler) UpdateStatus(c *gin.Context) {
	var req domain.UpdateStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.ContractorID = c.Param("id")

	h.roleGuard.LogAccess(c, "update_verification_status", req.ContractorID)
	result, err := h.contractorUC.UpdateStatus(c.Request.Context(), req)
	writeResult(c, http.StatusOK, "Verification status updated", result, err)
}
