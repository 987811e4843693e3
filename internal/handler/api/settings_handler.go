package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

type SettingsHandler struct {
	settingsUC domain.SettingsUsecase
	roleGuard  *RoleGuard
}

func NewSettingsHandler(settingsUC domain.SettingsUsecase) *SettingsHandler {
	return &SettingsHandler{
		settingsUC: settingsUC,
		roleGuard:  NewRoleGuard(),
	}
}

// UpdateSiteSettings handles PUT /settings/:id
func (h *SettingsHandler) UpdateSiteSettings(c *gin.Context) {
	var req domain.UpdateSiteSettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.ID = c.Param("id")

	h.roleGuard.LogAccess(c, "update_site_settings", req.ID)
	result, err := h.settingsUC.UpdateSiteSettings(c.Request.Context(), req)
	writeResult(c, http.StatusOK, "Site settings updated", result, err)
}
