package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

// AssetHandler handles asset register endpoints
type AssetHandler struct {
	assetUC   domain.AssetUsecase
	roleGuard *RoleGuard
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assetUC domain.AssetUsecase) *AssetHandler {
	return &AssetHandler{
		assetUC:   assetUC,
		roleGuard: NewRoleGuard(),
	}
}

// CreateAsset handles POST /assets
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req domain.CreateAssetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	h.roleGuard.LogAccess(c, "create_asset", "assets")
	result, err := h.assetUC.CreateAsset(c.Request.Context(), req)
	writeResult(c, http.StatusCreated, "Asset created", result, err)
}

// UpdateAsset handles PUT /assets/:id
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	var req domain.UpdateAssetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.ID = c.Param("id")

	h.roleGuard.LogAccess(c, "update_asset", req.ID)
	result, err := h.assetUC.UpdateAsset(c.Request.Context(), req)
	writeResult(c, http.StatusOK, "Asset updated", result, err)
}

// DeleteAsset handles DELETE /assets/:id
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	id := c.Param("id")

	h.roleGuard.LogAccess(c, "delete_asset", id)
	result, err := h.assetUC.DeleteAsset(c.Request.Context(), id)
	writeResult(c, http.StatusOK, "Asset deleted", result, err)
}
