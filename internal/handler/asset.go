package handler

import (
	"net/http"
	"strconv"

	"github.com/RichardCTT/Portfolio-Management/internal/models"
	"github.com/RichardCTT/Portfolio-Management/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AssetHandler 负责资产 CRUD 接口
type AssetHandler struct {
	DB *gorm.DB
}

func NewAssetHandler(db *gorm.DB) *AssetHandler {
	return &AssetHandler{DB: db}
}

type createAssetReq struct {
	Name        string  `json:"name" binding:"required,max=64"`
	Code        string  `json:"code" binding:"required,max=32"`
	AssetTypeID uint    `json:"asset_type_id" binding:"required"`
	Quantity    float64 `json:"quantity"`
	Description string  `json:"description" binding:"max=255"`
}

type updateAssetReq struct {
	Name        string `json:"name" binding:"required,max=64"`
	Code        string `json:"code" binding:"required,max=32"`
	Description string `json:"description" binding:"max=255"`
}

// parsePage 分页参数，page 从 1 开始，page_size 上限 100
func parsePage(c *gin.Context, defaultSize int) (page, size, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	if size <= 0 || size > 100 {
		size = defaultSize
	}
	return page, size, (page - 1) * size
}

// ListAssets 资产列表，支持按类型筛选和分页
func (h *AssetHandler) ListAssets(c *gin.Context) {
	page, size, offset := parsePage(c, 10)

	base := h.DB.Model(&models.Asset{})
	if typeIDStr := c.Query("asset_type_id"); typeIDStr != "" {
		typeID, err := strconv.Atoi(typeIDStr)
		if err != nil || typeID <= 0 {
			util.Error(c, http.StatusBadRequest, "asset_type_id 不合法")
			return
		}
		base = base.Where("asset_type_id = ?", typeID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "查询失败")
		return
	}

	var assets []models.Asset
	if err := base.Session(&gorm.Session{}).
		Limit(size).
		Offset(offset).
		Find(&assets).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "查询失败")
		return
	}

	util.Success(c, http.StatusOK, "Success", gin.H{
		"items":     assets,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

// GetAsset 资产详情
func (h *AssetHandler) GetAsset(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "ID 不合法")
		return
	}

	var asset models.Asset
	if err := h.DB.First(&asset, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "Asset not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "查询失败")
		}
		return
	}

	util.Success(c, http.StatusOK, "Success", asset)
}

// CreateAsset 新建资产
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req createAssetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "参数错误")
		return
	}
	if req.Quantity < 0 {
		util.Error(c, http.StatusBadRequest, "数量不能为负数")
		return
	}

	// 资产类型必须存在
	var assetType models.AssetType
	if err := h.DB.First(&assetType, req.AssetTypeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusBadRequest, "资产类型不存在")
		} else {
			util.Error(c, http.StatusInternalServerError, "查询失败")
		}
		return
	}

	asset := models.Asset{
		Name:        req.Name,
		Code:        req.Code,
		AssetTypeID: req.AssetTypeID,
		Quantity:    util.RoundQuantity(req.Quantity),
		Description: req.Description,
	}
	if err := h.DB.Create(&asset).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "保存失败，请重试")
		return
	}

	util.Success(c, http.StatusCreated, "Asset created successfully", asset)
}

// UpdateAsset 更新资产基本信息（quantity 只能通过交易引擎改动）
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "ID 不合法")
		return
	}

	var req updateAssetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "参数错误")
		return
	}

	var asset models.Asset
	if err := h.DB.First(&asset, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "Asset not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "查询失败")
		}
		return
	}

	asset.Name = req.Name
	asset.Code = req.Code
	asset.Description = req.Description
	if err := h.DB.Save(&asset).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "保存失败，请重试")
		return
	}

	util.Success(c, http.StatusOK, "Asset updated successfully", asset)
}

// DeleteAsset 删除资产，有交易记录时拒绝
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "ID 不合法")
		return
	}

	var asset models.Asset
	if err := h.DB.First(&asset, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "Asset not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "查询失败")
		}
		return
	}

	var count int64
	if err := h.DB.Model(&models.Transaction{}).
		Where("asset_id = ?", id).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "查询失败")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, "Cannot delete asset with associated transactions")
		return
	}

	if err := h.DB.Delete(&models.Asset{}, id).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "删除失败")
		return
	}

	util.Success(c, http.StatusOK, "Asset deleted successfully", nil)
}
