package handler

import (
	"net/http"
	"strconv"

	"github.com/RichardCTT/Portfolio-Management/internal/models"
	"github.com/RichardCTT/Portfolio-Management/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AssetTypeHandler 负责资产类型 CRUD 接口
type AssetTypeHandler struct {
	DB *gorm.DB
}

func NewAssetTypeHandler(db *gorm.DB) *AssetTypeHandler {
	return &AssetTypeHandler{DB: db}
}

type assetTypeReq struct {
	Name        string `json:"name" binding:"required,max=64"`
	Unit        string `json:"unit" binding:"max=32"`
	Description string `json:"description" binding:"max=255"`
}

// ListAssetTypes 资产类型列表
func (h *AssetTypeHandler) ListAssetTypes(c *gin.Context) {
	page, size, offset := parsePage(c, 10)

	var total int64
	if err := h.DB.Model(&models.AssetType{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "查询失败")
		return
	}

	var types []models.AssetType
	if err := h.DB.Limit(size).Offset(offset).Find(&types).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "查询失败")
		return
	}

	util.Success(c, http.StatusOK, "Success", gin.H{
		"items":     types,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

// GetAssetType 资产类型详情
func (h *AssetTypeHandler) GetAssetType(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "ID 不合法")
		return
	}

	var assetType models.AssetType
	if err := h.DB.First(&assetType, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "Asset type not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "查询失败")
		}
		return
	}

	util.Success(c, http.StatusOK, "Success", assetType)
}

// CreateAssetType 新建资产类型
func (h *AssetTypeHandler) CreateAssetType(c *gin.Context) {
	var req assetTypeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "参数错误")
		return
	}

	assetType := models.AssetType{
		Name:        req.Name,
		Unit:        req.Unit,
		Description: req.Description,
	}
	if err := h.DB.Create(&assetType).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "保存失败，请重试")
		return
	}

	util.Success(c, http.StatusCreated, "Asset type created successfully", assetType)
}

// UpdateAssetType 更新资产类型
func (h *AssetTypeHandler) UpdateAssetType(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "ID 不合法")
		return
	}

	var req assetTypeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "参数错误")
		return
	}

	var assetType models.AssetType
	if err := h.DB.First(&assetType, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "Asset type not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "查询失败")
		}
		return
	}

	assetType.Name = req.Name
	assetType.Unit = req.Unit
	assetType.Description = req.Description
	if err := h.DB.Save(&assetType).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "保存失败，请重试")
		return
	}

	util.Success(c, http.StatusOK, "Asset type updated successfully", assetType)
}

// DeleteAssetType 删除资产类型，名下还有资产时拒绝
func (h *AssetTypeHandler) DeleteAssetType(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "ID 不合法")
		return
	}

	var assetType models.AssetType
	if err := h.DB.First(&assetType, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "Asset type not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "查询失败")
		}
		return
	}

	var count int64
	if err := h.DB.Model(&models.Asset{}).
		Where("asset_type_id = ?", id).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "查询失败")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, "Cannot delete asset type with associated assets")
		return
	}

	if err := h.DB.Delete(&models.AssetType{}, id).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "删除失败")
		return
	}

	util.Success(c, http.StatusOK, "Asset type deleted successfully", nil)
}
