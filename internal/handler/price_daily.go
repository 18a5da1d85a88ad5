package handler

import (
	"net/http"
	"strconv"

	"github.com/RichardCTT/Portfolio-Management/internal/models"
	"github.com/RichardCTT/Portfolio-Management/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PriceDailyHandler 负责每日价格接口
type PriceDailyHandler struct {
	DB *gorm.DB
}

func NewPriceDailyHandler(db *gorm.DB) *PriceDailyHandler {
	return &PriceDailyHandler{DB: db}
}

type upsertPriceReq struct {
	AssetID uint    `json:"asset_id" binding:"required"`
	Date    string  `json:"date" binding:"required"`
	Price   float64 `json:"price" binding:"required"`
}

// ListPrices 价格列表，支持按资产筛选和日期范围
func (h *PriceDailyHandler) ListPrices(c *gin.Context) {
	page, size, offset := parsePage(c, 10)

	base := h.DB.Model(&models.PriceDaily{})
	if assetIDStr := c.Query("asset_id"); assetIDStr != "" {
		assetID, err := strconv.Atoi(assetIDStr)
		if err != nil || assetID <= 0 {
			util.Error(c, http.StatusBadRequest, "asset_id 不合法")
			return
		}
		base = base.Where("asset_id = ?", assetID)
	}
	if start := c.Query("start_date"); start != "" {
		if err := util.ValidateDate(start); err != nil {
			util.Error(c, http.StatusBadRequest, "开始日期格式错误，应为 YYYY-MM-DD")
			return
		}
		base = base.Where("date >= ?", start)
	}
	if end := c.Query("end_date"); end != "" {
		if err := util.ValidateDate(end); err != nil {
			util.Error(c, http.StatusBadRequest, "结束日期格式错误，应为 YYYY-MM-DD")
			return
		}
		base = base.Where("date <= ?", end)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "查询失败")
		return
	}

	var prices []models.PriceDaily
	if err := base.Session(&gorm.Session{}).
		Order("date DESC, asset_id ASC").
		Limit(size).
		Offset(offset).
		Find(&prices).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "查询失败")
		return
	}

	util.Success(c, http.StatusOK, "Success", gin.H{
		"items":     prices,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

// GetPrice 价格详情
func (h *PriceDailyHandler) GetPrice(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "ID 不合法")
		return
	}

	var price models.PriceDaily
	if err := h.DB.First(&price, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "Price record not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "查询失败")
		}
		return
	}

	util.Success(c, http.StatusOK, "Success", price)
}

// UpsertPrice 写入价格：(asset_id, date) 已存在时原地更新，否则新建
func (h *PriceDailyHandler) UpsertPrice(c *gin.Context) {
	var req upsertPriceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "参数错误")
		return
	}
	if err := util.ValidateDate(req.Date); err != nil {
		util.Error(c, http.StatusBadRequest, "日期格式错误，应为 YYYY-MM-DD")
		return
	}
	if !util.IsValidCurrency(req.Price) {
		util.Error(c, http.StatusBadRequest, "请输入有效价格")
		return
	}

	var asset models.Asset
	if err := h.DB.First(&asset, req.AssetID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "Asset not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "查询失败")
		}
		return
	}

	var existing models.PriceDaily
	err := h.DB.Where("asset_id = ? AND date = ?", req.AssetID, req.Date).First(&existing).Error
	switch err {
	case nil:
		existing.Price = util.RoundPrice(req.Price)
		if err := h.DB.Save(&existing).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, "保存失败，请重试")
			return
		}
		util.Success(c, http.StatusOK, "Price record updated successfully", existing)
	case gorm.ErrRecordNotFound:
		price := models.PriceDaily{
			AssetID: req.AssetID,
			Date:    req.Date,
			Price:   util.RoundPrice(req.Price),
		}
		if err := h.DB.Create(&price).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, "保存失败，请重试")
			return
		}
		util.Success(c, http.StatusCreated, "Price record created successfully", price)
	default:
		util.Error(c, http.StatusInternalServerError, "查询失败")
	}
}

// DeletePrice 删除价格记录
// 持仓由交易记录推导，删历史价格不会反向影响 holding
func (h *PriceDailyHandler) DeletePrice(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "ID 不合法")
		return
	}

	var price models.PriceDaily
	if err := h.DB.First(&price, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "Price record not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "查询失败")
		}
		return
	}

	if err := h.DB.Delete(&models.PriceDaily{}, id).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "删除失败")
		return
	}

	util.Success(c, http.StatusOK, "Price record deleted successfully", nil)
}
