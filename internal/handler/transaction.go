package handler

import (
	"net/http"
	"strconv"

	"github.com/RichardCTT/Portfolio-Management/internal/models"
	"github.com/RichardCTT/Portfolio-Management/internal/service"
	"github.com/RichardCTT/Portfolio-Management/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TransactionHandler 负责交易记录接口，写操作全部走交易引擎
type TransactionHandler struct {
	DB     *gorm.DB
	Ledger *service.LedgerService
}

func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{
		DB:     db,
		Ledger: service.NewLedgerService(db),
	}
}

type createTransactionReq struct {
	AssetID         uint    `json:"asset_id" binding:"required"`
	TransactionType string  `json:"transaction_type" binding:"required,oneof=IN OUT"`
	Quantity        float64 `json:"quantity" binding:"required"`
	Price           float64 `json:"price"`
	TransactionDate string  `json:"transaction_date" binding:"required"`
	Description     string  `json:"description" binding:"max=255"`
}

type tradeReq struct {
	AssetID     uint    `json:"asset_id" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required"`
	Date        string  `json:"date" binding:"required"`
	Description string  `json:"description" binding:"max=255"`
}

// ListTransactions 交易记录列表，按交易日期排序
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	page, size, offset := parsePage(c, 10)

	base := h.DB.Model(&models.Transaction{})
	if assetIDStr := c.Query("asset_id"); assetIDStr != "" {
		assetID, err := strconv.Atoi(assetIDStr)
		if err != nil || assetID <= 0 {
			util.Error(c, http.StatusBadRequest, "asset_id 不合法")
			return
		}
		base = base.Where("asset_id = ?", assetID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "查询失败")
		return
	}

	var transactions []models.Transaction
	if err := base.Session(&gorm.Session{}).
		Order("transaction_date ASC, id ASC").
		Limit(size).
		Offset(offset).
		Find(&transactions).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "查询失败")
		return
	}

	util.Success(c, http.StatusOK, "Success", gin.H{
		"items":     transactions,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

// GetTransaction 交易记录详情
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "ID 不合法")
		return
	}

	var record models.Transaction
	if err := h.DB.First(&record, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "Transaction not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "查询失败")
		}
		return
	}

	util.Success(c, http.StatusOK, "Success", record)
}

// CreateTransaction 手工记一笔交易，同步更新资产持仓
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req createTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "参数错误")
		return
	}

	record, err := h.Ledger.RecordTransaction(service.RecordTransactionInput{
		AssetID:         req.AssetID,
		TransactionType: req.TransactionType,
		Quantity:        req.Quantity,
		Price:           req.Price,
		TransactionDate: req.TransactionDate,
		Description:     req.Description,
	})
	if err != nil {
		crudError(c, err)
		return
	}

	util.Success(c, http.StatusCreated, "Transaction created successfully", record)
}

// DeleteTransaction 删除交易记录（只允许删最新一条，持仓回滚）
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "ID 不合法")
		return
	}

	if err := h.Ledger.DeleteTransaction(uint(id)); err != nil {
		crudError(c, err)
		return
	}

	util.Success(c, http.StatusOK, "Transaction deleted successfully", nil)
}

// Buy 买入：按当天价格成交，现金账户出账
func (h *TransactionHandler) Buy(c *gin.Context) {
	var req tradeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	result, err := h.Ledger.Buy(req.AssetID, req.Quantity, req.Date, req.Description)
	if err != nil {
		analysisError(c, err)
		return
	}

	util.OK(c, http.StatusCreated, gin.H{
		"transaction":    result.Transaction,
		"total_cost":     result.Amount,
		"remaining_cash": result.CashBalance,
	})
}

// Sell 卖出：按当天价格成交，所得计入现金账户
func (h *TransactionHandler) Sell(c *gin.Context) {
	var req tradeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	result, err := h.Ledger.Sell(req.AssetID, req.Quantity, req.Date, req.Description)
	if err != nil {
		analysisError(c, err)
		return
	}

	util.OK(c, http.StatusCreated, gin.H{
		"transaction":      result.Transaction,
		"total_received":   result.Amount,
		"new_cash_balance": result.CashBalance,
	})
}
