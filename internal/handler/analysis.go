package handler

import (
	"net/http"
	"strconv"

	"github.com/RichardCTT/Portfolio-Management/internal/service"
	"github.com/RichardCTT/Portfolio-Management/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AnalysisHandler 负责持仓分析与组合分析接口
type AnalysisHandler struct {
	Analysis        *service.AnalysisService
	Portfolio       *service.PortfolioService
	CashBalanceDays int
}

func NewAnalysisHandler(db *gorm.DB, cashBalanceDays int) *AnalysisHandler {
	return &AnalysisHandler{
		Analysis:        service.NewAnalysisService(db),
		Portfolio:       service.NewPortfolioService(db),
		CashBalanceDays: cashBalanceDays,
	}
}

// parseHoldingQuery 提取 asset_id / start_date / end_date 参数
func parseHoldingQuery(c *gin.Context) (uint, string, string, bool) {
	assetIDStr := c.Query("asset_id")
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	if assetIDStr == "" || startDate == "" || endDate == "" {
		util.Fail(c, http.StatusBadRequest, "Bad Request",
			"Missing required parameters: asset_id, start_date, end_date")
		return 0, "", "", false
	}

	assetID, err := strconv.Atoi(assetIDStr)
	if err != nil || assetID <= 0 {
		util.Fail(c, http.StatusBadRequest, "Bad Request",
			"asset_id must be a positive integer")
		return 0, "", "", false
	}

	return uint(assetID), startDate, endDate, true
}

// AssetHolding 完整的持仓分析（含逐日明细）
func (h *AnalysisHandler) AssetHolding(c *gin.Context) {
	assetID, startDate, endDate, ok := parseHoldingQuery(c)
	if !ok {
		return
	}

	result, err := h.Analysis.AssetHoldingAnalysis(assetID, startDate, endDate)
	if err != nil {
		analysisError(c, err)
		return
	}

	util.OK(c, http.StatusOK, result)
}

// AssetHoldingSummary 持仓分析的汇总版（不含逐日明细）
func (h *AnalysisHandler) AssetHoldingSummary(c *gin.Context) {
	assetID, startDate, endDate, ok := parseHoldingQuery(c)
	if !ok {
		return
	}

	result, err := h.Analysis.AssetHoldingAnalysis(assetID, startDate, endDate)
	if err != nil {
		analysisError(c, err)
		return
	}

	util.OK(c, http.StatusOK, gin.H{
		"asset_info":      result.AssetInfo,
		"analysis_period": result.AnalysisPeriod,
		"period_summary":  result.HoldingAnalysis.PeriodSummary,
		"summary":         result.Summary,
	})
}

// DailyCashBalance 现金账户最近 N 天的每日余额
func (h *AnalysisHandler) DailyCashBalance(c *gin.Context) {
	days := h.CashBalanceDays
	if daysStr := c.Query("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 || parsed > 365 {
			util.Fail(c, http.StatusBadRequest, "Bad Request",
				"days must be an integer between 1 and 365")
			return
		}
		days = parsed
	}

	result, err := h.Analysis.DailyCashBalance(days)
	if err != nil {
		analysisError(c, err)
		return
	}

	util.OK(c, http.StatusOK, result)
}

// AssetTotalsByType 指定日期各类型资产的市值与占比
func (h *AnalysisHandler) AssetTotalsByType(c *gin.Context) {
	date := c.Query("date")

	result, err := h.Portfolio.AssetTotalsByType(date)
	if err != nil {
		analysisError(c, err)
		return
	}

	util.OK(c, http.StatusOK, result)
}
