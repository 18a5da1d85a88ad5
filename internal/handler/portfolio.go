package handler

import (
	"net/http"
	"strconv"

	"github.com/RichardCTT/Portfolio-Management/internal/service"
	"github.com/RichardCTT/Portfolio-Management/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PortfolioHandler 负责组合层面的查询接口
type PortfolioHandler struct {
	Portfolio *service.PortfolioService
}

func NewPortfolioHandler(db *gorm.DB) *PortfolioHandler {
	return &PortfolioHandler{Portfolio: service.NewPortfolioService(db)}
}

// TransactionsByType 某资产类型下的全部交易及汇总
func (h *PortfolioHandler) TransactionsByType(c *gin.Context) {
	typeID, err := strconv.Atoi(c.Param("asset_type_id"))
	if err != nil || typeID <= 0 {
		util.Fail(c, http.StatusBadRequest, "Invalid asset type ID",
			"Asset type ID must be a positive integer")
		return
	}

	result, err := h.Portfolio.TransactionsByType(uint(typeID),
		c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		analysisError(c, err)
		return
	}

	util.OK(c, http.StatusOK, result)
}

// Summary 首页汇总：总市值、总盈亏、当日盈亏
func (h *PortfolioHandler) Summary(c *gin.Context) {
	result, err := h.Portfolio.Summary()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "服务器内部错误")
		return
	}

	util.Success(c, http.StatusOK, "Success", result)
}

// TotalAssetsHistory 最近 10 个价格日的组合总市值序列
func (h *PortfolioHandler) TotalAssetsHistory(c *gin.Context) {
	result, err := h.Portfolio.TotalAssetsHistory()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "服务器内部错误")
		return
	}

	util.Success(c, http.StatusOK, "Success", result)
}
