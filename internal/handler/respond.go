package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/RichardCTT/Portfolio-Management/internal/service"
	"github.com/RichardCTT/Portfolio-Management/internal/util"

	"github.com/gin-gonic/gin"
)

// serviceStatus 把业务错误映射到 HTTP 状态码
// 存储层错误统一 500，详细原因只进日志不出响应
func serviceStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrAssetNotFound),
		errors.Is(err, service.ErrAssetTypeNotFound),
		errors.Is(err, service.ErrTransactionNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidTransactionType),
		errors.Is(err, service.ErrInsufficientHolding),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrPriceNotFound),
		errors.Is(err, service.ErrTradeSettlementAsset):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrAssetHasTransactions),
		errors.Is(err, service.ErrAssetTypeHasAssets),
		errors.Is(err, service.ErrTransactionNotLatest):
		return http.StatusConflict, err.Error()
	default:
		log.Printf("internal error: %v", err)
		return http.StatusInternalServerError, "Internal server error"
	}
}

// crudError CRUD 信封的错误返回
func crudError(c *gin.Context, err error) {
	status, msg := serviceStatus(err)
	util.Error(c, status, msg)
}

// analysisError 分析信封的错误返回
func analysisError(c *gin.Context, err error) {
	status, msg := serviceStatus(err)
	errType := http.StatusText(status)
	util.Fail(c, status, errType, msg)
}
