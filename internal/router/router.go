package router

import (
	"net/http"

	"github.com/RichardCTT/Portfolio-Management/internal/config"
	"github.com/RichardCTT/Portfolio-Management/internal/handler"
	"github.com/RichardCTT/Portfolio-Management/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and mounts all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	// 健康检查 / 欢迎页
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to Portfolio Management API",
			"status":  "Server is running",
		})
	})

	// ====== API ======
	api := r.Group("/api")
	api.Use(middleware.OperationLog(db))

	assetTypeHandler := handler.NewAssetTypeHandler(db)
	api.GET("/asset_types", assetTypeHandler.ListAssetTypes)
	api.GET("/asset_types/:id", assetTypeHandler.GetAssetType)
	api.POST("/asset_types", assetTypeHandler.CreateAssetType)
	api.PUT("/asset_types/:id", assetTypeHandler.UpdateAssetType)
	api.DELETE("/asset_types/:id", assetTypeHandler.DeleteAssetType)

	assetHandler := handler.NewAssetHandler(db)
	api.GET("/assets", assetHandler.ListAssets)
	api.GET("/assets/:id", assetHandler.GetAsset)
	api.POST("/assets", assetHandler.CreateAsset)
	api.PUT("/assets/:id", assetHandler.UpdateAsset)
	api.DELETE("/assets/:id", assetHandler.DeleteAsset)

	priceHandler := handler.NewPriceDailyHandler(db)
	api.GET("/price_daily", priceHandler.ListPrices)
	api.GET("/price_daily/:id", priceHandler.GetPrice)
	api.POST("/price_daily", priceHandler.UpsertPrice)
	api.DELETE("/price_daily/:id", priceHandler.DeletePrice)

	transactionHandler := handler.NewTransactionHandler(db)
	api.GET("/transactions", transactionHandler.ListTransactions)
	api.GET("/transactions/:id", transactionHandler.GetTransaction)
	api.POST("/transactions", transactionHandler.CreateTransaction)
	api.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)
	api.POST("/transactions/buy", transactionHandler.Buy)
	api.POST("/transactions/sell", transactionHandler.Sell)

	analysisHandler := handler.NewAnalysisHandler(db, cfg.App.CashBalanceDays)
	api.GET("/analysis/asset-holding", analysisHandler.AssetHolding)
	api.GET("/analysis/asset-holding/summary", analysisHandler.AssetHoldingSummary)
	api.GET("/analysis/asset-totals-by-type", analysisHandler.AssetTotalsByType)
	api.GET("/analysis/daily-cash-balance", analysisHandler.DailyCashBalance)

	portfolioHandler := handler.NewPortfolioHandler(db)
	api.GET("/portfolio/transactions-by-type/:asset_type_id", portfolioHandler.TransactionsByType)
	api.GET("/portfolio/summary", portfolioHandler.Summary)
	api.GET("/portfolio/total-assets-history", portfolioHandler.TotalAssetsHistory)

	exportHandler := handler.NewExportHandler(db)
	api.GET("/export/transactions.csv", exportHandler.ExportCSV)
	api.GET("/export/transactions.xlsx", exportHandler.ExportXLSX)

	return r
}
