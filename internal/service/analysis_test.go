package service

import (
	"testing"

	"github.com/RichardCTT/Portfolio-Management/internal/models"
	"github.com/RichardCTT/Portfolio-Management/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============ 持仓重放测试 ============

func TestAssetHoldingAnalysisReplay(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	analysis := NewAnalysisService(db)
	asset := createStock(t, db, "AAPL", 0)

	// 区间开始前的底仓 5
	_, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionIn,
		Quantity: 5, Price: 9, TransactionDate: "2024-01-05",
	})
	require.NoError(t, err)
	// 区间中间日买入 10
	_, err = ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionIn,
		Quantity: 10, Price: 10, TransactionDate: "2024-01-11",
	})
	require.NoError(t, err)

	result, err := analysis.AssetHoldingAnalysis(asset.ID, "2024-01-10", "2024-01-12")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", result.AssetInfo.Code)
	assert.Equal(t, "Stock", result.AssetInfo.AssetTypeName)
	assert.Equal(t, 3, result.AnalysisPeriod.Days)

	// 期初取区间前最后一条交易的 holding
	assert.Equal(t, 5.0, result.HoldingAnalysis.InitialHolding)
	assert.Equal(t, 15.0, result.HoldingAnalysis.FinalHolding)
	assert.Equal(t, 10.0, result.HoldingAnalysis.TotalChange)

	daily := result.HoldingAnalysis.DailyAnalysis
	require.Len(t, daily, 3)

	// 无交易日：期初 == 期末
	assert.Equal(t, "2024-01-10", daily[0].Date)
	assert.Equal(t, 5.0, daily[0].HoldingStart)
	assert.Equal(t, 5.0, daily[0].HoldingEnd)
	assert.False(t, daily[0].HasTransactions)

	// 交易日：期末取当天最后一条交易存储的 holding
	assert.Equal(t, "2024-01-11", daily[1].Date)
	assert.Equal(t, 5.0, daily[1].HoldingStart)
	assert.Equal(t, 15.0, daily[1].HoldingEnd)
	assert.Equal(t, 10.0, daily[1].Change)
	assert.True(t, daily[1].HasTransactions)
	assert.Equal(t, 1, daily[1].TransactionsCount)

	// 交易日之后持仓延续
	assert.Equal(t, "2024-01-12", daily[2].Date)
	assert.Equal(t, 15.0, daily[2].HoldingStart)
	assert.Equal(t, 15.0, daily[2].HoldingEnd)

	assert.Equal(t, 1, result.Summary.TransactionsCount)
}

func TestAssetHoldingAnalysisNoHistory(t *testing.T) {
	db := setupTestDB(t)
	analysis := NewAnalysisService(db)
	asset := createStock(t, db, "AAPL", 0)

	// 没有任何交易：期初期末都是 0
	result, err := analysis.AssetHoldingAnalysis(asset.ID, "2024-01-10", "2024-01-12")
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.HoldingAnalysis.InitialHolding)
	assert.Equal(t, 0.0, result.HoldingAnalysis.FinalHolding)
	assert.Equal(t, 0.0, result.HoldingAnalysis.TotalChange)
	require.Len(t, result.HoldingAnalysis.DailyAnalysis, 3)
}

func TestAssetHoldingAnalysisPriceGaps(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	analysis := NewAnalysisService(db)
	asset := createStock(t, db, "AAPL", 0)

	_, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionIn,
		Quantity: 10, Price: 10, TransactionDate: "2024-01-05",
	})
	require.NoError(t, err)

	// 只有中间一天有价格，缺价日不做填充
	setPrice(t, db, asset.ID, "2024-01-11", 12.5)

	result, err := analysis.AssetHoldingAnalysis(asset.ID, "2024-01-10", "2024-01-12")
	require.NoError(t, err)

	daily := result.HoldingAnalysis.DailyAnalysis
	require.Len(t, daily, 3)
	assert.Nil(t, daily[0].Price)
	assert.Nil(t, daily[0].MarketValue)
	require.NotNil(t, daily[1].Price)
	require.NotNil(t, daily[1].MarketValue)
	assert.Equal(t, 12.5, *daily[1].Price)
	assert.Equal(t, 125.00, *daily[1].MarketValue)
	assert.Nil(t, daily[2].Price)

	assert.Equal(t, 1, result.Summary.PriceDataPoints)
}

func TestAssetHoldingAnalysisPeriodSummary(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	analysis := NewAnalysisService(db)
	asset := createStock(t, db, "AAPL", 0)

	_, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionIn,
		Quantity: 10, Price: 10, TransactionDate: "2024-01-10",
	})
	require.NoError(t, err)
	_, err = ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionIn,
		Quantity: 30, Price: 14, TransactionDate: "2024-01-11",
	})
	require.NoError(t, err)
	_, err = ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionOut,
		Quantity: 5, Price: 20, TransactionDate: "2024-01-12",
	})
	require.NoError(t, err)

	result, err := analysis.AssetHoldingAnalysis(asset.ID, "2024-01-10", "2024-01-12")
	require.NoError(t, err)

	summary := result.HoldingAnalysis.PeriodSummary
	assert.Equal(t, 2, summary.TotalBuyTransactions)
	assert.Equal(t, 1, summary.TotalSellTransactions)
	assert.Equal(t, 40.0, summary.TotalBuyQuantity)
	assert.Equal(t, 5.0, summary.TotalSellQuantity)
	// 数量加权均价：(10*10 + 30*14) / 40 = 13.00
	require.NotNil(t, summary.AverageBuyPrice)
	assert.Equal(t, 13.00, *summary.AverageBuyPrice)
	require.NotNil(t, summary.AverageSellPrice)
	assert.Equal(t, 20.00, *summary.AverageSellPrice)
}

func TestAssetHoldingAnalysisNoSellAverage(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	analysis := NewAnalysisService(db)
	asset := createStock(t, db, "AAPL", 0)

	_, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionIn,
		Quantity: 10, Price: 10, TransactionDate: "2024-01-10",
	})
	require.NoError(t, err)

	result, err := analysis.AssetHoldingAnalysis(asset.ID, "2024-01-10", "2024-01-10")
	require.NoError(t, err)

	// 区间内无卖出，均价为 null 而不是 0
	assert.Nil(t, result.HoldingAnalysis.PeriodSummary.AverageSellPrice)
	require.NotNil(t, result.HoldingAnalysis.PeriodSummary.AverageBuyPrice)
}

func TestAssetHoldingAnalysisIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	analysis := NewAnalysisService(db)
	asset := createStock(t, db, "AAPL", 0)

	_, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionIn,
		Quantity: 10, Price: 10, TransactionDate: "2024-01-11",
	})
	require.NoError(t, err)
	setPrice(t, db, asset.ID, "2024-01-11", 12)

	// 重放是只读的，重复执行结果一致
	first, err := analysis.AssetHoldingAnalysis(asset.ID, "2024-01-10", "2024-01-12")
	require.NoError(t, err)
	second, err := analysis.AssetHoldingAnalysis(asset.ID, "2024-01-10", "2024-01-12")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAssetHoldingAnalysisValidation(t *testing.T) {
	db := setupTestDB(t)
	analysis := NewAnalysisService(db)
	asset := createStock(t, db, "AAPL", 0)

	_, err := analysis.AssetHoldingAnalysis(asset.ID, "2024-01-12", "2024-01-10")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = analysis.AssetHoldingAnalysis(asset.ID, "bad", "2024-01-10")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = analysis.AssetHoldingAnalysis(99999, "2024-01-10", "2024-01-12")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

// ============ 每日现金余额测试 ============

func TestDailyCashBalance(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	analysis := NewAnalysisService(db)
	cash := settlementAsset(t, db)

	// 窗口外的底仓
	_, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID: cash.ID, TransactionType: models.TransactionIn,
		Quantity: 1000, Price: 1, TransactionDate: util.DaysAgo(20),
		Description: "old deposit",
	})
	require.NoError(t, err)
	// 窗口内的出账
	_, err = ledger.RecordTransaction(RecordTransactionInput{
		AssetID: cash.ID, TransactionType: models.TransactionOut,
		Quantity: 250.5, Price: 1, TransactionDate: util.DaysAgo(3),
		Description: "withdrawal",
	})
	require.NoError(t, err)

	result, err := analysis.DailyCashBalance(7)
	require.NoError(t, err)

	assert.Equal(t, cash.ID, result.AssetInfo.ID)
	assert.Equal(t, "CASH001", result.AssetInfo.Code)
	assert.Equal(t, util.DaysAgo(7), result.AnalysisPeriod.StartDate)
	assert.Equal(t, util.CurrentDate(), result.AnalysisPeriod.EndDate)
	assert.Equal(t, 8, result.AnalysisPeriod.ActualDays)

	assert.Equal(t, 1000.0, result.InitialHolding)
	assert.Equal(t, 749.5, result.FinalHolding)
	assert.Equal(t, -250.5, result.TotalChange)

	assert.Equal(t, 0.0, result.Summary.TotalInAmount)
	assert.Equal(t, 250.5, result.Summary.TotalOutAmount)
	assert.Equal(t, 1, result.Summary.TotalTransactions)
	assert.Equal(t, 1, result.Summary.DaysWithActivity)
}

func TestDailyCashBalanceDefaultDays(t *testing.T) {
	db := setupTestDB(t)
	analysis := NewAnalysisService(db)

	// days <= 0 回落到 30 天
	result, err := analysis.DailyCashBalance(0)
	require.NoError(t, err)
	assert.Equal(t, 30, result.AnalysisPeriod.Days)
	assert.Equal(t, 31, result.AnalysisPeriod.ActualDays)
}
