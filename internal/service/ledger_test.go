package service

import (
	"testing"

	"github.com/RichardCTT/Portfolio-Management/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============ 手工记账测试 ============

func TestRecordTransactionIn(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	asset := createStock(t, db, "AAPL", 0)

	record, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID:         asset.ID,
		TransactionType: models.TransactionIn,
		Quantity:        100,
		Price:           10.5,
		TransactionDate: "2024-01-10",
		Description:     "initial position",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TransactionIn, record.TransactionType)
	assert.Equal(t, 100.0, record.Quantity)
	assert.Equal(t, 100.0, record.Holding)
	// 资产数量必须与最新交易的 holding 一致
	assert.Equal(t, 100.0, assetQuantity(t, db, asset.ID))

	// 再入 50，holding 累加
	record, err = ledger.RecordTransaction(RecordTransactionInput{
		AssetID:         asset.ID,
		TransactionType: models.TransactionIn,
		Quantity:        50,
		Price:           11,
		TransactionDate: "2024-01-11",
	})
	require.NoError(t, err)
	assert.Equal(t, 150.0, record.Holding)
	assert.Equal(t, 150.0, assetQuantity(t, db, asset.ID))
}

func TestRecordTransactionOut(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	asset := createStock(t, db, "AAPL", 100)

	record, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID:         asset.ID,
		TransactionType: models.TransactionOut,
		Quantity:        30,
		Price:           12,
		TransactionDate: "2024-01-10",
	})
	require.NoError(t, err)
	assert.Equal(t, 70.0, record.Holding)
	assert.Equal(t, 70.0, assetQuantity(t, db, asset.ID))
}

func TestRecordTransactionInsufficientHolding(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	asset := createStock(t, db, "AAPL", 100)

	// 超卖：持仓 100 卖 150
	_, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID:         asset.ID,
		TransactionType: models.TransactionOut,
		Quantity:        150,
		Price:           12,
		TransactionDate: "2024-01-10",
	})
	require.ErrorIs(t, err, ErrInsufficientHolding)

	// 拒绝后不能留下任何写入
	assert.Equal(t, 100.0, assetQuantity(t, db, asset.ID))
	assert.Equal(t, int64(0), transactionCount(t, db, asset.ID))
}

func TestRecordTransactionValidation(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	asset := createStock(t, db, "AAPL", 100)

	_, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: "TRANSFER",
		Quantity: 10, TransactionDate: "2024-01-10",
	})
	assert.ErrorIs(t, err, ErrInvalidTransactionType)

	_, err = ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionIn,
		Quantity: 0, TransactionDate: "2024-01-10",
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionIn,
		Quantity: -5, TransactionDate: "2024-01-10",
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionIn,
		Quantity: 10, TransactionDate: "2024-13-01",
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = ledger.RecordTransaction(RecordTransactionInput{
		AssetID: 99999, TransactionType: models.TransactionIn,
		Quantity: 10, TransactionDate: "2024-01-10",
	})
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

// ============ 买入测试 ============

func TestBuy(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	asset := createStock(t, db, "AAPL", 100)
	cash := settlementAsset(t, db)

	// 入金 1000
	_, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID:         cash.ID,
		TransactionType: models.TransactionIn,
		Quantity:        1000,
		Price:           1,
		TransactionDate: "2024-01-09",
		Description:     "deposit",
	})
	require.NoError(t, err)

	setPrice(t, db, asset.ID, "2024-01-10", 10.00)

	result, err := ledger.Buy(asset.ID, 50, "2024-01-10", "buy apple")
	require.NoError(t, err)

	// 资产侧：持仓 100 -> 150
	assert.Equal(t, 500.00, result.Amount)
	assert.Equal(t, 150.0, result.Transaction.Holding)
	assert.Equal(t, models.TransactionIn, result.Transaction.TransactionType)
	assert.Equal(t, 150.0, assetQuantity(t, db, asset.ID))

	// 现金侧：1000 -> 500，出账记录价格恒为 1
	assert.Equal(t, 500.00, result.CashBalance)
	assert.Equal(t, models.TransactionOut, result.CashTransaction.TransactionType)
	assert.Equal(t, 1.0, result.CashTransaction.Price)
	assert.Equal(t, 500.0, assetQuantity(t, db, cash.ID))
	assert.Contains(t, result.CashTransaction.Description, "Buy AAPL")
}

func TestBuyInsufficientFunds(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	asset := createStock(t, db, "AAPL", 0)
	cash := setCash(t, db, 499.99)

	setPrice(t, db, asset.ID, "2024-01-10", 10.00)

	_, err := ledger.Buy(asset.ID, 50, "2024-01-10", "")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// 双边都不能有写入
	assert.Equal(t, 0.0, assetQuantity(t, db, asset.ID))
	assert.Equal(t, 499.99, assetQuantity(t, db, cash.ID))
	assert.Equal(t, int64(0), transactionCount(t, db, asset.ID))
	assert.Equal(t, int64(0), transactionCount(t, db, cash.ID))
}

func TestBuyExactFunds(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	asset := createStock(t, db, "AAPL", 0)
	setCash(t, db, 500.00)

	setPrice(t, db, asset.ID, "2024-01-10", 10.00)

	// 余额恰好等于成本，应允许
	result, err := ledger.Buy(asset.ID, 50, "2024-01-10", "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.CashBalance)
}

func TestBuyWithSubCentCash(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	asset := createStock(t, db, "AAPL", 0)
	cash := setCash(t, db, 499.996)

	setPrice(t, db, asset.ID, "2024-01-10", 10.00)

	// 余额按分比较：499.996 按分等于 500.00，足以支付 500.00
	result, err := ledger.Buy(asset.ID, 50, "2024-01-10", "")
	require.NoError(t, err)
	assert.Equal(t, 500.00, result.Amount)
	assert.Equal(t, 50.0, result.Transaction.Holding)
	assert.InDelta(t, 0.0, result.CashBalance, 1e-9)
	assert.InDelta(t, 0.0, assetQuantity(t, db, cash.ID), 1e-9)
}

func TestCashOutInsufficientFundsError(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	cash := setCash(t, db, 499.99)

	// 现金出账不足返回资金错误，而不是持仓错误
	_, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID: cash.ID, TransactionType: models.TransactionOut,
		Quantity: 500.00, Price: 1, TransactionDate: "2024-01-10",
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.NotErrorIs(t, err, ErrInsufficientHolding)
	assert.Equal(t, 499.99, assetQuantity(t, db, cash.ID))
}

func TestBuyWithoutPrice(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	asset := createStock(t, db, "AAPL", 100)
	cash := setCash(t, db, 1000)

	// 当天没有价格记录，不做就近回退
	setPrice(t, db, asset.ID, "2024-01-09", 10.00)

	_, err := ledger.Buy(asset.ID, 50, "2024-01-10", "")
	require.ErrorIs(t, err, ErrPriceNotFound)

	assert.Equal(t, 100.0, assetQuantity(t, db, asset.ID))
	assert.Equal(t, 1000.0, assetQuantity(t, db, cash.ID))
	assert.Equal(t, int64(0), transactionCount(t, db, asset.ID))
}

func TestBuySettlementAssetRejected(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	cash := setCash(t, db, 1000)

	setPrice(t, db, cash.ID, "2024-01-10", 1.00)

	// 现金结算账户不能作为交易标的
	_, err := ledger.Buy(cash.ID, 100, "2024-01-10", "")
	assert.ErrorIs(t, err, ErrTradeSettlementAsset)
	_, err = ledger.Sell(cash.ID, 100, "2024-01-10", "")
	assert.ErrorIs(t, err, ErrTradeSettlementAsset)
}

// ============ 卖出测试 ============

func TestSell(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	asset := createStock(t, db, "AAPL", 100)
	cash := setCash(t, db, 200)

	setPrice(t, db, asset.ID, "2024-01-10", 12.50)

	result, err := ledger.Sell(asset.ID, 40, "2024-01-10", "take profit")
	require.NoError(t, err)

	assert.Equal(t, 500.00, result.Amount)
	assert.Equal(t, 60.0, result.Transaction.Holding)
	assert.Equal(t, models.TransactionOut, result.Transaction.TransactionType)

	// 所得计入现金：200 + 500
	assert.Equal(t, 700.00, result.CashBalance)
	assert.Equal(t, models.TransactionIn, result.CashTransaction.TransactionType)
	assert.Equal(t, 700.0, assetQuantity(t, db, cash.ID))
	assert.Contains(t, result.CashTransaction.Description, "Sell AAPL")
}

func TestSellInsufficientHolding(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	asset := createStock(t, db, "AAPL", 30)
	cash := setCash(t, db, 0)

	setPrice(t, db, asset.ID, "2024-01-10", 12.50)

	_, err := ledger.Sell(asset.ID, 40, "2024-01-10", "")
	require.ErrorIs(t, err, ErrInsufficientHolding)

	assert.Equal(t, 30.0, assetQuantity(t, db, asset.ID))
	assert.Equal(t, 0.0, assetQuantity(t, db, cash.ID))
	assert.Equal(t, int64(0), transactionCount(t, db, cash.ID))
}

// ============ 删除交易测试 ============

func TestDeleteLatestTransaction(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	asset := createStock(t, db, "AAPL", 0)

	first, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionIn,
		Quantity: 40, Price: 10, TransactionDate: "2024-01-10",
	})
	require.NoError(t, err)
	second, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionIn,
		Quantity: 60, Price: 11, TransactionDate: "2024-01-11",
	})
	require.NoError(t, err)
	require.Equal(t, 100.0, assetQuantity(t, db, asset.ID))

	// 删除最新记录，持仓回滚到上一条的 holding
	require.NoError(t, ledger.DeleteTransaction(second.ID))
	assert.Equal(t, first.Holding, assetQuantity(t, db, asset.ID))
	assert.Equal(t, int64(1), transactionCount(t, db, asset.ID))
}

func TestDeleteOnlyTransactionRollsBackToZero(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	asset := createStock(t, db, "AAPL", 0)

	record, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionIn,
		Quantity: 40, Price: 10, TransactionDate: "2024-01-10",
	})
	require.NoError(t, err)

	require.NoError(t, ledger.DeleteTransaction(record.ID))
	assert.Equal(t, 0.0, assetQuantity(t, db, asset.ID))
	assert.Equal(t, int64(0), transactionCount(t, db, asset.ID))
}

func TestDeleteNonLatestTransactionRejected(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	asset := createStock(t, db, "AAPL", 0)

	first, err := ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionIn,
		Quantity: 40, Price: 10, TransactionDate: "2024-01-10",
	})
	require.NoError(t, err)
	_, err = ledger.RecordTransaction(RecordTransactionInput{
		AssetID: asset.ID, TransactionType: models.TransactionIn,
		Quantity: 60, Price: 11, TransactionDate: "2024-01-11",
	})
	require.NoError(t, err)

	// 删除中间记录会破坏 holding 链
	err = ledger.DeleteTransaction(first.ID)
	require.ErrorIs(t, err, ErrTransactionNotLatest)
	assert.Equal(t, 100.0, assetQuantity(t, db, asset.ID))
	assert.Equal(t, int64(2), transactionCount(t, db, asset.ID))
}

func TestDeleteMissingTransaction(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	err := ledger.DeleteTransaction(99999)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}
