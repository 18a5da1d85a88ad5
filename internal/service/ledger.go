package service

import (
	"errors"
	"fmt"

	"github.com/RichardCTT/Portfolio-Management/internal/models"
	"github.com/RichardCTT/Portfolio-Management/internal/util"

	"gorm.io/gorm"
)

// LedgerService 是唯一允许改动持仓的组件
// 所有操作都在单个数据库事务里完成，保证资产的 quantity
// 始终等于其最新一条交易记录的 holding
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// RecordTransactionInput 手工记账的入参
type RecordTransactionInput struct {
	AssetID         uint
	TransactionType string
	Quantity        float64
	Price           float64
	TransactionDate string // YYYY-MM-DD
	Description     string
}

// TradeResult 买入/卖出的结果
// Amount 为本次交易的总金额（买入成本或卖出所得），
// CashBalance 为交易后的现金余额
type TradeResult struct {
	Transaction     *models.Transaction
	CashTransaction *models.Transaction
	Amount          float64
	CashBalance     float64
}

// RecordTransaction 插入一条交易记录并同步更新资产持仓
func (s *LedgerService) RecordTransaction(in RecordTransactionInput) (*models.Transaction, error) {
	if in.TransactionType != models.TransactionIn && in.TransactionType != models.TransactionOut {
		return nil, ErrInvalidTransactionType
	}
	if !util.IsValidQuantity(in.Quantity) {
		return nil, ErrInvalidQuantity
	}
	if err := util.ValidateDate(in.TransactionDate); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDateRange, err)
	}

	var created *models.Transaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = applyTransaction(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// applyTransaction 在已开启的事务里执行一次记账：
// 读取资产当前持仓，计算交易后的 holding，插入交易记录并回写资产
func applyTransaction(tx *gorm.DB, in RecordTransactionInput) (*models.Transaction, error) {
	var asset models.Asset
	if err := tx.First(&asset, in.AssetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("load asset: %w", err)
	}

	// 现金结算账户按分记账和比较，普通资产按六位数量精度；
	// 现金出账用舍入后的余额判断，亚分误差不能造成假性资金不足
	var holding float64
	switch {
	case in.TransactionType == models.TransactionIn && asset.IsSettlement:
		holding = util.AddCurrency(asset.Quantity, in.Quantity)
	case in.TransactionType == models.TransactionIn:
		holding = util.AddQuantity(asset.Quantity, in.Quantity)
	case asset.IsSettlement:
		if !util.HasSufficientFunds(asset.Quantity, in.Quantity) {
			return nil, ErrInsufficientFunds
		}
		holding = util.SubtractCurrency(asset.Quantity, in.Quantity)
	default:
		holding = util.SubtractQuantity(asset.Quantity, in.Quantity)
		if holding < 0 {
			return nil, ErrInsufficientHolding
		}
	}

	record := models.Transaction{
		AssetID:         asset.ID,
		TransactionType: in.TransactionType,
		Quantity:        util.RoundQuantity(in.Quantity),
		Price:           util.RoundPrice(in.Price),
		TransactionDate: in.TransactionDate,
		Holding:         holding,
		Description:     in.Description,
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Model(&models.Asset{}).
		Where("id = ?", asset.ID).
		Update("quantity", holding).Error; err != nil {
		return nil, fmt.Errorf("update asset quantity: %w", err)
	}

	return &record, nil
}

// Buy 按指定日期的价格买入资产，现金账户同步出账
// 要求当天存在价格记录，不做就近价格回退
func (s *LedgerService) Buy(assetID uint, quantity float64, date, description string) (*TradeResult, error) {
	if !util.IsValidQuantity(quantity) {
		return nil, ErrInvalidQuantity
	}
	if err := util.ValidateDate(date); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDateRange, err)
	}

	var result TradeResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		asset, cash, price, err := s.prepareTrade(tx, assetID, date)
		if err != nil {
			return err
		}

		cost := util.Total(price, quantity)
		if !util.HasSufficientFunds(cash.Quantity, cost) {
			return ErrInsufficientFunds
		}

		assetTx, err := applyTransaction(tx, RecordTransactionInput{
			AssetID:         asset.ID,
			TransactionType: models.TransactionIn,
			Quantity:        quantity,
			Price:           price,
			TransactionDate: date,
			Description:     description,
		})
		if err != nil {
			return err
		}

		cashTx, err := applyTransaction(tx, RecordTransactionInput{
			AssetID:         cash.ID,
			TransactionType: models.TransactionOut,
			Quantity:        cost,
			Price:           1,
			TransactionDate: date,
			Description:     fmt.Sprintf("Buy %s x%g", asset.Code, util.RoundQuantity(quantity)),
		})
		if err != nil {
			return err
		}

		result = TradeResult{
			Transaction:     assetTx,
			CashTransaction: cashTx,
			Amount:          cost,
			CashBalance:     cashTx.Holding,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Sell 按指定日期的价格卖出资产，所得计入现金账户
func (s *LedgerService) Sell(assetID uint, quantity float64, date, description string) (*TradeResult, error) {
	if !util.IsValidQuantity(quantity) {
		return nil, ErrInvalidQuantity
	}
	if err := util.ValidateDate(date); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDateRange, err)
	}

	var result TradeResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		asset, cash, price, err := s.prepareTrade(tx, assetID, date)
		if err != nil {
			return err
		}

		if util.SubtractQuantity(asset.Quantity, quantity) < 0 {
			return ErrInsufficientHolding
		}
		proceeds := util.Total(price, quantity)

		assetTx, err := applyTransaction(tx, RecordTransactionInput{
			AssetID:         asset.ID,
			TransactionType: models.TransactionOut,
			Quantity:        quantity,
			Price:           price,
			TransactionDate: date,
			Description:     description,
		})
		if err != nil {
			return err
		}

		cashTx, err := applyTransaction(tx, RecordTransactionInput{
			AssetID:         cash.ID,
			TransactionType: models.TransactionIn,
			Quantity:        proceeds,
			Price:           1,
			TransactionDate: date,
			Description:     fmt.Sprintf("Sell %s x%g", asset.Code, util.RoundQuantity(quantity)),
		})
		if err != nil {
			return err
		}

		result = TradeResult{
			Transaction:     assetTx,
			CashTransaction: cashTx,
			Amount:          proceeds,
			CashBalance:     cashTx.Holding,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// prepareTrade 加载交易资产、现金账户和当日价格
func (s *LedgerService) prepareTrade(tx *gorm.DB, assetID uint, date string) (*models.Asset, *models.Asset, float64, error) {
	var asset models.Asset
	if err := tx.First(&asset, assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, 0, ErrAssetNotFound
		}
		return nil, nil, 0, fmt.Errorf("load asset: %w", err)
	}
	if asset.IsSettlement {
		return nil, nil, 0, ErrTradeSettlementAsset
	}

	var cash models.Asset
	if err := tx.Where("is_settlement = ?", true).First(&cash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, 0, ErrSettlementNotFound
		}
		return nil, nil, 0, fmt.Errorf("load settlement account: %w", err)
	}

	var price models.PriceDaily
	if err := tx.Where("asset_id = ? AND date = ?", assetID, date).First(&price).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, 0, ErrPriceNotFound
		}
		return nil, nil, 0, fmt.Errorf("load price: %w", err)
	}

	return &asset, &cash, price.Price, nil
}

// DeleteTransaction 删除一条交易记录
// 只允许删除资产最新的一条记录，并把持仓回滚到上一条记录的 holding
// （删除中间记录会让后续 holding 链失真，直接拒绝）
func (s *LedgerService) DeleteTransaction(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var record models.Transaction
		if err := tx.First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return fmt.Errorf("load transaction: %w", err)
		}

		var latest models.Transaction
		if err := tx.Where("asset_id = ?", record.AssetID).
			Order("transaction_date DESC, id DESC").
			First(&latest).Error; err != nil {
			return fmt.Errorf("load latest transaction: %w", err)
		}
		if latest.ID != record.ID {
			return ErrTransactionNotLatest
		}

		// 上一条记录的 holding 即回滚目标，没有上一条则回到 0
		var rollback float64
		var prev models.Transaction
		err := tx.Where("asset_id = ? AND (transaction_date < ? OR (transaction_date = ? AND id < ?))",
			record.AssetID, record.TransactionDate, record.TransactionDate, record.ID).
			Order("transaction_date DESC, id DESC").
			First(&prev).Error
		switch {
		case err == nil:
			rollback = prev.Holding
		case errors.Is(err, gorm.ErrRecordNotFound):
			rollback = 0
		default:
			return fmt.Errorf("load previous transaction: %w", err)
		}

		if err := tx.Model(&models.Asset{}).
			Where("id = ?", record.AssetID).
			Update("quantity", rollback).Error; err != nil {
			return fmt.Errorf("rollback asset quantity: %w", err)
		}

		if err := tx.Delete(&models.Transaction{}, record.ID).Error; err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return nil
	})
}
