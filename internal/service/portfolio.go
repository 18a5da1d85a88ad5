package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/RichardCTT/Portfolio-Management/internal/models"
	"github.com/RichardCTT/Portfolio-Management/internal/util"

	"gorm.io/gorm"
)

// PortfolioService 跨资产的组合分析
type PortfolioService struct {
	DB *gorm.DB
}

func NewPortfolioService(db *gorm.DB) *PortfolioService {
	return &PortfolioService{DB: db}
}

// typeKey 把资产类型名转成稳定的分组键："Foreign Currency" -> "foreigncurrency"
func typeKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

// AssetValue 按类型汇总中的单个资产
type AssetValue struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Code     string  `json:"code"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	ValueUSD float64 `json:"valueUSD"`
}

// TypeBucket 单个资产类型的汇总
type TypeBucket struct {
	Count      int          `json:"count"`
	TotalPrice float64      `json:"totalPrice"`
	Assets     []AssetValue `json:"assets"`
	TypeName   string       `json:"typeName"`
	Unit       string       `json:"unit"`
	Percentage float64      `json:"percentage"`
}

// AssetTotalsResult 按类型汇总的组合市值
type AssetTotalsResult struct {
	Date          string                 `json:"date"`
	TotalValueUSD float64                `json:"totalValueUSD"`
	AssetTypes    map[string]*TypeBucket `json:"assetTypes"`
	Summary       struct {
		TotalAssets   int     `json:"totalAssets"`
		TotalValueUSD float64 `json:"totalValueUSD"`
	} `json:"summary"`
}

// AssetTotalsByType 计算指定日期各类型资产的市值和占比
// 价格取该日期当天或之前最近的一条；总值为 0 时占比显式置 0
func (s *PortfolioService) AssetTotalsByType(date string) (*AssetTotalsResult, error) {
	if date == "" {
		date = util.CurrentDate()
	}
	if err := util.ValidateDate(date); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDateRange, err)
	}

	var assetTypes []models.AssetType
	if err := s.DB.Order("name").Find(&assetTypes).Error; err != nil {
		return nil, fmt.Errorf("load asset types: %w", err)
	}

	result := &AssetTotalsResult{
		Date:       date,
		AssetTypes: make(map[string]*TypeBucket, len(assetTypes)),
	}
	for _, t := range assetTypes {
		result.AssetTypes[typeKey(t.Name)] = &TypeBucket{
			Assets:   []AssetValue{},
			TypeName: t.Name,
			Unit:     t.Unit,
		}
	}

	type assetRow struct {
		ID            uint
		Name          string
		Code          string
		Quantity      float64
		AssetTypeName string
	}
	var assets []assetRow
	err := s.DB.Model(&models.Asset{}).
		Select("assets.id, assets.name, assets.code, assets.quantity, asset_types.name AS asset_type_name").
		Joins("JOIN asset_types ON asset_types.id = assets.asset_type_id").
		Where("assets.quantity > 0").
		Find(&assets).Error
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}

	if len(assets) > 0 {
		ids := make([]uint, 0, len(assets))
		for _, a := range assets {
			ids = append(ids, a.ID)
		}

		// 每个资产取 date 当天或之前最近的价格
		var priceRows []models.PriceDaily
		err = s.DB.Where("asset_id IN ? AND date <= ?", ids, date).
			Order("asset_id ASC, date DESC").
			Find(&priceRows).Error
		if err != nil {
			return nil, fmt.Errorf("load prices: %w", err)
		}
		priceMap := make(map[uint]float64, len(ids))
		for _, row := range priceRows {
			if _, ok := priceMap[row.AssetID]; !ok {
				priceMap[row.AssetID] = row.Price
			}
		}

		for _, a := range assets {
			price := priceMap[a.ID] // 没有价格记录按 0 计
			value := util.Total(price, a.Quantity)

			key := typeKey(a.AssetTypeName)
			bucket, ok := result.AssetTypes[key]
			if !ok {
				bucket = &TypeBucket{Assets: []AssetValue{}, TypeName: a.AssetTypeName}
				result.AssetTypes[key] = bucket
			}
			bucket.Count++
			bucket.TotalPrice = util.AddCurrency(bucket.TotalPrice, value)
			bucket.Assets = append(bucket.Assets, AssetValue{
				ID:       a.ID,
				Name:     a.Name,
				Code:     a.Code,
				Quantity: a.Quantity,
				Price:    util.RoundPrice(price),
				ValueUSD: value,
			})

			result.TotalValueUSD = util.AddCurrency(result.TotalValueUSD, value)
		}
	}

	for _, bucket := range result.AssetTypes {
		if result.TotalValueUSD > 0 {
			bucket.Percentage = util.RoundPercentage(bucket.TotalPrice / result.TotalValueUSD * 100)
		} else {
			bucket.Percentage = 0
		}
	}

	result.Summary.TotalAssets = len(assets)
	result.Summary.TotalValueUSD = result.TotalValueUSD
	return result, nil
}

// TypeTransaction 按类型查询时返回的交易记录（带资产信息）
type TypeTransaction struct {
	ID              uint    `json:"id"`
	AssetID         uint    `json:"asset_id"`
	AssetName       string  `json:"asset_name"`
	AssetCode       string  `json:"asset_code"`
	AssetTypeName   string  `json:"asset_type_name"`
	TransactionType string  `json:"transaction_type"`
	Quantity        float64 `json:"quantity"`
	Price           float64 `json:"price"`
	TransactionDate string  `json:"transaction_date"`
	Holding         float64 `json:"holding"`
	Description     string  `json:"description"`
}

// TypeTransactionSummary 按类型的交易汇总，net = IN − OUT
type TypeTransactionSummary struct {
	TotalInQuantity  float64 `json:"total_in_quantity"`
	TotalOutQuantity float64 `json:"total_out_quantity"`
	NetQuantity      float64 `json:"net_quantity"`
	TotalInValue     float64 `json:"total_in_value"`
	TotalOutValue    float64 `json:"total_out_value"`
	NetValue         float64 `json:"net_value"`
}

// DateRangeFilter 可选的日期过滤条件
type DateRangeFilter struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// TransactionsByTypeResult 某资产类型下全部交易及汇总
type TransactionsByTypeResult struct {
	AssetTypeID       uint                   `json:"asset_type_id"`
	AssetTypeName     string                 `json:"asset_type_name"`
	DateRange         *DateRangeFilter       `json:"date_range"`
	TotalTransactions int                    `json:"total_transactions"`
	Transactions      []TypeTransaction      `json:"transactions"`
	Summary           TypeTransactionSummary `json:"summary"`
}

// TransactionsByType 查询某资产类型下所有资产的交易记录
// startDate / endDate 为空表示不限制
func (s *PortfolioService) TransactionsByType(assetTypeID uint, startDate, endDate string) (*TransactionsByTypeResult, error) {
	if startDate != "" {
		if err := util.ValidateDate(startDate); err != nil {
			return nil, fmt.Errorf("%w: start date: %s", ErrInvalidDateRange, err)
		}
	}
	if endDate != "" {
		if err := util.ValidateDate(endDate); err != nil {
			return nil, fmt.Errorf("%w: end date: %s", ErrInvalidDateRange, err)
		}
	}
	if startDate != "" && endDate != "" && startDate > endDate {
		return nil, fmt.Errorf("%w: start date %s is after end date %s", ErrInvalidDateRange, startDate, endDate)
	}

	var assetType models.AssetType
	if err := s.DB.First(&assetType, assetTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetTypeNotFound
		}
		return nil, fmt.Errorf("load asset type: %w", err)
	}

	result := &TransactionsByTypeResult{
		AssetTypeID:   assetType.ID,
		AssetTypeName: assetType.Name,
		Transactions:  []TypeTransaction{},
	}
	if startDate != "" || endDate != "" {
		result.DateRange = &DateRangeFilter{StartDate: startDate, EndDate: endDate}
	}

	query := s.DB.Model(&models.Transaction{}).
		Select(`transactions.id, transactions.asset_id, assets.name AS asset_name,
			assets.code AS asset_code, asset_types.name AS asset_type_name,
			transactions.transaction_type, transactions.quantity, transactions.price,
			transactions.transaction_date, transactions.holding, transactions.description`).
		Joins("JOIN assets ON assets.id = transactions.asset_id").
		Joins("JOIN asset_types ON asset_types.id = assets.asset_type_id").
		Where("assets.asset_type_id = ?", assetTypeID)
	if startDate != "" {
		query = query.Where("transactions.transaction_date >= ?", startDate)
	}
	if endDate != "" {
		query = query.Where("transactions.transaction_date <= ?", endDate)
	}

	if err := query.Order("transactions.transaction_date DESC, transactions.id DESC").
		Find(&result.Transactions).Error; err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	summary := &result.Summary
	for _, t := range result.Transactions {
		value := util.Total(t.Price, t.Quantity)
		if t.TransactionType == models.TransactionIn {
			summary.TotalInQuantity += t.Quantity
			summary.TotalInValue = util.AddCurrency(summary.TotalInValue, value)
		} else {
			summary.TotalOutQuantity += t.Quantity
			summary.TotalOutValue = util.AddCurrency(summary.TotalOutValue, value)
		}
	}
	summary.TotalInQuantity = util.RoundTo(summary.TotalInQuantity, 4)
	summary.TotalOutQuantity = util.RoundTo(summary.TotalOutQuantity, 4)
	summary.NetQuantity = util.RoundTo(summary.TotalInQuantity-summary.TotalOutQuantity, 4)
	summary.NetValue = util.SubtractCurrency(summary.TotalInValue, summary.TotalOutValue)

	result.TotalTransactions = len(result.Transactions)
	return result, nil
}

// PortfolioSummaryResult 首页汇总：总市值与盈亏
type PortfolioSummaryResult struct {
	TotalAssetValue           float64 `json:"total_asset_value"`
	TotalProfitLoss           float64 `json:"total_profit_loss"`
	TodayProfitLoss           float64 `json:"today_profit_loss"`
	TotalProfitLossPercentage float64 `json:"total_profit_loss_percentage"`
	TodayProfitLossPercentage float64 `json:"today_profit_loss_percentage"`
}

// Summary 计算组合总市值、累计盈亏（相对加权买入均价）和
// 当日盈亏（相对上一个价格日的市值）
func (s *PortfolioService) Summary() (*PortfolioSummaryResult, error) {
	var assets []models.Asset
	if err := s.DB.Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}

	// 全局最新价格日，用来界定"昨天"
	var latestDate string
	if err := s.DB.Model(&models.PriceDaily{}).
		Select("COALESCE(MAX(date), '')").
		Scan(&latestDate).Error; err != nil {
		return nil, fmt.Errorf("load latest price date: %w", err)
	}

	result := &PortfolioSummaryResult{}
	var costBasis, yesterdayValue float64

	for _, a := range assets {
		todayPrice, err := s.latestPrice(a.ID, "")
		if err != nil {
			return nil, err
		}
		todayValue := util.Total(todayPrice, a.Quantity)
		result.TotalAssetValue = util.AddCurrency(result.TotalAssetValue, todayValue)

		if latestDate != "" {
			yPrice, err := s.latestPriceBefore(a.ID, latestDate)
			if err != nil {
				return nil, err
			}
			yesterdayValue = util.AddCurrency(yesterdayValue, util.Total(yPrice, a.Quantity))
		}

		if a.Quantity > 0 {
			avgBuy, err := s.averageBuyPrice(a.ID)
			if err != nil {
				return nil, err
			}
			costBasis = util.AddCurrency(costBasis, util.Total(avgBuy, a.Quantity))
		}
	}

	result.TotalProfitLoss = util.SubtractCurrency(result.TotalAssetValue, costBasis)
	if costBasis > 0 {
		result.TotalProfitLossPercentage = util.RoundPercentage(result.TotalProfitLoss / costBasis * 100)
	}

	result.TodayProfitLoss = util.SubtractCurrency(result.TotalAssetValue, yesterdayValue)
	if yesterdayValue > 0 {
		result.TodayProfitLossPercentage = util.RoundPercentage(result.TodayProfitLoss / yesterdayValue * 100)
	}

	return result, nil
}

// latestPrice 资产最新价格；date 非空时限定 date 当天或之前
func (s *PortfolioService) latestPrice(assetID uint, date string) (float64, error) {
	query := s.DB.Where("asset_id = ?", assetID)
	if date != "" {
		query = query.Where("date <= ?", date)
	}
	var row models.PriceDaily
	err := query.Order("date DESC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("load latest price: %w", err)
	}
	return row.Price, nil
}

// latestPriceBefore 严格早于 date 的最新价格
func (s *PortfolioService) latestPriceBefore(assetID uint, date string) (float64, error) {
	var row models.PriceDaily
	err := s.DB.Where("asset_id = ? AND date < ?", assetID, date).
		Order("date DESC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("load previous price: %w", err)
	}
	return row.Price, nil
}

// averageBuyPrice 数量加权的买入均价，没有买入记录时为 0
func (s *PortfolioService) averageBuyPrice(assetID uint) (float64, error) {
	var transactions []models.Transaction
	err := s.DB.Where("asset_id = ? AND transaction_type = ?", assetID, models.TransactionIn).
		Find(&transactions).Error
	if err != nil {
		return 0, fmt.Errorf("load buy transactions: %w", err)
	}

	var totalValue, totalQty float64
	for _, t := range transactions {
		totalValue = util.AddCurrency(totalValue, util.Total(t.Price, t.Quantity))
		totalQty = util.AddQuantity(totalQty, t.Quantity)
	}
	if totalQty == 0 {
		return 0, nil
	}
	return totalValue / totalQty, nil
}

// HistoryPoint 某一天的组合总市值
type HistoryPoint struct {
	Date            string  `json:"date"`
	TotalAssetValue float64 `json:"total_asset_value"`
}

// TotalAssetsHistory 最近 10 个价格日的组合总市值序列
// 用资产当前持仓乘以各日价格，没有价格的资产当日按 0 计
func (s *PortfolioService) TotalAssetsHistory() ([]HistoryPoint, error) {
	var dates []string
	err := s.DB.Model(&models.PriceDaily{}).
		Distinct("date").
		Order("date DESC").
		Limit(10).
		Pluck("date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("load price dates: %w", err)
	}

	var assets []models.Asset
	if err := s.DB.Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}

	// 倒序查询，正序返回
	points := make([]HistoryPoint, 0, len(dates))
	for i := len(dates) - 1; i >= 0; i-- {
		date := dates[i]

		var priceRows []models.PriceDaily
		if err := s.DB.Where("date = ?", date).Find(&priceRows).Error; err != nil {
			return nil, fmt.Errorf("load prices: %w", err)
		}
		priceMap := make(map[uint]float64, len(priceRows))
		for _, row := range priceRows {
			priceMap[row.AssetID] = row.Price
		}

		total := 0.0
		for _, a := range assets {
			total = util.AddCurrency(total, util.Total(priceMap[a.ID], a.Quantity))
		}
		points = append(points, HistoryPoint{Date: date, TotalAssetValue: total})
	}

	return points, nil
}
