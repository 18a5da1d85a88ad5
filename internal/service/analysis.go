package service

import (
	"errors"
	"fmt"

	"github.com/RichardCTT/Portfolio-Management/internal/models"
	"github.com/RichardCTT/Portfolio-Management/internal/util"

	"gorm.io/gorm"
)

// AnalysisService 只读的持仓重放与市值分析引擎
// 历史持仓不从资产当前数量推算，而是从开始日期前最后一条
// 交易的 holding 出发，按 (transaction_date, id) 顺序重放得到
type AnalysisService struct {
	DB *gorm.DB
}

func NewAnalysisService(db *gorm.DB) *AnalysisService {
	return &AnalysisService{DB: db}
}

// AssetInfo 分析结果中的资产基本信息
type AssetInfo struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	AssetTypeName string `json:"asset_type_name"`
	Unit          string `json:"unit"`
}

// AnalysisPeriod 分析的时间区间（含两端）
type AnalysisPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

// TransactionDetail 单日交易明细
type TransactionDetail struct {
	ID          uint    `json:"id"`
	Type        string  `json:"type"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	TotalValue  float64 `json:"total_value"`
	Description string  `json:"description"`
}

// DailyHolding 某一天的持仓快照
// Price / MarketValue 在当天没有价格记录时为 null，不做前后填充
type DailyHolding struct {
	Date              string              `json:"date"`
	HoldingStart      float64             `json:"holding_start"`
	HoldingEnd        float64             `json:"holding_end"`
	Change            float64             `json:"change"`
	Transactions      []TransactionDetail `json:"transactions"`
	Price             *float64            `json:"price"`
	MarketValue       *float64            `json:"market_value"`
	HasTransactions   bool                `json:"has_transactions"`
	TransactionsCount int                 `json:"transactions_count"`
}

// PeriodSummary 区间内买卖统计
// 均价为数量加权平均，区间内该方向无交易时为 null
type PeriodSummary struct {
	TotalBuyTransactions  int      `json:"total_buy_transactions"`
	TotalSellTransactions int      `json:"total_sell_transactions"`
	TotalBuyQuantity      float64  `json:"total_buy_quantity"`
	TotalSellQuantity     float64  `json:"total_sell_quantity"`
	AverageBuyPrice       *float64 `json:"average_buy_price"`
	AverageSellPrice      *float64 `json:"average_sell_price"`
}

// HoldingAnalysis 持仓重放的完整结果
type HoldingAnalysis struct {
	InitialHolding float64        `json:"initial_holding"`
	FinalHolding   float64        `json:"final_holding"`
	TotalChange    float64        `json:"total_change"`
	DailyAnalysis  []DailyHolding `json:"daily_analysis"`
	PeriodSummary  PeriodSummary  `json:"period_summary"`
}

// AnalysisSummary 汇总信息（summary 接口只返回这一部分）
type AnalysisSummary struct {
	InitialHolding    float64 `json:"initial_holding"`
	FinalHolding      float64 `json:"final_holding"`
	TotalChange       float64 `json:"total_change"`
	TransactionsCount int     `json:"transactions_count"`
	PriceDataPoints   int     `json:"price_data_points"`
}

// AssetHoldingResult 资产持仓分析的完整返回
type AssetHoldingResult struct {
	AssetInfo       AssetInfo       `json:"asset_info"`
	AnalysisPeriod  AnalysisPeriod  `json:"analysis_period"`
	HoldingAnalysis HoldingAnalysis `json:"holding_analysis"`
	Summary         AnalysisSummary `json:"summary"`
}

// AssetHoldingAnalysis 重放 [startDate, endDate] 内的交易，
// 生成逐日持仓序列并按当日价格折算市值
func (s *AnalysisService) AssetHoldingAnalysis(assetID uint, startDate, endDate string) (*AssetHoldingResult, error) {
	if err := util.ValidateDateRange(startDate, endDate); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDateRange, err)
	}

	info, err := s.assetInfo(assetID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionsInRange(assetID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	priceMap, pricePoints, err := s.pricesInRange(assetID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	initialHolding, err := s.holdingBefore(assetID, startDate)
	if err != nil {
		return nil, err
	}

	analysis := replayHoldings(initialHolding, transactions, priceMap, startDate, endDate)

	return &AssetHoldingResult{
		AssetInfo: *info,
		AnalysisPeriod: AnalysisPeriod{
			StartDate: startDate,
			EndDate:   endDate,
			Days:      util.DaysBetween(startDate, endDate) + 1,
		},
		HoldingAnalysis: analysis,
		Summary: AnalysisSummary{
			InitialHolding:    util.RoundQuantity(initialHolding),
			FinalHolding:      util.RoundQuantity(analysis.FinalHolding),
			TotalChange:       util.RoundQuantity(analysis.TotalChange),
			TransactionsCount: len(transactions),
			PriceDataPoints:   pricePoints,
		},
	}, nil
}

func (s *AnalysisService) assetInfo(assetID uint) (*AssetInfo, error) {
	var info AssetInfo
	err := s.DB.Model(&models.Asset{}).
		Select("assets.id, assets.name, assets.code, asset_types.name AS asset_type_name, asset_types.unit").
		Joins("JOIN asset_types ON asset_types.id = assets.asset_type_id").
		Where("assets.id = ?", assetID).
		Take(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("load asset info: %w", err)
	}
	return &info, nil
}

func (s *AnalysisService) transactionsInRange(assetID uint, startDate, endDate string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := s.DB.Where("asset_id = ? AND transaction_date >= ? AND transaction_date <= ?",
		assetID, startDate, endDate).
		Order("transaction_date ASC, id ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return transactions, nil
}

func (s *AnalysisService) pricesInRange(assetID uint, startDate, endDate string) (map[string]float64, int, error) {
	var prices []models.PriceDaily
	err := s.DB.Where("asset_id = ? AND date >= ? AND date <= ?", assetID, startDate, endDate).
		Order("date ASC").
		Find(&prices).Error
	if err != nil {
		return nil, 0, fmt.Errorf("load prices: %w", err)
	}
	priceMap := make(map[string]float64, len(prices))
	for _, p := range prices {
		priceMap[p.Date] = p.Price
	}
	return priceMap, len(prices), nil
}

// holdingBefore 返回 date 之前（不含当天）最后一条交易的 holding，没有则为 0
func (s *AnalysisService) holdingBefore(assetID uint, date string) (float64, error) {
	var record models.Transaction
	err := s.DB.Where("asset_id = ? AND transaction_date < ?", assetID, date).
		Order("transaction_date DESC, id DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("load initial holding: %w", err)
	}
	return record.Holding, nil
}

// replayHoldings 从期初持仓出发逐日重放
// 每天的期末持仓取当天最后一条交易记录里存储的 holding，
// 不用 running+dayChange 推算，以存储值为准
func replayHoldings(initialHolding float64, transactions []models.Transaction, priceMap map[string]float64, startDate, endDate string) HoldingAnalysis {
	byDate := make(map[string][]models.Transaction)
	for _, t := range transactions {
		byDate[t.TransactionDate] = append(byDate[t.TransactionDate], t)
	}

	currentHolding := initialHolding
	var daily []DailyHolding

	for _, date := range util.DateRange(startDate, endDate) {
		dayTransactions := byDate[date]

		dayChange := 0.0
		details := make([]TransactionDetail, 0, len(dayTransactions))
		for _, t := range dayTransactions {
			if t.TransactionType == models.TransactionIn {
				dayChange = util.AddQuantity(dayChange, t.Quantity)
			} else {
				dayChange = util.SubtractQuantity(dayChange, t.Quantity)
			}
			currentHolding = t.Holding

			details = append(details, TransactionDetail{
				ID:          t.ID,
				Type:        t.TransactionType,
				Quantity:    util.RoundQuantity(t.Quantity),
				Price:       util.RoundPrice(t.Price),
				TotalValue:  util.Total(t.Price, t.Quantity),
				Description: t.Description,
			})
		}

		day := DailyHolding{
			Date:              date,
			HoldingStart:      util.SubtractQuantity(currentHolding, dayChange),
			HoldingEnd:        util.RoundQuantity(currentHolding),
			Change:            util.RoundQuantity(dayChange),
			Transactions:      details,
			HasTransactions:   len(dayTransactions) > 0,
			TransactionsCount: len(dayTransactions),
		}

		if price, ok := priceMap[date]; ok {
			p := util.RoundPrice(price)
			mv := util.Total(price, currentHolding)
			day.Price = &p
			day.MarketValue = &mv
		}

		daily = append(daily, day)
	}

	summary := PeriodSummary{}
	var buyValue, buyQty, sellValue, sellQty float64
	for _, t := range transactions {
		if t.TransactionType == models.TransactionIn {
			summary.TotalBuyTransactions++
			buyQty = util.AddQuantity(buyQty, t.Quantity)
			buyValue = util.AddCurrency(buyValue, util.Total(t.Price, t.Quantity))
		} else {
			summary.TotalSellTransactions++
			sellQty = util.AddQuantity(sellQty, t.Quantity)
			sellValue = util.AddCurrency(sellValue, util.Total(t.Price, t.Quantity))
		}
	}
	summary.TotalBuyQuantity = buyQty
	summary.TotalSellQuantity = sellQty
	if buyQty > 0 {
		avg := util.RoundCurrency(buyValue / buyQty)
		summary.AverageBuyPrice = &avg
	}
	if sellQty > 0 {
		avg := util.RoundCurrency(sellValue / sellQty)
		summary.AverageSellPrice = &avg
	}

	return HoldingAnalysis{
		InitialHolding: util.RoundQuantity(initialHolding),
		FinalHolding:   util.RoundQuantity(currentHolding),
		TotalChange:    util.SubtractQuantity(currentHolding, initialHolding),
		DailyAnalysis:  daily,
		PeriodSummary:  summary,
	}
}

// CashBalanceDetail 现金流水明细
type CashBalanceDetail struct {
	Type            string  `json:"type"`
	Quantity        float64 `json:"quantity"`
	Description     string  `json:"description"`
	TransactionDate string  `json:"transaction_date"`
}

// DailyBalance 某一天的现金余额
type DailyBalance struct {
	Date              string              `json:"date"`
	HoldingStart      float64             `json:"holding_start"`
	HoldingEnd        float64             `json:"holding_end"`
	DailyChange       float64             `json:"daily_change"`
	Transactions      []CashBalanceDetail `json:"transactions"`
	TransactionsCount int                 `json:"transactions_count"`
	HasTransactions   bool                `json:"has_transactions"`
}

// CashBalanceSummary 现金流水汇总
type CashBalanceSummary struct {
	TotalInAmount     float64 `json:"total_in_amount"`
	TotalOutAmount    float64 `json:"total_out_amount"`
	TotalTransactions int     `json:"total_transactions"`
	DaysWithActivity  int     `json:"days_with_activity"`
}

// CashBalancePeriod 现金分析区间
type CashBalancePeriod struct {
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Days       int    `json:"days"`
	ActualDays int    `json:"actual_days"`
}

// DailyCashBalanceResult 每日现金余额分析结果
type DailyCashBalanceResult struct {
	AssetInfo      CashAssetInfo      `json:"asset_info"`
	AnalysisPeriod CashBalancePeriod  `json:"analysis_period"`
	InitialHolding float64            `json:"initial_holding"`
	FinalHolding   float64            `json:"final_holding"`
	TotalChange    float64            `json:"total_change"`
	DailyBalances  []DailyBalance     `json:"daily_balances"`
	Summary        CashBalanceSummary `json:"summary"`
}

// CashAssetInfo 现金账户信息
type CashAssetInfo struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
	Type string `json:"type"`
}

// DailyCashBalance 对现金结算账户做持仓重放，
// 区间为 [今天-days, 今天]
func (s *AnalysisService) DailyCashBalance(days int) (*DailyCashBalanceResult, error) {
	if days <= 0 {
		days = 30
	}

	endDate := util.CurrentDate()
	startDate := util.DaysAgo(days)

	var cash models.Asset
	if err := s.DB.Where("is_settlement = ?", true).First(&cash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettlementNotFound
		}
		return nil, fmt.Errorf("load settlement account: %w", err)
	}

	transactions, err := s.transactionsInRange(cash.ID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	initialHolding, err := s.holdingBefore(cash.ID, startDate)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]models.Transaction)
	for _, t := range transactions {
		byDate[t.TransactionDate] = append(byDate[t.TransactionDate], t)
	}

	dates := util.DateRange(startDate, endDate)
	currentHolding := initialHolding
	daysWithActivity := 0
	var balances []DailyBalance

	for _, date := range dates {
		dayTransactions := byDate[date]

		dayChange := 0.0
		details := make([]CashBalanceDetail, 0, len(dayTransactions))
		for _, t := range dayTransactions {
			if t.TransactionType == models.TransactionIn {
				dayChange = util.AddCurrency(dayChange, t.Quantity)
			} else {
				dayChange = util.SubtractCurrency(dayChange, t.Quantity)
			}
			currentHolding = t.Holding

			details = append(details, CashBalanceDetail{
				Type:            t.TransactionType,
				Quantity:        util.RoundCurrency(t.Quantity),
				Description:     t.Description,
				TransactionDate: t.TransactionDate,
			})
		}

		if len(dayTransactions) > 0 {
			daysWithActivity++
		}

		balances = append(balances, DailyBalance{
			Date:              date,
			HoldingStart:      util.SubtractCurrency(currentHolding, dayChange),
			HoldingEnd:        util.RoundCurrency(currentHolding),
			DailyChange:       util.RoundCurrency(dayChange),
			Transactions:      details,
			TransactionsCount: len(dayTransactions),
			HasTransactions:   len(dayTransactions) > 0,
		})
	}

	var totalIn, totalOut float64
	for _, t := range transactions {
		if t.TransactionType == models.TransactionIn {
			totalIn = util.AddCurrency(totalIn, t.Quantity)
		} else {
			totalOut = util.AddCurrency(totalOut, t.Quantity)
		}
	}

	return &DailyCashBalanceResult{
		AssetInfo: CashAssetInfo{
			ID:   cash.ID,
			Name: cash.Name,
			Code: cash.Code,
			Type: "Cash",
		},
		AnalysisPeriod: CashBalancePeriod{
			StartDate:  startDate,
			EndDate:    endDate,
			Days:       days,
			ActualDays: len(dates),
		},
		InitialHolding: util.RoundCurrency(initialHolding),
		FinalHolding:   util.RoundCurrency(currentHolding),
		TotalChange:    util.SubtractCurrency(currentHolding, initialHolding),
		DailyBalances:  balances,
		Summary: CashBalanceSummary{
			TotalInAmount:     totalIn,
			TotalOutAmount:    totalOut,
			TotalTransactions: len(transactions),
			DaysWithActivity:  daysWithActivity,
		},
	}, nil
}
