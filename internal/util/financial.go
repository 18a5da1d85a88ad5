package util

import (
	"math"

	"github.com/shopspring/decimal"
)

// 金融计算工具
// 所有跨边界（入库、出参、比较）的金额都要先经过这里的舍入函数，
// 内部用 decimal 计算，对外保持 float64 合约
// 精度约定：货币 2 位，价格 4 位，数量 6 位

const (
	currencyScale   = 2
	priceScale      = 4
	quantityScale   = 6
	percentageScale = 2
)

func round(v float64, scale int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(scale).Float64()
	return f
}

// RoundCurrency 货币金额保留两位小数
func RoundCurrency(amount float64) float64 {
	return round(amount, currencyScale)
}

// RoundQuantity 资产数量保留六位小数
func RoundQuantity(quantity float64) float64 {
	return round(quantity, quantityScale)
}

// RoundPrice 价格保留四位小数
func RoundPrice(price float64) float64 {
	return round(price, priceScale)
}

// RoundPercentage 百分比保留两位小数
func RoundPercentage(value float64) float64 {
	return round(value, percentageScale)
}

// RoundTo 按指定小数位舍入
func RoundTo(value float64, places int32) float64 {
	return round(value, places)
}

// Total 计算交易总额 = 单价 × 数量，保留两位小数
func Total(price, quantity float64) float64 {
	f, _ := decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(quantity)).
		Round(currencyScale).Float64()
	return f
}

// AddCurrency 安全的货币加法
func AddCurrency(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).
		Round(currencyScale).Float64()
	return f
}

// SubtractCurrency 安全的货币减法
func SubtractCurrency(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).
		Round(currencyScale).Float64()
	return f
}

// AddQuantity 安全的数量加法
func AddQuantity(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).
		Round(quantityScale).Float64()
	return f
}

// SubtractQuantity 安全的数量减法
func SubtractQuantity(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).
		Round(quantityScale).Float64()
	return f
}

// IsValidCurrency 金额必须是有限非负数
func IsValidCurrency(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount >= 0
}

// IsValidQuantity 数量必须是有限正数
func IsValidQuantity(quantity float64) bool {
	return !math.IsNaN(quantity) && !math.IsInf(quantity, 0) && quantity > 0
}

// CurrencyEquals 比较两个金额是否相等（按分）
func CurrencyEquals(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(currencyScale).
		Equal(decimal.NewFromFloat(b).Round(currencyScale))
}

// HasSufficientFunds 检查余额是否足够
// 比较的是舍入后的值，避免浮点表示误差造成的误判
func HasSufficientFunds(available, required float64) bool {
	return decimal.NewFromFloat(available).Round(currencyScale).
		GreaterThanOrEqual(decimal.NewFromFloat(required).Round(currencyScale))
}
