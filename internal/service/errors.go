package service

import "errors"

// 业务错误，handler 层用 errors.Is 映射到 HTTP 状态码
var (
	ErrAssetNotFound          = errors.New("asset not found")
	ErrAssetTypeNotFound      = errors.New("asset type not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrPriceNotFound          = errors.New("no price record for the requested date")
	ErrSettlementNotFound     = errors.New("settlement account not found")
	ErrInsufficientHolding    = errors.New("insufficient asset holding")
	ErrInsufficientFunds      = errors.New("insufficient cash funds")
	ErrInvalidQuantity        = errors.New("quantity must be a positive finite number")
	ErrInvalidTransactionType = errors.New("transaction type must be IN or OUT")
	ErrInvalidDateRange       = errors.New("invalid date range")
	ErrAssetHasTransactions   = errors.New("asset has associated transactions")
	ErrAssetTypeHasAssets     = errors.New("asset type has associated assets")
	ErrTransactionNotLatest   = errors.New("only the latest transaction of an asset can be deleted")
	ErrTradeSettlementAsset   = errors.New("settlement account cannot be traded directly")
)
