package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/RichardCTT/Portfolio-Management/internal/models"
	"github.com/RichardCTT/Portfolio-Management/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler 负责账本导出
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

type exportRow struct {
	ID              uint
	AssetName       string
	AssetCode       string
	TransactionType string
	Quantity        float64
	Price           float64
	TransactionDate string
	Holding         float64
	Description     string
}

func (h *ExportHandler) loadRows(c *gin.Context) ([]exportRow, bool) {
	query := h.DB.Model(&models.Transaction{}).
		Select(`transactions.id, assets.name AS asset_name, assets.code AS asset_code,
			transactions.transaction_type, transactions.quantity, transactions.price,
			transactions.transaction_date, transactions.holding, transactions.description`).
		Joins("JOIN assets ON assets.id = transactions.asset_id")

	if assetIDStr := c.Query("asset_id"); assetIDStr != "" {
		assetID, err := strconv.Atoi(assetIDStr)
		if err != nil || assetID <= 0 {
			util.Error(c, http.StatusBadRequest, "asset_id 不合法")
			return nil, false
		}
		query = query.Where("transactions.asset_id = ?", assetID)
	}

	var rows []exportRow
	if err := query.Order("transactions.transaction_date ASC, transactions.id ASC").
		Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "查询失败")
		return nil, false
	}
	return rows, true
}

var exportHeader = []string{"ID", "Asset", "Code", "Type", "Quantity", "Price", "Date", "Holding", "Description"}

func (r exportRow) cells() []string {
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		r.AssetName,
		r.AssetCode,
		r.TransactionType,
		strconv.FormatFloat(r.Quantity, 'f', 6, 64),
		strconv.FormatFloat(r.Price, 'f', 4, 64),
		r.TransactionDate,
		strconv.FormatFloat(r.Holding, 'f', 6, 64),
		r.Description,
	}
}

// ExportCSV 导出交易流水为 CSV
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	rows, ok := h.loadRows(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// UTF-8 BOM（让 Excel 正确识别编码）
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer.Write(exportHeader)
	for _, r := range rows {
		writer.Write(r.cells())
	}
}

// ExportXLSX 导出交易流水为 XLSX
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	rows, ok := h.loadRows(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Transactions"
	f.SetSheetName("Sheet1", sheet)

	for i, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	for rowIdx, r := range rows {
		values := []interface{}{
			r.ID, r.AssetName, r.AssetCode, r.TransactionType,
			r.Quantity, r.Price, r.TransactionDate, r.Holding, r.Description,
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, "导出失败")
		return
	}
}
