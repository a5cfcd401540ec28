package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"flashbill/database"
	"flashbill/middleware"
	"flashbill/models"
	"flashbill/report"
	"flashbill/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const exportTimeLayout = "2006-01-02 15:04:05"

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

type exportQuery struct {
	ledgerID string
	month    report.Month
	loc      *time.Location
}

// parseExportQuery 导出需要指定账本与月份
func parseExportQuery(c *gin.Context) (exportQuery, bool) {
	ledgerID, ok := ledgerIDQuery(c)
	if !ok {
		return exportQuery{}, false
	}
	if c.Query("month") == "" {
		BadRequest(c, "请提供导出月份")
		return exportQuery{}, false
	}
	month, ok := monthQuery(c)
	if !ok {
		return exportQuery{}, false
	}
	loc, ok := locationQuery(c)
	if !ok {
		return exportQuery{}, false
	}
	return exportQuery{ledgerID: ledgerID, month: month, loc: loc}, true
}

func (h *ExportHandler) fetch(c *gin.Context, q exportQuery) ([]models.Transaction, bool) {
	userID := middleware.GetCurrentUserID(c)
	txs, err := service.NewTransactionService(database.DB).FetchTransactions(c.Request.Context(), userID, q.ledgerID, q.month, q.loc)
	if err != nil {
		respondError(c, err, "查询数据失败")
		return nil, false
	}
	return txs, true
}

func transactionRow(t models.Transaction, loc *time.Location) []string {
	cat := models.LookupCategory(t.CategoryID)
	kind := "支出"
	if t.Type == models.TypeIncome {
		kind = "收入"
	}
	return []string{
		t.UUID,
		t.Date.In(loc).Format(exportTimeLayout),
		kind,
		cat.Label,
		models.FormatAmount(t.Amount),
		t.AccountID,
		t.Note,
	}
}

var exportHeaders = []string{"ID", "时间", "类型", "类别", "金额", "账户", "备注"}

// ExportCSV 导出某账本某月流水为 CSV
// @Summary 导出流水 CSV
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param ledger_id query string true "账本ID"
// @Param month query string true "月份 (2024-05)"
// @Param tz query string false "时区，默认服务器时区"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	q, ok := parseExportQuery(c)
	if !ok {
		return
	}
	txs, ok := h.fetch(c, q)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")
	writer := csv.NewWriter(buf)
	if err := writer.Write(exportHeaders); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}
	for _, t := range txs {
		if err := writer.Write(transactionRow(t, q.loc)); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("transactions_%s.csv", q.month)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出某账本某月流水为 Excel，含流水与类别汇总两个工作表
// @Summary 导出流水 Excel
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param ledger_id query string true "账本ID"
// @Param month query string true "月份 (2024-05)"
// @Param tz query string false "时区，默认服务器时区"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	q, ok := parseExportQuery(c)
	if !ok {
		return
	}
	txs, ok := h.fetch(c, q)
	if !ok {
		return
	}

	f, err := buildWorkbook(txs, q.loc)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成 Excel 失败"))
		return
	}
	defer f.Close()

	filename := url.PathEscape(fmt.Sprintf("流水_%s.xlsx", q.month))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		c.Error(err)
	}
}

const (
	sheetTransactions = "流水"
	sheetCategories   = "类别汇总"
)

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// buildWorkbook 生成导出工作簿
func buildWorkbook(txs []models.Transaction, loc *time.Location) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetTransactions); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(sheetCategories); err != nil {
		f.Close()
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})

	// 流水
	f.SetColWidth(sheetTransactions, "A", "A", 38)
	f.SetColWidth(sheetTransactions, "B", "B", 20)
	f.SetColWidth(sheetTransactions, "C", "F", 12)
	f.SetColWidth(sheetTransactions, "G", "G", 30)
	for i, header := range exportHeaders {
		cell := cellName(i+1, 1)
		f.SetCellValue(sheetTransactions, cell, header)
		f.SetCellStyle(sheetTransactions, cell, cell, headerStyle)
	}
	var income, expense int64
	for i, t := range txs {
		row := i + 2
		for j, v := range transactionRow(t, loc) {
			f.SetCellValue(sheetTransactions, cellName(j+1, row), v)
		}
		f.SetCellStyle(sheetTransactions, cellName(1, row), cellName(len(exportHeaders), row), dataStyle)
		if t.Type == models.TypeIncome {
			income += t.Amount
		} else {
			expense += t.Amount
		}
	}
	summaryRow := len(txs) + 2
	f.SetCellValue(sheetTransactions, cellName(1, summaryRow), "合计")
	f.SetCellValue(sheetTransactions, cellName(2, summaryRow), fmt.Sprintf("共 %d 条记录", len(txs)))
	f.SetCellValue(sheetTransactions, cellName(3, summaryRow), "收入 "+models.FormatAmount(income))
	f.SetCellValue(sheetTransactions, cellName(5, summaryRow), "支出 "+models.FormatAmount(expense))
	f.SetCellStyle(sheetTransactions, cellName(1, summaryRow), cellName(len(exportHeaders), summaryRow), summaryStyle)

	// 类别汇总，展示全部类别
	f.SetColWidth(sheetCategories, "A", "E", 14)
	catHeaders := []string{"类型", "类别", "金额", "笔数", "占比"}
	for i, header := range catHeaders {
		cell := cellName(i+1, 1)
		f.SetCellValue(sheetCategories, cell, header)
		f.SetCellStyle(sheetCategories, cell, cell, headerStyle)
	}
	row := 2
	all := len(txs) + 1
	for _, kind := range []models.TransactionType{models.TypeExpense, models.TypeIncome} {
		label := "支出"
		if kind == models.TypeIncome {
			label = "收入"
		}
		ranking := report.RankCategories(txs, kind, all)
		for _, e := range ranking.Entries {
			f.SetCellValue(sheetCategories, cellName(1, row), label)
			f.SetCellValue(sheetCategories, cellName(2, row), e.Label)
			f.SetCellValue(sheetCategories, cellName(3, row), models.FormatAmount(e.Amount))
			f.SetCellValue(sheetCategories, cellName(4, row), e.Count)
			f.SetCellValue(sheetCategories, cellName(5, row), fmt.Sprintf("%.1f%%", e.Percentage))
			f.SetCellStyle(sheetCategories, cellName(1, row), cellName(5, row), dataStyle)
			row++
		}
	}
	return f, nil
}
