package api

import (
	"flashbill/config"
	"flashbill/database"
	"flashbill/middleware"
	"flashbill/models"
	"flashbill/report"
	"flashbill/service"

	"github.com/gin-gonic/gin"
)

// StatisticsHandler 类别统计
type StatisticsHandler struct {
	cfg *config.Config
}

// NewStatisticsHandler 创建统计处理器
func NewStatisticsHandler(cfg *config.Config) *StatisticsHandler {
	return &StatisticsHandler{cfg: cfg}
}

// Categories 类别排行
// @Summary 类别排行
// @Description 按类别合计金额降序，取前 top 个，占比以展示部分的合计为分母
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param ledger_id query string true "账本ID"
// @Param month query string false "月份 (2024-05)"
// @Param type query string false "expense 或 income，默认 expense"
// @Param top query int false "取前几个类别"
// @Param tz query string false "时区，默认服务器时区"
// @Success 200 {object} Response{data=report.Ranking} "获取成功"
// @Router /api/v1/statistics/categories [get]
func (h *StatisticsHandler) Categories(c *gin.Context) {
	ledgerID, ok := ledgerIDQuery(c)
	if !ok {
		return
	}
	month, ok := monthQuery(c)
	if !ok {
		return
	}
	loc, ok := locationQuery(c)
	if !ok {
		return
	}

	kind := models.TypeExpense
	if s := c.Query("type"); s != "" {
		parsed, valid := models.ParseTransactionType(s)
		if !valid {
			BadRequest(c, "type 应为 expense 或 income")
			return
		}
		kind = parsed
	}
	topN := intQuery(c, "top", h.defaultTopN())

	userID := middleware.GetCurrentUserID(c)
	txs, err := service.NewTransactionService(database.DB).FetchTransactions(c.Request.Context(), userID, ledgerID, month, loc)
	if err != nil {
		respondError(c, err, "查询流水失败")
		return
	}
	Success(c, report.RankCategories(txs, kind, topN))
}

func (h *StatisticsHandler) defaultTopN() int {
	if h.cfg != nil && h.cfg.Statistics.TopN > 0 {
		return h.cfg.Statistics.TopN
	}
	return report.DefaultTopN
}
