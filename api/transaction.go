package api

import (
	"time"

	"flashbill/database"
	"flashbill/middleware"
	"flashbill/models"
	"flashbill/report"
	"flashbill/service"

	"github.com/gin-gonic/gin"
)

// TransactionHandler 记账流水
type TransactionHandler struct{}

// NewTransactionHandler 创建流水处理器
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

// CreateTransactionParams 新建流水请求
// 字段校验在服务层完成，便于返回具体的字段错误
type CreateTransactionParams struct {
	UUID       string                 `json:"uuid" example:"5f0c8a52-6a43-4f6e-9a53-0b0c7f1d2e3a"`
	LedgerID   string                 `json:"ledgerId" example:"l1"`
	AccountID  string                 `json:"accountId" example:"cash"`
	CategoryID string                 `json:"categoryId" example:"food"`
	Type       models.TransactionType `json:"type" example:"1"` // 1 支出 2 收入
	Amount     int64                  `json:"amount" example:"3500"` // 分
	Date       *time.Time             `json:"date" example:"2024-05-03T12:00:00+08:00"`
	Note       string                 `json:"note" example:"午餐"`
}

func (p CreateTransactionParams) toModel() models.Transaction {
	t := models.Transaction{
		UUID:       p.UUID,
		LedgerID:   p.LedgerID,
		AccountID:  p.AccountID,
		CategoryID: p.CategoryID,
		Type:       p.Type,
		Amount:     p.Amount,
		Note:       p.Note,
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	return t
}

// Create 记一笔账
// @Summary 新建流水
// @Description uuid 可由客户端生成，同一账本内重复提交返回已保存的记录
// @Tags 流水
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionParams true "流水信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 403 {object} Response "非账本成员"
// @Failure 409 {object} Response "uuid 冲突"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req CreateTransactionParams
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	userID := middleware.GetCurrentUserID(c)
	tx, created, err := service.NewTransactionService(database.DB).Create(c.Request.Context(), userID, req.toModel())
	if err != nil {
		respondError(c, err, "保存流水失败")
		return
	}
	msg := "创建成功"
	if !created {
		msg = "已存在"
	}
	SuccessWithMessage(c, msg, tx)
}

// Get 查询单条流水
// @Summary 获取流水详情
// @Tags 流水
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "流水ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{uuid} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	tx, err := service.NewTransactionService(database.DB).Get(c.Request.Context(), userID, c.Param("uuid"))
	if err != nil {
		respondError(c, err, "查询流水失败")
		return
	}
	Success(c, tx)
}

// List 分页查询账本流水
// @Summary 获取流水列表
// @Tags 流水
// @Produce json
// @Security BearerAuth
// @Param ledger_id query string true "账本ID"
// @Param month query string false "月份 (2024-05)"
// @Param tz query string false "时区，默认服务器时区"
// @Param page query int false "页码" default(1)
// @Param size query int false "每页条数" default(20)
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
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

	userID := middleware.GetCurrentUserID(c)
	page, err := service.NewTransactionService(database.DB).List(c.Request.Context(), userID, ledgerID, service.ListQuery{
		Month:    month,
		Location: loc,
		Page:     intQuery(c, "page", 1),
		Size:     intQuery(c, "size", 20),
	})
	if err != nil {
		respondError(c, err, "查询流水失败")
		return
	}
	Success(c, PageResponse{Total: page.Total, Page: page.Page, Size: page.Size, List: page.List})
}

// Summary 按日分组的月度汇总
// @Summary 流水汇总
// @Description 按月份与关键字筛选后按日分组，返回每日与整体收支合计
// @Tags 流水
// @Produce json
// @Security BearerAuth
// @Param ledger_id query string true "账本ID"
// @Param month query string false "月份 (2024-05)"
// @Param q query string false "搜索类别名称或备注"
// @Param tz query string false "时区，默认服务器时区"
// @Success 200 {object} Response{data=report.Summary} "获取成功"
// @Router /api/v1/transactions/summary [get]
func (h *TransactionHandler) Summary(c *gin.Context) {
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

	userID := middleware.GetCurrentUserID(c)
	sum, err := service.NewTransactionService(database.DB).Summary(c.Request.Context(), userID, ledgerID, report.Filter{
		Month:    month,
		Search:   c.Query("q"),
		Location: loc,
	})
	if err != nil {
		respondError(c, err, "汇总流水失败")
		return
	}
	Success(c, sum)
}
