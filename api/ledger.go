package api

import (
	"flashbill/config"
	"flashbill/database"
	"flashbill/middleware"
	"flashbill/service"

	"github.com/gin-gonic/gin"
)

// LedgerHandler 账本与邀请码
type LedgerHandler struct {
	cfg *config.Config
}

// NewLedgerHandler 创建账本处理器
func NewLedgerHandler(cfg *config.Config) *LedgerHandler {
	return &LedgerHandler{cfg: cfg}
}

func (h *LedgerHandler) invites() *service.InviteService {
	return service.NewInviteService(database.DB, h.cfg.Invite.TTL, service.NewEmailService(&h.cfg.Email))
}

// CreateLedgerRequest 新建账本请求
type CreateLedgerRequest struct {
	Name  string `json:"name" binding:"required" example:"家庭账本"`
	Cover string `json:"cover" example:"🏠"`
}

// JoinLedgerRequest 邀请码加入请求
type JoinLedgerRequest struct {
	Code string `json:"code" binding:"required" example:"888888"`
}

// InviteEmailRequest 发送邀请邮件请求
type InviteEmailRequest struct {
	Email string `json:"email" binding:"required,email" example:"friend@example.com"`
}

// List 当前用户的账本列表
// @Summary 获取账本列表
// @Tags 账本
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.LedgerView} "获取成功"
// @Router /api/v1/ledgers [get]
func (h *LedgerHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	views, err := service.NewLedgerService(database.DB).List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "查询账本失败")
		return
	}
	Success(c, views)
}

// Create 新建账本，创建者为 owner
// @Summary 新建账本
// @Tags 账本
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateLedgerRequest true "账本信息"
// @Success 200 {object} Response{data=models.LedgerView} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/ledgers [post]
func (h *LedgerHandler) Create(c *gin.Context) {
	var req CreateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请输入账本名称")
		return
	}
	userID := middleware.GetCurrentUserID(c)
	view, err := service.NewLedgerService(database.DB).Create(c.Request.Context(), userID, req.Name, req.Cover)
	if err != nil {
		respondError(c, err, "创建账本失败")
		return
	}
	SuccessWithMessage(c, "创建成功", view)
}

// CreateInviteCode 生成邀请码
// @Summary 生成账本邀请码
// @Description 仅账本创建者可调用；已有未过期的邀请码时直接返回
// @Tags 账本
// @Produce json
// @Security BearerAuth
// @Param id path string true "账本ID"
// @Success 200 {object} Response{data=models.InviteCode} "生成成功"
// @Failure 403 {object} Response "无权限"
// @Failure 404 {object} Response "账本不存在"
// @Router /api/v1/ledgers/{id}/invite-codes [post]
func (h *LedgerHandler) CreateInviteCode(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	invite, err := h.invites().CreateInviteCode(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err, "生成邀请码失败")
		return
	}
	Success(c, invite)
}

// SendInviteEmail 把邀请码发送到邮箱
// @Summary 邮件发送邀请码
// @Tags 账本
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "账本ID"
// @Param request body InviteEmailRequest true "收件人"
// @Success 200 {object} Response{data=models.InviteCode} "发送成功"
// @Failure 400 {object} Response "邮件服务未启用"
// @Router /api/v1/ledgers/{id}/invite-codes/email [post]
func (h *LedgerHandler) SendInviteEmail(c *gin.Context) {
	var req InviteEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请输入有效的邮箱地址")
		return
	}
	userID := middleware.GetCurrentUserID(c)
	inviter := middleware.GetCurrentUsername(c)
	invite, err := h.invites().SendInviteEmail(c.Request.Context(), userID, inviter, c.Param("id"), req.Email)
	if err != nil {
		respondError(c, err, "发送邀请邮件失败")
		return
	}
	SuccessWithMessage(c, "邀请已发送", invite)
}

// Join 使用邀请码加入账本
// @Summary 加入账本
// @Tags 账本
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body JoinLedgerRequest true "邀请码"
// @Success 200 {object} Response{data=models.LedgerView} "加入成功"
// @Failure 400 {object} Response "邀请码无效"
// @Router /api/v1/ledgers/join [post]
func (h *LedgerHandler) Join(c *gin.Context) {
	var req JoinLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请输入邀请码")
		return
	}
	userID := middleware.GetCurrentUserID(c)
	view, err := h.invites().JoinLedger(c.Request.Context(), userID, req.Code)
	if err != nil {
		respondError(c, err, "加入账本失败")
		return
	}
	SuccessWithMessage(c, "加入成功", view)
}

