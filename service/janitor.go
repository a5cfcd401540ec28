package service

import (
	"context"
	"fmt"
	"time"

	"flashbill/logger"

	"github.com/robfig/cron/v3"
)

// InviteJanitor 定时清理过期邀请码
type InviteJanitor struct {
	invites *InviteService
	cron    *cron.Cron
	timeout time.Duration
}

// NewInviteJanitor 按 cron 表达式（支持 @hourly 等描述符）注册清理任务
func NewInviteJanitor(invites *InviteService, spec string) (*InviteJanitor, error) {
	j := &InviteJanitor{
		invites: invites,
		cron:    cron.New(),
		timeout: 30 * time.Second,
	}
	if _, err := j.cron.AddFunc(spec, j.RunOnce); err != nil {
		return nil, fmt.Errorf("无效的清理计划 %q: %w", spec, err)
	}
	return j, nil
}

// RunOnce 执行一次清理
func (j *InviteJanitor) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.invites.PurgeExpired(ctx)
	log := logger.WithComponent("invite-janitor")
	if err != nil {
		log.WithError(err).Error("清理过期邀请码失败")
		return
	}
	if n > 0 {
		log.WithField("deleted", n).Info("已清理过期邀请码")
	}
}

// Run 启动调度并阻塞到 ctx 结束，返回前等待正在执行的任务完成
func (j *InviteJanitor) Run(ctx context.Context) error {
	j.cron.Start()
	<-ctx.Done()
	<-j.cron.Stop().Done()
	return nil
}
