package service

import (
	"fmt"
	"html"
	"time"

	"flashbill/config"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendInviteEmail 发送账本邀请码邮件
func (s *EmailService) SendInviteEmail(toEmail, inviter, ledgerName, code string, expiresAt time.Time) error {
	if !s.cfg.Enabled {
		return ErrEmailDisabled
	}

	subject := fmt.Sprintf("【闪电记账】%s 邀请您加入「%s」", inviter, ledgerName)
	body := s.generateInviteEmailBody(inviter, ledgerName, code, expiresAt)

	return s.sendEmail(toEmail, subject, body)
}

// generateInviteEmailBody 生成邀请邮件内容
func (s *EmailService) generateInviteEmailBody(inviter, ledgerName, code string, expiresAt time.Time) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #111827, #374151); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .code-box { background: #f9fafb; border: 2px dashed #2563eb; border-radius: 12px; padding: 30px; text-align: center; margin: 30px 0; }
        .code { font-size: 36px; font-weight: bold; color: #111827; letter-spacing: 8px; font-family: 'Courier New', monospace; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>⚡ 闪电记账</h1>
        </div>
        <div class="content">
            <p><strong>%s</strong> 邀请您一起记录账本「%s」。</p>
            <p>在 App 侧边栏点击“加入账本”，输入以下邀请码：</p>
            <div class="code-box">
                <span class="code">%s</span>
            </div>
            <p>邀请码有效期至 <strong>%s</strong>。</p>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
        </div>
    </div>
</body>
</html>
`, html.EscapeString(inviter), html.EscapeString(ledgerName), code, expiresAt.Format("2006-01-02 15:04"))
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}
