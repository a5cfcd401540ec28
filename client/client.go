// Package client 是记账服务的 Go 客户端：HTTP 传输、账本目录与流水仓库。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"flashbill/models"
)

// DefaultTimeout 单次请求超时
const DefaultTimeout = 10 * time.Second

// maxBodySize 响应体读取上限
const maxBodySize = 10 << 20

// TokenStore 提供 Bearer token，返回空串时不携带
type TokenStore interface {
	Token() string
}

// TokenSetter 登录成功后写回 token
type TokenSetter interface {
	SetToken(token string)
}

// MemoryTokenStore 进程内 token 存储
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func (s *MemoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Notifier 接收每次请求失败，用于界面提示，每个失败只通知一次
type Notifier interface {
	Notify(err error)
}

// NotifierFunc 函数适配 Notifier
type NotifierFunc func(err error)

func (f NotifierFunc) Notify(err error) { f(err) }

// Client 记账服务 HTTP 客户端，不做重试
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenStore
	notifier Notifier
}

// Option 客户端配置项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenStore 设置 token 来源
func WithTokenStore(ts TokenStore) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithNotifier 设置失败通知
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// New 创建客户端，baseURL 形如 http://localhost:8080/api/v1
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// do 发送请求并解析 {code,msg,data}，失败时通知一次
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	err := c.roundTrip(ctx, method, path, query, body, out)
	if err != nil && c.notifier != nil {
		c.notifier.Notify(err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("编码请求失败: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("构造请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Status: 0, Message: statusMessage(0), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &TransportError{Status: resp.StatusCode, Message: statusMessage(0), Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		te := &TransportError{Status: resp.StatusCode, Message: statusMessage(resp.StatusCode)}
		if decodeErr == nil && env.Code != 0 {
			te.Err = &BusinessError{Code: env.Code, Msg: env.Msg}
		}
		return te
	}
	if decodeErr != nil {
		return fmt.Errorf("解析响应失败: %w", decodeErr)
	}
	if env.Code != 0 {
		return &BusinessError{Code: env.Code, Msg: env.Msg}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

// LoginResult 登录结果
type LoginResult struct {
	Token    string      `json:"token"`
	UserInfo models.User `json:"userInfo"`
}

// Login 登录，token 存储实现 TokenSetter 时自动写回
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var res LoginResult
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &res); err != nil {
		return nil, err
	}
	if setter, ok := c.tokens.(TokenSetter); ok {
		setter.SetToken(res.Token)
	}
	return &res, nil
}

// CreateTransactionParams 新建流水参数
type CreateTransactionParams struct {
	UUID       string                 `json:"uuid,omitempty"`
	LedgerID   string                 `json:"ledgerId"`
	AccountID  string                 `json:"accountId,omitempty"`
	CategoryID string                 `json:"categoryId"`
	Type       models.TransactionType `json:"type"`
	Amount     int64                  `json:"amount"`
	Date       time.Time              `json:"date"`
	Note       string                 `json:"note,omitempty"`
}

// ListParams 流水列表查询，Month 为空不限月份
type ListParams struct {
	Month string
	Page  int
	Size  int
}

// TransactionPage 分页结果
type TransactionPage struct {
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
	List  []models.Transaction `json:"list"`
}

// CreateTransaction 提交一条流水
func (c *Client) CreateTransaction(ctx context.Context, params CreateTransactionParams) (*models.Transaction, error) {
	var tx models.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", nil, params, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetTransaction 查询单条流水
func (c *Client) GetTransaction(ctx context.Context, uuid string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions/"+url.PathEscape(uuid), nil, nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListTransactions 查询账本流水，账本显式传入
func (c *Client) ListTransactions(ctx context.Context, ledgerID string, p ListParams) (*TransactionPage, error) {
	q := url.Values{}
	q.Set("ledger_id", ledgerID)
	if p.Month != "" {
		q.Set("month", p.Month)
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	}
	var page TransactionPage
	if err := c.do(ctx, http.MethodGet, "/transactions", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListLedgers 当前用户的账本
func (c *Client) ListLedgers(ctx context.Context) ([]models.LedgerView, error) {
	var list []models.LedgerView
	if err := c.do(ctx, http.MethodGet, "/ledgers", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateLedger 新建账本
func (c *Client) CreateLedger(ctx context.Context, name, cover string) (models.LedgerView, error) {
	var view models.LedgerView
	body := map[string]string{"name": name, "cover": cover}
	err := c.do(ctx, http.MethodPost, "/ledgers", nil, body, &view)
	return view, err
}

// CreateInviteCode 生成邀请码
func (c *Client) CreateInviteCode(ctx context.Context, ledgerID string) (*models.InviteCode, error) {
	var invite models.InviteCode
	if err := c.do(ctx, http.MethodPost, "/ledgers/"+url.PathEscape(ledgerID)+"/invite-codes", nil, nil, &invite); err != nil {
		return nil, err
	}
	return &invite, nil
}

// JoinLedger 使用邀请码加入账本
func (c *Client) JoinLedger(ctx context.Context, code string) (models.LedgerView, error) {
	var view models.LedgerView
	body := map[string]string{"code": code}
	err := c.do(ctx, http.MethodPost, "/ledgers/join", nil, body, &view)
	return view, err
}

// IsInvalidCode 错误是否为邀请码无效
func IsInvalidCode(err error) bool {
	var be *BusinessError
	return errors.As(err, &be) && be.Code == codeInvalidCode
}

// 与服务端业务码一致
const codeInvalidCode = 40002
