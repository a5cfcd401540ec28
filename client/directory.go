package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"flashbill/logger"
	"flashbill/models"
)

// LedgerSource 账本数据来源，*Client 即为实现
type LedgerSource interface {
	ListLedgers(ctx context.Context) ([]models.LedgerView, error)
	CreateLedger(ctx context.Context, name, cover string) (models.LedgerView, error)
}

// persistedState 本地持久化格式
type persistedState struct {
	Ledgers       []models.LedgerView `json:"ledgers"`
	CurrentLedger *models.LedgerView  `json:"currentLedger"`
}

// Directory 本地账本目录与当前账本
//
// 至少有一个账本时总有且只有一个当前账本。
type Directory struct {
	source LedgerSource
	store  Store

	mu          sync.RWMutex
	ledgers     []models.LedgerView
	currentID   string
	subscribers []func(models.LedgerView)
}

// NewDirectory 创建账本目录，store 可为 nil 表示不持久化
func NewDirectory(source LedgerSource, store Store) *Directory {
	return &Directory{source: source, store: store}
}

// Load 从本地存储恢复
func (d *Directory) Load() error {
	if d.store == nil {
		return nil
	}
	raw, err := d.store.Load(StorageNamespace)
	if err != nil || raw == nil {
		return err
	}
	var st persistedState
	if err := json.Unmarshal(raw, &st); err != nil {
		return fmt.Errorf("解析本地账本数据失败: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.ledgers = st.Ledgers
	d.currentID = ""
	if st.CurrentLedger != nil && d.indexLocked(st.CurrentLedger.ID) >= 0 {
		d.currentID = st.CurrentLedger.ID
	}
	d.ensureCurrentLocked()
	return nil
}

// Save 写入本地存储
func (d *Directory) Save() error {
	if d.store == nil {
		return nil
	}
	d.mu.RLock()
	st := persistedState{Ledgers: d.ledgers}
	if i := d.indexLocked(d.currentID); i >= 0 {
		cur := d.ledgers[i]
		st.CurrentLedger = &cur
	}
	raw, err := json.Marshal(st)
	d.mu.RUnlock()
	if err != nil {
		return err
	}
	return d.store.Save(StorageNamespace, raw)
}

// List 返回账本列表
// 本地为空时从来源拉取并选中第一个；拉取失败时保留本地状态，同时返回本地列表与错误
func (d *Directory) List(ctx context.Context) ([]models.LedgerView, error) {
	d.mu.RLock()
	empty := len(d.ledgers) == 0
	d.mu.RUnlock()

	if empty {
		if err := d.Refresh(ctx); err != nil {
			return d.snapshot(), err
		}
	} else {
		d.mu.Lock()
		changed := d.ensureCurrentLocked()
		d.mu.Unlock()
		if changed {
			d.persist()
		}
	}
	return d.snapshot(), nil
}

// Refresh 从来源重新拉取，当前账本仍存在时保持不变，否则选中第一个
func (d *Directory) Refresh(ctx context.Context) error {
	list, err := d.source.ListLedgers(ctx)
	if err != nil {
		logger.WithComponent("directory").WithError(err).Warn("拉取账本失败，保留本地数据")
		return err
	}

	d.mu.Lock()
	prev := d.currentID
	d.ledgers = append([]models.LedgerView(nil), list...)
	if d.indexLocked(d.currentID) < 0 {
		d.currentID = ""
	}
	d.ensureCurrentLocked()
	cur, switched := d.currentLocked()
	switched = switched && cur.ID != prev
	d.mu.Unlock()

	d.persist()
	if switched {
		d.notify(cur)
	}
	return nil
}

// Current 当前账本
func (d *Directory) Current() (models.LedgerView, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.currentLocked()
}

// SetCurrent 切换当前账本并通知订阅者，账本须已在目录中
func (d *Directory) SetCurrent(ledger models.LedgerView) error {
	d.mu.Lock()
	i := d.indexLocked(ledger.ID)
	if i < 0 {
		d.mu.Unlock()
		return fmt.Errorf("账本 %s 不在列表中", ledger.ID)
	}
	d.currentID = ledger.ID
	cur := d.ledgers[i]
	d.mu.Unlock()

	d.persist()
	d.notify(cur)
	return nil
}

// Add 新建账本（创建者为 owner），追加到目录并设为当前
func (d *Directory) Add(ctx context.Context, name, cover string) (models.LedgerView, error) {
	view, err := d.source.CreateLedger(ctx, name, cover)
	if err != nil {
		return models.LedgerView{}, err
	}
	if view.Role == "" {
		view.Role = models.RoleOwner
	}

	d.mu.Lock()
	d.ledgers = append(d.ledgers, view)
	d.currentID = view.ID
	d.mu.Unlock()

	d.persist()
	d.notify(view)
	return view, nil
}

// Subscribe 当前账本变化时回调，回调在调用方 goroutine 中同步执行
func (d *Directory) Subscribe(fn func(models.LedgerView)) {
	d.mu.Lock()
	d.subscribers = append(d.subscribers, fn)
	d.mu.Unlock()
}

func (d *Directory) notify(cur models.LedgerView) {
	d.mu.RLock()
	subs := make([]func(models.LedgerView), len(d.subscribers))
	copy(subs, d.subscribers)
	d.mu.RUnlock()
	for _, fn := range subs {
		fn(cur)
	}
}

func (d *Directory) persist() {
	if err := d.Save(); err != nil {
		logger.WithComponent("directory").WithError(err).Warn("保存账本数据失败")
	}
}

func (d *Directory) snapshot() []models.LedgerView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.LedgerView{}, d.ledgers...)
}

func (d *Directory) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, l := range d.ledgers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (d *Directory) currentLocked() (models.LedgerView, bool) {
	if i := d.indexLocked(d.currentID); i >= 0 {
		return d.ledgers[i], true
	}
	return models.LedgerView{}, false
}

// ensureCurrentLocked 有账本但没有当前账本时选中第一个
func (d *Directory) ensureCurrentLocked() bool {
	if len(d.ledgers) == 0 || d.indexLocked(d.currentID) >= 0 {
		return false
	}
	d.currentID = d.ledgers[0].ID
	return true
}
