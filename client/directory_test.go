package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"flashbill/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedgerSource struct {
	ledgers []models.LedgerView
	err     error
	calls   int
}

func (f *fakeLedgerSource) ListLedgers(ctx context.Context) ([]models.LedgerView, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.LedgerView(nil), f.ledgers...), nil
}

func (f *fakeLedgerSource) CreateLedger(ctx context.Context, name, cover string) (models.LedgerView, error) {
	if f.err != nil {
		return models.LedgerView{}, f.err
	}
	view := models.LedgerView{ID: "new-" + name, Name: name, Cover: cover}
	f.ledgers = append(f.ledgers, view)
	return view, nil
}

func twoLedgers() []models.LedgerView {
	return []models.LedgerView{
		{ID: "l1", Name: "日常", Role: models.RoleOwner},
		{ID: "l2", Name: "旅行", Role: models.RoleMember},
	}
}

func TestDirectory_ListSelectsFirst(t *testing.T) {
	src := &fakeLedgerSource{ledgers: twoLedgers()}
	d := NewDirectory(src, NewMemoryStore())

	var switched []string
	d.Subscribe(func(l models.LedgerView) { switched = append(switched, l.ID) })

	list, err := d.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)

	cur, ok := d.Current()
	require.True(t, ok)
	assert.Equal(t, "l1", cur.ID)
	assert.Equal(t, []string{"l1"}, switched)

	// 已有缓存不再拉取
	_, err = d.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
}

func TestDirectory_ListEmpty(t *testing.T) {
	d := NewDirectory(&fakeLedgerSource{}, nil)

	list, err := d.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	_, ok := d.Current()
	assert.False(t, ok)
}

func TestDirectory_FailSoft(t *testing.T) {
	store := NewMemoryStore()
	src := &fakeLedgerSource{ledgers: twoLedgers()}
	d := NewDirectory(src, store)
	require.NoError(t, d.Refresh(context.Background()))
	require.NoError(t, d.SetCurrent(models.LedgerView{ID: "l2"}))

	src.err = errors.New("boom")
	err := d.Refresh(context.Background())
	require.Error(t, err)

	cur, ok := d.Current()
	require.True(t, ok)
	assert.Equal(t, "l2", cur.ID)
	list, err := d.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestDirectory_FirstLoadFailure(t *testing.T) {
	d := NewDirectory(&fakeLedgerSource{err: errors.New("offline")}, nil)

	list, err := d.List(context.Background())
	require.Error(t, err)
	assert.Empty(t, list)
}

func TestDirectory_RefreshKeepsOrReselects(t *testing.T) {
	src := &fakeLedgerSource{ledgers: twoLedgers()}
	d := NewDirectory(src, nil)
	require.NoError(t, d.Refresh(context.Background()))
	require.NoError(t, d.SetCurrent(models.LedgerView{ID: "l2"}))

	require.NoError(t, d.Refresh(context.Background()))
	cur, _ := d.Current()
	assert.Equal(t, "l2", cur.ID)

	// 当前账本被移除后回到第一个
	src.ledgers = src.ledgers[:1]
	var switched []string
	d.Subscribe(func(l models.LedgerView) { switched = append(switched, l.ID) })
	require.NoError(t, d.Refresh(context.Background()))
	cur, _ = d.Current()
	assert.Equal(t, "l1", cur.ID)
	assert.Equal(t, []string{"l1"}, switched)
}

func TestDirectory_SetCurrent(t *testing.T) {
	store := NewMemoryStore()
	d := NewDirectory(&fakeLedgerSource{ledgers: twoLedgers()}, store)
	require.NoError(t, d.Refresh(context.Background()))

	var switched []string
	d.Subscribe(func(l models.LedgerView) { switched = append(switched, l.ID) })

	require.NoError(t, d.SetCurrent(models.LedgerView{ID: "l2"}))
	assert.Equal(t, []string{"l2"}, switched)

	err := d.SetCurrent(models.LedgerView{ID: "missing"})
	require.Error(t, err)
	cur, _ := d.Current()
	assert.Equal(t, "l2", cur.ID)

	restored := NewDirectory(&fakeLedgerSource{}, store)
	require.NoError(t, restored.Load())
	cur, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, "l2", cur.ID)
}

func TestDirectory_AddBecomesCurrent(t *testing.T) {
	d := NewDirectory(&fakeLedgerSource{ledgers: twoLedgers()}, nil)
	require.NoError(t, d.Refresh(context.Background()))

	view, err := d.Add(context.Background(), "家庭", "🏠")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, view.Role)

	cur, _ := d.Current()
	assert.Equal(t, view.ID, cur.ID)
	list, _ := d.List(context.Background())
	assert.Len(t, list, 3)
}

func TestDirectory_AddFailureLeavesState(t *testing.T) {
	src := &fakeLedgerSource{ledgers: twoLedgers()}
	d := NewDirectory(src, nil)
	require.NoError(t, d.Refresh(context.Background()))

	src.err = errors.New("boom")
	_, err := d.Add(context.Background(), "家庭", "")
	require.Error(t, err)
	cur, _ := d.Current()
	assert.Equal(t, "l1", cur.ID)
}

func TestDirectory_FileStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	d := NewDirectory(&fakeLedgerSource{ledgers: twoLedgers()}, NewFileStore(dir))
	require.NoError(t, d.Refresh(context.Background()))
	require.NoError(t, d.SetCurrent(models.LedgerView{ID: "l2"}))

	_, err := os.Stat(filepath.Join(dir, StorageNamespace+".json"))
	require.NoError(t, err)

	restored := NewDirectory(&fakeLedgerSource{}, NewFileStore(dir))
	require.NoError(t, restored.Load())
	list, err := restored.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
	cur, _ := restored.Current()
	assert.Equal(t, "l2", cur.ID)
}

func TestDirectory_LoadMissingAndCorrupt(t *testing.T) {
	store := NewMemoryStore()
	d := NewDirectory(&fakeLedgerSource{}, store)
	require.NoError(t, d.Load())
	_, ok := d.Current()
	assert.False(t, ok)

	require.NoError(t, store.Save(StorageNamespace, []byte("{not json")))
	assert.Error(t, d.Load())
}

func TestDirectory_SubscribeDuringNotify(t *testing.T) {
	d := NewDirectory(&fakeLedgerSource{ledgers: twoLedgers()}, nil)
	require.NoError(t, d.Refresh(context.Background()))

	var outer, inner []string
	d.Subscribe(func(l models.LedgerView) {
		outer = append(outer, l.ID)
		if len(outer) == 1 {
			d.Subscribe(func(l models.LedgerView) { inner = append(inner, l.ID) })
		}
	})

	// 回调中新增的订阅从下一次切换开始生效
	require.NoError(t, d.SetCurrent(models.LedgerView{ID: "l2"}))
	assert.Equal(t, []string{"l2"}, outer)
	assert.Empty(t, inner)

	require.NoError(t, d.SetCurrent(models.LedgerView{ID: "l1"}))
	assert.Equal(t, []string{"l2", "l1"}, outer)
	assert.Equal(t, []string{"l1"}, inner)
}
