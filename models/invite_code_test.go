package models

import (
	"errors"
	"math/big"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInviteCode(t *testing.T) {
	code, err := GenerateInviteCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Regexp(t, regexp.MustCompile(`^[1-9]\d{5}$`), code)
}

func TestGenerateInviteCode_RandError(t *testing.T) {
	old := randInt
	randInt = func(max *big.Int) (*big.Int, error) { return nil, errors.New("entropy") }
	defer func() { randInt = old }()

	_, err := GenerateInviteCode()
	assert.Error(t, err)
}

func TestGenerateInviteCode_Bounds(t *testing.T) {
	old := randInt
	defer func() { randInt = old }()

	tests := []struct {
		draw int64
		want string
	}{
		{0, "100000"},
		{899999, "999999"},
		{23456, "123456"},
	}
	for _, tt := range tests {
		randInt = func(max *big.Int) (*big.Int, error) {
			assert.Equal(t, int64(900000), max.Int64())
			return big.NewInt(tt.draw), nil
		}
		code, err := GenerateInviteCode()
		require.NoError(t, err)
		assert.Equal(t, tt.want, code)
	}
}

func TestInviteCode_IsValid(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)

	// 有效：未过期
	c := &InviteCode{Code: "888888", ExpiresAt: now.Add(time.Hour)}
	assert.True(t, c.IsValid(now))

	// 无效：到期时刻即失效
	c2 := &InviteCode{Code: "888888", ExpiresAt: now}
	assert.False(t, c2.IsValid(now))

	// 无效：空码
	c3 := &InviteCode{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, c3.IsValid(now))

	// IsExpired 使用当前时间
	assert.True(t, (&InviteCode{ExpiresAt: time.Now().Add(-time.Hour)}).IsExpired())
	assert.False(t, (&InviteCode{ExpiresAt: time.Now().Add(time.Hour)}).IsExpired())
}
