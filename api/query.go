package api

import (
	"strconv"
	"strings"
	"time"

	"flashbill/report"

	"github.com/gin-gonic/gin"
)

// ledgerIDQuery 读取必填的 ledger_id
func ledgerIDQuery(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Query("ledger_id"))
	if id == "" {
		BadRequest(c, "请提供 ledger_id")
		return "", false
	}
	return id, true
}

// monthQuery 解析 month=2024-05，未传返回零值表示不限月份
func monthQuery(c *gin.Context) (report.Month, bool) {
	s := c.Query("month")
	if s == "" {
		return report.Month{}, true
	}
	m, err := report.ParseMonth(s)
	if err != nil {
		BadRequest(c, "月份格式错误，应为: 2024-01")
		return report.Month{}, false
	}
	return m, true
}

// locationQuery 解析 tz=Asia/Shanghai，默认服务器本地时区
func locationQuery(c *gin.Context) (*time.Location, bool) {
	tz := c.Query("tz")
	if tz == "" {
		return time.Local, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		BadRequest(c, "无效的时区: "+tz)
		return nil, false
	}
	return loc, true
}

func intQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
