package models

import (
	"strconv"
)

// FormatAmount 将分格式化为两位小数的元，如 3500 -> "35.00"
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	frac := minor % 100
	s := sign + strconv.FormatInt(minor/100, 10) + "."
	if frac < 10 {
		s += "0"
	}
	return s + strconv.FormatInt(frac, 10)
}
