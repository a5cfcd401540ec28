package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupCategory(t *testing.T) {
	assert.Equal(t, "餐饮", LookupCategory(CategoryFood).Label)
	assert.Equal(t, TypeIncome, LookupCategory(CategorySalary).Type)

	// 未登记类别回退到 unknown
	c := LookupCategory("spaceship")
	assert.Equal(t, UnknownCategory, c)
	assert.Equal(t, "未知", c.Label)
	assert.False(t, IsKnownCategory("spaceship"))
	assert.False(t, IsKnownCategory(""))
}

func TestGetCategories_ReturnsCopy(t *testing.T) {
	list := GetCategories()
	assert.Len(t, list, 10)
	list[0].Label = "changed"
	assert.Equal(t, "餐饮", LookupCategory(CategoryFood).Label)
}

func TestParseTransactionType(t *testing.T) {
	for _, s := range []string{"1", "expense", "EXPENSE"} {
		typ, ok := ParseTransactionType(s)
		assert.True(t, ok)
		assert.Equal(t, TypeExpense, typ)
	}
	typ, ok := ParseTransactionType("2")
	assert.True(t, ok)
	assert.Equal(t, TypeIncome, typ)

	_, ok = ParseTransactionType("3")
	assert.False(t, ok)
	assert.Equal(t, "unknown", TransactionType(9).String())
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "35.00", FormatAmount(3500))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "10000.10", FormatAmount(1000010))
	assert.Equal(t, "-1.50", FormatAmount(-150))
	assert.Equal(t, "0.00", FormatAmount(0))
}
