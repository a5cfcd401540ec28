package models

// Category 收支类别（静态表，按 id 查找）
type Category struct {
	ID    string          `json:"id"`
	Label string          `json:"label"`
	Icon  string          `json:"icon"`
	Type  TransactionType `json:"type"` // 默认归属的收支类型
}

// 类别 ID 常量
const (
	CategoryFood          = "food"
	CategoryTransport     = "transport"
	CategoryShopping      = "shopping"
	CategoryEntertainment = "entertainment"
	CategoryHousing       = "housing"
	CategoryMedical       = "medical"
	CategorySalary        = "salary"
	CategoryBonus         = "bonus"
	CategoryInvestment    = "investment"
	CategoryOther         = "other"
	CategoryUnknown       = "unknown"
)

var categories = []Category{
	{ID: CategoryFood, Label: "餐饮", Icon: "🍔", Type: TypeExpense},
	{ID: CategoryTransport, Label: "交通", Icon: "🚗", Type: TypeExpense},
	{ID: CategoryShopping, Label: "购物", Icon: "🛍️", Type: TypeExpense},
	{ID: CategoryEntertainment, Label: "娱乐", Icon: "🎮", Type: TypeExpense},
	{ID: CategoryHousing, Label: "居住", Icon: "🏠", Type: TypeExpense},
	{ID: CategoryMedical, Label: "医疗", Icon: "💊", Type: TypeExpense},
	{ID: CategorySalary, Label: "工资", Icon: "💰", Type: TypeIncome},
	{ID: CategoryBonus, Label: "奖金", Icon: "🧧", Type: TypeIncome},
	{ID: CategoryInvestment, Label: "理财", Icon: "📈", Type: TypeIncome},
	{ID: CategoryOther, Label: "其他", Icon: "📋", Type: TypeExpense},
}

// UnknownCategory 未登记类别的占位
var UnknownCategory = Category{ID: CategoryUnknown, Label: "未知", Icon: "❓"}

var categoryIndex = func() map[string]Category {
	m := make(map[string]Category, len(categories))
	for _, c := range categories {
		m[c.ID] = c
	}
	return m
}()

// GetCategories 获取全部类别（返回副本）
func GetCategories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// LookupCategory 按 id 查找类别，找不到返回 UnknownCategory
func LookupCategory(id string) Category {
	if c, ok := categoryIndex[id]; ok {
		return c
	}
	return UnknownCategory
}

// IsKnownCategory 类别是否在静态表中
func IsKnownCategory(id string) bool {
	_, ok := categoryIndex[id]
	return ok
}
