package api

import (
	"flashbill/models"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 收支类别（静态表）
type CategoryHandler struct{}

func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// List 列出类别
// @Summary 获取类别列表
// @Tags 类别
// @Produce json
// @Param type query string false "expense 或 income，不传返回全部"
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	all := models.GetCategories()
	s := c.Query("type")
	if s == "" {
		Success(c, all)
		return
	}
	kind, ok := models.ParseTransactionType(s)
	if !ok {
		BadRequest(c, "type 应为 expense 或 income")
		return
	}
	list := make([]models.Category, 0, len(all))
	for _, cat := range all {
		// 其他 不区分收支
		if cat.Type == kind || cat.ID == models.CategoryOther {
			list = append(list, cat)
		}
	}
	Success(c, list)
}
