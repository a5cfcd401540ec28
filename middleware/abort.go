package middleware

import "github.com/gin-gonic/gin"

// 与 api 包的业务码保持一致
const (
	codeUnauthorized    = 40101
	codeTooManyRequests = 42901
)

func abortWithCode(c *gin.Context, status, code int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code": code,
		"msg":  msg,
		"data": nil,
	})
}
