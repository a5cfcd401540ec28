package client

import (
	"fmt"
	"net/http"
)

// BusinessError 服务端返回 code != 0
type BusinessError struct {
	Code int
	Msg  string
}

func (e *BusinessError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("业务错误 %d", e.Code)
	}
	return e.Msg
}

// TransportError HTTP 层失败。Status 为 0 表示请求未到达服务端
// 服务端在错误响应中带有业务码时可通过 errors.As 取到 *BusinessError
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// statusMessage 常见状态码的固定提示
func statusMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "Resource not found"
	case http.StatusInternalServerError:
		return "Server Error"
	case 0:
		return "Network Error"
	default:
		return fmt.Sprintf("Request failed with status code %d", status)
	}
}
