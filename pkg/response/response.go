package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应包体，所有接口都走这个结构
type Response struct {
	Code    int         `json:"code"`    // 业务码，0 表示成功
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 业务数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应，HTTP 状态码和业务码分开给
func Error(c *gin.Context, httpCode int, errCode int, message string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: message,
	})
}

// Fail 业务失败响应（HTTP 200，业务码非 0）
func Fail(c *gin.Context, errCode int, message string) {
	Error(c, http.StatusOK, errCode, message)
}
