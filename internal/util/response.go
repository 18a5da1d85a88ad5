package util

import (
	"github.com/gin-gonic/gin"
)

// 通用返回结构里的 data 使用 map
type Response map[string]interface{}

// CRUD 接口使用 {code, message, data} 信封，
// 分析类接口使用 {success, data} / {success:false, error, message} 信封
// 两种风格都来自前端既有约定，按接口保留

// Success CRUD 接口统一成功返回
func Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"code":    status,
		"message": message,
		"data":    data,
	})
}

// Error CRUD 接口统一错误返回
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"code":    status,
		"message": msg,
		"data":    nil,
	})
}

// OK 分析接口统一成功返回
func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// Fail 分析接口统一错误返回
func Fail(c *gin.Context, status int, errType, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   errType,
		"message": message,
	})
}
