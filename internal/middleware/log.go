package middleware

import (
	"time"

	"github.com/RichardCTT/Portfolio-Management/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// OperationLog 把写操作落库，便于事后追查账本改动
// 只记录会修改数据的方法，查询类请求不记
func OperationLog(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// 执行请求
		c.Next()

		switch c.Request.Method {
		case "POST", "PUT", "DELETE", "PATCH":
		default:
			return
		}

		requestID, _ := c.Get(RequestIDKey)
		idStr, _ := requestID.(string)

		entry := models.OperationLog{
			RequestID: idStr,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Status:    c.Writer.Status(),
			LatencyMs: time.Since(start).Milliseconds(),
			ClientIP:  c.ClientIP(),
		}

		_ = db.Create(&entry).Error
	}
}
