package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meeting_qa/internal/api/handlers"
	"meeting_qa/internal/config"
	"meeting_qa/internal/middleware"
	"meeting_qa/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services, cfg *config.Config) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.Identity, cfg.Auth.AdminEmails)
	meetingHandler := handlers.NewMeetingHandler(services.Meeting, services.Relay)
	wsHandler := handlers.NewWebSocketHandler(services.WebSocket)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 主持人登入，把身份服務的 idToken 換成 session token
		api.POST("/auth/login", authHandler.Login)

		// 會議列表與觀眾入口
		api.GET("/meetings", meetingHandler.ListMeetings)
		api.POST("/meetings/join", meetingHandler.JoinMeeting)
		api.GET("/meetings/:id/history", meetingHandler.GetHistory)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要主持人身份的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware())
	{
		meetings := authorized.Group("/meetings")
		{
			meetings.POST("", meetingHandler.CreateMeeting)              // 創建會議
			meetings.GET("/:id/details", meetingHandler.GetMeetingDetails) // 完整會議紀錄
			meetings.DELETE("/:id", meetingHandler.DeleteMeeting)        // 刪除會議
			meetings.POST("/:id/ask", meetingHandler.Ask)                // 提問
		}
	}

	// WebSocket 連接點，入房驗證在 join_meeting 事件處理
	r.GET("/ws", wsHandler.HandleWebSocket)
}
