package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"meeting_qa/internal/service"
	"meeting_qa/internal/utils"
)

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 注意：在生產環境中，應該檢查 origin
	},
}

// WebSocketHandler 處理 WebSocket 連線
type WebSocketHandler struct {
	wsManager *service.WebSocketManager
}

// NewWebSocketHandler 創建一個新的 WebSocketHandler 實例
func NewWebSocketHandler(wsManager *service.WebSocketManager) *WebSocketHandler {
	return &WebSocketHandler{wsManager: wsManager}
}

// HandleWebSocket 升級連線並交給房間管理器
// 入房在 join_meeting 事件時才驗證；瀏覽器的 WebSocket 無法自訂標頭，
// 所以主持人 token 由 query 參數帶上來
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	askerVerified := false
	if token := c.Query("token"); token != "" {
		if _, err := utils.ParseToken(token); err == nil {
			askerVerified = true
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "升級WebSocket失敗"})
		return
	}

	h.wsManager.HandleConnection(conn, askerVerified)
}
