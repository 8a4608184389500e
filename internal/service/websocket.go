package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"meeting_qa/internal/models"
)

// 連線在房間裡的角色
const (
	RoleAsker  = "asker"
	RoleViewer = "viewer"
)

// Client 代表一條 WebSocket 連線
// 只存在於連線存活期間，不落地
type Client struct {
	ID        string               // 連線識別碼
	Conn      *websocket.Conn      // WebSocket 連線
	MeetingID string               // 加入的會議代碼，入房後才會設定
	Role      string               // asker / viewer
	SendChan  chan *models.Event   // 事件發送通道，用於異步傳送事件

	askerVerified bool          // 連線時是否帶了有效的主持人 token
	done          chan struct{} // 連線清理時關閉，通知 writePump 收工
}

// joinRequest 對應 join_meeting 事件的內容
type joinRequest struct {
	MeetingID string `json:"meetingId"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// inboundEvent 客戶端送上來的事件
type inboundEvent struct {
	Event string      `json:"event"`
	Data  joinRequest `json:"data"`
}

// WebSocketManager 管理所有的 WebSocket 連線和房間廣播
type WebSocketManager struct {
	meetings *MeetingService

	rooms    map[string]map[*Client]bool // 兩層 map: meetingID -> client -> bool
	roomsMux sync.RWMutex                // 用於保護 rooms map 的讀寫鎖
}

// NewWebSocketManager 創建並初始化新的房間管理器
func NewWebSocketManager(meetings *MeetingService) *WebSocketManager {
	return &WebSocketManager{
		meetings: meetings,
		rooms:    make(map[string]map[*Client]bool),
	}
}

// HandleConnection 處理新的 WebSocket 連線，阻塞到連線中斷為止
// askerVerified 表示連線時帶的主持人 token 是否有效
func (s *WebSocketManager) HandleConnection(conn *websocket.Conn, askerVerified bool) {
	client := &Client{
		ID:            uuid.NewString(),
		Conn:          conn,
		SendChan:      make(chan *models.Event, 256), // 設置緩衝大小為 256 的事件通道
		askerVerified: askerVerified,
		done:          make(chan struct{}),
	}

	// 確保連線關閉時清理資源
	// SendChan 不關閉：廣播端可能還握著這個 client，殘留在緩衝裡的事件隨連線一起回收
	defer func() {
		s.removeClient(client)
		conn.Close()
		close(client.done)
	}()

	// 啟動讀寫處理
	go s.writePump(client)
	s.readPump(client)
}

// readPump 持續監聽客戶端送來的事件，目前只處理 join_meeting
func (s *WebSocketManager) readPump(client *Client) {
	client.Conn.SetReadLimit(4096) // 設置最大訊息大小為 4KB
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client", client.ID).Msg("websocket unexpected close error")
			}
			break
		}

		var event inboundEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Warn().Err(err).Str("client", client.ID).Msg("event parse error")
			continue
		}

		if event.Event == models.EventJoinMeeting {
			s.handleJoin(client, event.Data)
		}
	}
}

// handleJoin 驗證入房申請，通過後把連線掛進房間
// 觀眾比對會議密碼，主持人要求連線時帶的 token 有效
func (s *WebSocketManager) handleJoin(client *Client, req joinRequest) {
	if req.Role == RoleAsker {
		if !client.askerVerified {
			s.sendTo(client, models.NewErrorEvent("Not authorized"))
			return
		}
	} else {
		err := s.meetings.VerifyViewer(req.MeetingID, req.Password)
		switch {
		case err == nil:
		case err == ErrMeetingNotFound:
			s.sendTo(client, models.NewErrorEvent("Meeting not found"))
			return
		case err == ErrInvalidPassword:
			s.sendTo(client, models.NewErrorEvent("Invalid password"))
			return
		default:
			log.Error().Err(err).Str("client", client.ID).Msg("join verification failed")
			s.sendTo(client, models.NewErrorEvent("Join failed"))
			return
		}
	}

	client.MeetingID = req.MeetingID
	if req.Role == RoleAsker {
		client.Role = RoleAsker
	} else {
		client.Role = RoleViewer
	}
	s.addClient(client)
}

// writePump 處理向客戶端發送事件的邏輯
func (s *WebSocketManager) writePump(client *Client) {
	// 設置心跳檢查計時器
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event := <-client.SendChan:
			// 設置寫入超時
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

			w, err := client.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			eventBytes, err := json.Marshal(event)
			if err != nil {
				log.Error().Err(err).Msg("event encoding error")
				continue
			}

			if _, err := w.Write(eventBytes); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			// 發送心跳包
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-client.done:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// BroadcastToRoom 向房間內的所有連線廣播事件
// 廣播是盡力而為：送不進去的連線直接斷掉，斷線的客戶端重連後自行抓歷史
func (s *WebSocketManager) BroadcastToRoom(meetingID string, event *models.Event) {
	var stalled []*Client

	// 迭代期間持讀鎖，入房離房都拿寫鎖，房間 map 不會被邊走邊改
	s.roomsMux.RLock()
	for client := range s.rooms[meetingID] {
		select {
		case client.SendChan <- event:
			// 事件成功加入發送隊列
		default:
			stalled = append(stalled, client)
		}
	}
	s.roomsMux.RUnlock()

	// 隊列塞滿的連線視同斷線，放鎖之後才踢
	for _, client := range stalled {
		s.removeClient(client)
		client.Conn.Close()
	}
}

// sendTo 只送給單一連線，入房前的錯誤回覆用
func (s *WebSocketManager) sendTo(client *Client, event *models.Event) {
	select {
	case client.SendChan <- event:
	default:
	}
}

// addClient 安全地把連線掛進房間
func (s *WebSocketManager) addClient(client *Client) {
	s.roomsMux.Lock()
	defer s.roomsMux.Unlock()

	if s.rooms[client.MeetingID] == nil {
		s.rooms[client.MeetingID] = make(map[*Client]bool)
	}
	s.rooms[client.MeetingID][client] = true
}

// removeClient 安全地移除連線
func (s *WebSocketManager) removeClient(client *Client) {
	s.roomsMux.Lock()
	defer s.roomsMux.Unlock()

	if clients, ok := s.rooms[client.MeetingID]; ok {
		delete(clients, client)
		// 房間空了就把房間刪掉
		if len(clients) == 0 {
			delete(s.rooms, client.MeetingID)
		}
	}
}

// RoomSize 取得指定房間目前的連線數
func (s *WebSocketManager) RoomSize(meetingID string) int {
	s.roomsMux.RLock()
	defer s.roomsMux.RUnlock()

	return len(s.rooms[meetingID])
}
