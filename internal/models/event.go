package models

import "time"

// 房間廣播的事件名稱，和前端約定的即時訊息契約
const (
	EventJoinMeeting    = "join_meeting"    // client -> server，申請加入房間
	EventMessage        = "message"         // server -> room，回聲新的提問
	EventAssistantToken = "assistant_token" // server -> room，一個生成的 token
	EventAssistantDone  = "assistant_done"  // server -> room，完整回答與時間
	EventError          = "error_msg"       // server -> room 或單一連線，人類可讀的錯誤
)

// Event 表示一則房間事件，對應 WebSocket 上的一則 JSON 訊息
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// DonePayload assistant_done 事件攜帶的內容
type DonePayload struct {
	Response         string    `json:"response"`
	ResponseDatetime time.Time `json:"responseDatetime"`
}

// NewMessageEvent 建立回聲提問用的事件
func NewMessageEvent(turn Turn) *Event {
	return &Event{Event: EventMessage, Data: turn}
}

// NewTokenEvent 建立單一 token 的事件，內容是純文字片段
func NewTokenEvent(token string) *Event {
	return &Event{Event: EventAssistantToken, Data: token}
}

// NewDoneEvent 建立回答完成的事件
func NewDoneEvent(response string, responseDatetime time.Time) *Event {
	return &Event{
		Event: EventAssistantDone,
		Data: DonePayload{
			Response:         response,
			ResponseDatetime: responseDatetime,
		},
	}
}

// NewErrorEvent 建立錯誤事件
func NewErrorEvent(message string) *Event {
	return &Event{Event: EventError, Data: message}
}
