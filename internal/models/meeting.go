package models

import (
	"time"

	"gorm.io/gorm"
)

// 對話紀錄中每一則訊息的角色
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ManualInput 手動廣播時寫入 Exchange 的 input 標記
const ManualInput = "(manual)"

// SystemSeed 會議建立時寫入對話紀錄的第一則 system 訊息內容
const SystemSeed = "You are ChatGPT."

// Meeting 表示一場問答會議
type Meeting struct {
	gorm.Model
	MeetingID string `gorm:"uniqueIndex;size:6" json:"meetingId"` // 6 位會議代碼
	Title     string `json:"title"`
	Password  string `gorm:"size:60" json:"password"` // 觀眾共享密碼，預設明文保存，可由設定改為 bcrypt
}

// Turn 表示完整對話紀錄中的一則訊息
// 照插入順序保存，這個順序就是送給上游模型的對話順序
type Turn struct {
	gorm.Model
	MeetingID string    `gorm:"index;size:6" json:"-"`
	Role      string    `gorm:"size:20" json:"role"`
	Content   string    `gorm:"type:text" json:"content"`
	Timestamp time.Time `json:"ts"`
}

// NewTurn 建立一則對話訊息
func NewTurn(meetingID, role, content string, ts time.Time) Turn {
	return Turn{
		MeetingID: meetingID,
		Role:      role,
		Content:   content,
		Timestamp: ts,
	}
}

// Exchange 表示一組完成的問答，是給觀眾看的去敏投影
// 建立後不再修改
type Exchange struct {
	gorm.Model
	MeetingID        string    `gorm:"index;size:6" json:"meetingId"`
	Title            string    `json:"title"`
	Password         string    `json:"password"`
	Input            string    `gorm:"type:text" json:"input"`
	Response         string    `gorm:"type:text" json:"response"`
	InputDatetime    time.Time `json:"inputDatetime"`
	ResponseDatetime time.Time `json:"responseDatetime"`
}
