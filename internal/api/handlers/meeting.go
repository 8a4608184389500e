package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"meeting_qa/internal/service"
	"meeting_qa/internal/utils"
)

// MeetingHandler 處理與會議相關的請求
type MeetingHandler struct {
	meetingService *service.MeetingService
	relayService   *service.RelayService
}

// NewMeetingHandler 創建一個新的 MeetingHandler 實例
func NewMeetingHandler(meetingService *service.MeetingService, relayService *service.RelayService) *MeetingHandler {
	return &MeetingHandler{
		meetingService: meetingService,
		relayService:   relayService,
	}
}

// CreateMeeting 處理創建會議的請求，標題可以為空，會用預設標題
func (h *MeetingHandler) CreateMeeting(c *gin.Context) {
	var input struct {
		Title string `json:"title"`
	}
	// 空請求體也允許
	_ = c.ShouldBindJSON(&input)

	meeting, err := h.meetingService.CreateMeeting(input.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "創建會議失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "meeting": meeting})
}

// ListMeetings 列出所有會議的摘要，任何人可查
func (h *MeetingHandler) ListMeetings(c *gin.Context) {
	meetings, err := h.meetingService.ListMeetings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "無法搜尋會議列表"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "meetings": meetings})
}

// GetMeetingDetails 處理獲取完整會議紀錄的請求，主持人專用
func (h *MeetingHandler) GetMeetingDetails(c *gin.Context) {
	meeting, err := h.meetingService.GetMeeting(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrMeetingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Meeting not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "無法搜尋會議紀錄"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "meeting": meeting})
}

// JoinInput 定義加入會議請求的結構
type JoinInput struct {
	MeetingID string `json:"meetingId" binding:"required"`
	Password  string `json:"password"`
}

// JoinMeeting 處理觀眾加入會議的請求
func (h *MeetingHandler) JoinMeeting(c *gin.Context) {
	var input JoinInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	meeting, err := h.meetingService.JoinMeeting(input.MeetingID, input.Password)
	switch {
	case errors.Is(err, service.ErrMeetingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Meeting not found"})
		return
	case errors.Is(err, service.ErrInvalidPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Invalid password"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "加入會議失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "meeting": meeting})
}

// GetHistory 處理歷史紀錄請求
// 觀眾帶 role=viewer 和密碼，只能拿到回答；主持人要帶有效 token，拿到非 system 的完整對話
func (h *MeetingHandler) GetHistory(c *gin.Context) {
	code := c.Param("id")

	if c.Query("role") == "viewer" {
		messages, err := h.meetingService.HistoryForViewer(code, c.Query("password"))
		switch {
		case errors.Is(err, service.ErrMeetingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Meeting not found"})
			return
		case errors.Is(err, service.ErrInvalidPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Invalid password"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "無法搜尋歷史紀錄"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "messages": messages})
		return
	}

	// 主持人視角需要有效 token
	if !askerAuthorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Missing token"})
		return
	}

	turns, err := h.meetingService.HistoryForAsker(code)
	if err != nil {
		if errors.Is(err, service.ErrMeetingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Meeting not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "無法搜尋歷史紀錄"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "messages": turns})
}

// DeleteMeeting 處理刪除會議的請求，硬刪除
func (h *MeetingHandler) DeleteMeeting(c *gin.Context) {
	err := h.meetingService.DeleteMeeting(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrMeetingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Meeting not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "刪除會議失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AskInput 定義提問請求的結構
type AskInput struct {
	Message      string `json:"message"`
	SendToViewer bool   `json:"sendToViewer"`
}

// Ask 處理提問
// 串流路徑在保存提問後立刻回覆，生成結果之後透過房間事件送出
func (h *MeetingHandler) Ask(c *gin.Context) {
	var input AskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Message required"})
		return
	}

	result, err := h.relayService.Ask(c.Param("id"), input.Message, input.SendToViewer)
	switch {
	case errors.Is(err, service.ErrMeetingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Meeting not found"})
		return
	case errors.Is(err, service.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Message required"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "提問處理失敗"})
		return
	}

	if result.Manual {
		c.JSON(http.StatusOK, gin.H{"ok": true, "manualResponse": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": "streaming"})
}

// askerAuthorized 檢查請求是否帶了有效的主持人 token
func askerAuthorized(c *gin.Context) bool {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return false
	}
	_, err := utils.ParseToken(parts[1])
	return err == nil
}
