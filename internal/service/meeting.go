package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"meeting_qa/internal/models"
	"meeting_qa/internal/repository"
	"meeting_qa/internal/utils"
)

// MeetingSummary 列表用的會議摘要，不含密碼與任何對話內容
type MeetingSummary struct {
	MeetingID string    `json:"meetingId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// MeetingDetail 主持人視角的完整會議紀錄
type MeetingDetail struct {
	MeetingID   string            `json:"meetingId"`
	Title       string            `json:"title"`
	Password    string            `json:"password"`
	CreatedAt   time.Time         `json:"createdAt"`
	ChatHistory []models.Turn     `json:"chatHistory"`
	Messages    []models.Exchange `json:"messages"`
}

// JoinedMeeting 加入成功後回給觀眾的最小資訊
type JoinedMeeting struct {
	MeetingID string `json:"meetingId"`
	Title     string `json:"title"`
}

// ViewerMessage 觀眾歷史紀錄的投影，只含最終回答與時間
type ViewerMessage struct {
	Response         string    `json:"response"`
	ResponseDatetime time.Time `json:"responseDatetime"`
}

type MeetingService struct {
	meetingRepo repository.MeetingRepository
	credentials CredentialVerifier
}

func NewMeetingService(meetingRepo repository.MeetingRepository, credentials CredentialVerifier) *MeetingService {
	return &MeetingService{
		meetingRepo: meetingRepo,
		credentials: credentials,
	}
}

// CreateMeeting 建立會議並產生代碼與密碼
// 回傳的 Password 一定是明文，主持人要把它轉交給觀眾
func (s *MeetingService) CreateMeeting(title string) (*MeetingDetail, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled Meeting"
	}

	code, err := s.newMeetingCode()
	if err != nil {
		return nil, err
	}

	password := utils.NewNumericPassword()
	stored, err := s.credentials.Store(password)
	if err != nil {
		return nil, err
	}

	meeting := &models.Meeting{
		MeetingID: code,
		Title:     title,
		Password:  stored,
	}
	if err := s.meetingRepo.Create(meeting); err != nil {
		return nil, err
	}

	// 對話紀錄以一則 system 訊息起頭
	seed := models.NewTurn(code, models.RoleSystem, models.SystemSeed, meeting.CreatedAt)
	if err := s.meetingRepo.AppendTurn(&seed); err != nil {
		return nil, err
	}

	return &MeetingDetail{
		MeetingID:   code,
		Title:       title,
		Password:    password,
		CreatedAt:   meeting.CreatedAt,
		ChatHistory: []models.Turn{seed},
		Messages:    []models.Exchange{},
	}, nil
}

// newMeetingCode 產生不跟現有會議撞號的代碼
// 撞號機率極低，保險起見仍重試幾次
func (s *MeetingService) newMeetingCode() (string, error) {
	for i := 0; i < 5; i++ {
		code := utils.NewMeetingCode()
		_, err := s.meetingRepo.FindByCode(code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("could not generate an unused meeting code")
}

// GetMeeting 取得完整會議紀錄，主持人專用
func (s *MeetingService) GetMeeting(code string) (*MeetingDetail, error) {
	meeting, err := s.findMeeting(code)
	if err != nil {
		return nil, err
	}

	turns, err := s.meetingRepo.TurnsByMeeting(code)
	if err != nil {
		return nil, err
	}
	exchanges, err := s.meetingRepo.ExchangesByMeeting(code)
	if err != nil {
		return nil, err
	}

	return &MeetingDetail{
		MeetingID:   meeting.MeetingID,
		Title:       meeting.Title,
		Password:    meeting.Password,
		CreatedAt:   meeting.CreatedAt,
		ChatHistory: turns,
		Messages:    exchanges,
	}, nil
}

// JoinMeeting 以密碼驗證觀眾身份，成功時只回傳代碼與標題
func (s *MeetingService) JoinMeeting(code, password string) (*JoinedMeeting, error) {
	meeting, err := s.findMeeting(code)
	if err != nil {
		return nil, err
	}
	if !s.credentials.Verify(meeting.Password, password) {
		return nil, ErrInvalidPassword
	}
	return &JoinedMeeting{MeetingID: meeting.MeetingID, Title: meeting.Title}, nil
}

// VerifyViewer 驗證觀眾密碼，入房時使用
func (s *MeetingService) VerifyViewer(code, password string) error {
	_, err := s.JoinMeeting(code, password)
	return err
}

// DeleteMeeting 硬刪除會議
func (s *MeetingService) DeleteMeeting(code string) error {
	err := s.meetingRepo.DeleteByCode(code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMeetingNotFound
	}
	return err
}

// ListMeetings 列出所有會議的摘要，不暴露密碼與對話內容
func (s *MeetingService) ListMeetings() ([]MeetingSummary, error) {
	meetings, err := s.meetingRepo.FindAll()
	if err != nil {
		return nil, err
	}

	summaries := make([]MeetingSummary, 0, len(meetings))
	for _, m := range meetings {
		summaries = append(summaries, MeetingSummary{
			MeetingID: m.MeetingID,
			Title:     m.Title,
			CreatedAt: m.CreatedAt,
		})
	}
	return summaries, nil
}

// HistoryForAsker 回傳完整對話紀錄，但不含起頭的 system 訊息
func (s *MeetingService) HistoryForAsker(code string) ([]models.Turn, error) {
	if _, err := s.findMeeting(code); err != nil {
		return nil, err
	}

	turns, err := s.meetingRepo.TurnsByMeeting(code)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Turn, 0, len(turns))
	for _, t := range turns {
		if t.Role == models.RoleSystem {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered, nil
}

// HistoryForViewer 回傳觀眾可見的歷史紀錄
// 觀眾不能看到提問原文，所以只投影出回答與時間
func (s *MeetingService) HistoryForViewer(code, password string) ([]ViewerMessage, error) {
	meeting, err := s.findMeeting(code)
	if err != nil {
		return nil, err
	}
	if !s.credentials.Verify(meeting.Password, password) {
		return nil, ErrInvalidPassword
	}

	exchanges, err := s.meetingRepo.ExchangesByMeeting(code)
	if err != nil {
		return nil, err
	}

	messages := make([]ViewerMessage, 0, len(exchanges))
	for _, e := range exchanges {
		messages = append(messages, ViewerMessage{
			Response:         e.Response,
			ResponseDatetime: e.ResponseDatetime,
		})
	}
	return messages, nil
}

func (s *MeetingService) findMeeting(code string) (*models.Meeting, error) {
	meeting, err := s.meetingRepo.FindByCode(code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMeetingNotFound
	}
	if err != nil {
		return nil, err
	}
	return meeting, nil
}
