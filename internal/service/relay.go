package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"meeting_qa/internal/models"
	"meeting_qa/internal/repository"
)

// errorMessage 串流失敗時廣播給房間的文字
const errorMessage = "Assistant failed to respond."

// TokenStreamer 供中繼器取得上游補全串流
type TokenStreamer interface {
	StreamCompletion(ctx context.Context, history []models.Turn, onToken func(token string)) (string, error)
}

// RoomBroadcaster 供中繼器向房間廣播事件
type RoomBroadcaster interface {
	BroadcastToRoom(meetingID string, event *models.Event)
}

// AskResult 一次提問的同步回覆
type AskResult struct {
	Streaming bool // 已保存提問並在背景開始串流
	Manual    bool // 手動廣播，沒有經過模型
}

// RelayService 串接提問、上游串流與房間廣播
//
// 狀態流轉：提問先同步落地，請求當場得到回覆，
// 之後的串流在背景進行，結果只透過房間事件送出。
type RelayService struct {
	meetingRepo repository.MeetingRepository
	completion  TokenStreamer
	rooms       RoomBroadcaster

	locksMux sync.Mutex
	locks    map[string]*sync.Mutex // 每場會議一把鎖，同會議的提問排隊處理
}

func NewRelayService(meetingRepo repository.MeetingRepository, completion TokenStreamer, rooms RoomBroadcaster) *RelayService {
	return &RelayService{
		meetingRepo: meetingRepo,
		completion:  completion,
		rooms:       rooms,
		locks:       make(map[string]*sync.Mutex),
	}
}

// Ask 處理一次提問
// sendToViewer 為 true 時跳過模型，直接把 message 當成最終回答落地並廣播
func (s *RelayService) Ask(meetingID, message string, sendToViewer bool) (*AskResult, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}

	meeting, err := s.meetingRepo.FindByCode(meetingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMeetingNotFound
	}
	if err != nil {
		return nil, err
	}

	inputTime := time.Now()

	if sendToViewer {
		if err := s.finalize(meeting, models.ManualInput, message, inputTime, time.Now()); err != nil {
			return nil, err
		}
		return &AskResult{Manual: true}, nil
	}

	// 提問先同步落地，中途當機也不會丟失問題
	userTurn := models.NewTurn(meeting.MeetingID, models.RoleUser, message, inputTime)
	if err := s.meetingRepo.AppendTurn(&userTurn); err != nil {
		return nil, err
	}
	s.rooms.BroadcastToRoom(meeting.MeetingID, models.NewMessageEvent(userTurn))

	go s.stream(meeting, message, inputTime)

	return &AskResult{Streaming: true}, nil
}

// stream 在背景驅動上游串流並逐 token 廣播
// 失敗時不保存任何部分回答，只對房間送出錯誤事件
func (s *RelayService) stream(meeting *models.Meeting, input string, inputTime time.Time) {
	lock := s.meetingLock(meeting.MeetingID)
	lock.Lock()
	defer lock.Unlock()

	history, err := s.meetingRepo.TurnsByMeeting(meeting.MeetingID)
	if err != nil {
		log.Error().Err(err).Str("meeting", meeting.MeetingID).Msg("load chat history failed")
		s.rooms.BroadcastToRoom(meeting.MeetingID, models.NewErrorEvent(errorMessage))
		return
	}

	answer, err := s.completion.StreamCompletion(context.Background(), history, func(token string) {
		s.rooms.BroadcastToRoom(meeting.MeetingID, models.NewTokenEvent(token))
	})
	if err != nil {
		log.Error().Err(err).Str("meeting", meeting.MeetingID).Msg("completion stream failed")
		s.rooms.BroadcastToRoom(meeting.MeetingID, models.NewErrorEvent(errorMessage))
		return
	}

	if err := s.finalize(meeting, input, answer, inputTime, time.Now()); err != nil {
		log.Error().Err(err).Str("meeting", meeting.MeetingID).Msg("persist answer failed")
		s.rooms.BroadcastToRoom(meeting.MeetingID, models.NewErrorEvent(errorMessage))
	}
}

// finalize 保存最終回答並廣播 assistant_done
// done 事件一定在該次提問的所有 token 事件之後送出
func (s *RelayService) finalize(meeting *models.Meeting, input, answer string, inputTime, responseTime time.Time) error {
	turn := models.NewTurn(meeting.MeetingID, models.RoleAssistant, answer, responseTime)
	exchange := &models.Exchange{
		MeetingID:        meeting.MeetingID,
		Title:            meeting.Title,
		Password:         meeting.Password,
		Input:            input,
		Response:         answer,
		InputDatetime:    inputTime,
		ResponseDatetime: responseTime,
	}
	// 兩份紀錄一起落地，主持人和觀眾的歷史不會分家
	if err := s.meetingRepo.AppendAnswer(&turn, exchange); err != nil {
		return err
	}

	s.rooms.BroadcastToRoom(meeting.MeetingID, models.NewDoneEvent(answer, responseTime))
	return nil
}

func (s *RelayService) meetingLock(meetingID string) *sync.Mutex {
	s.locksMux.Lock()
	defer s.locksMux.Unlock()

	lock, ok := s.locks[meetingID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[meetingID] = lock
	}
	return lock
}
