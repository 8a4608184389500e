package service

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"meeting_qa/internal/models"
)

// fakeMeetingRepo 是測試用的記憶體實作，行為比照 gorm 版本：
// 找不到紀錄回傳 gorm.ErrRecordNotFound，寫入順序就是查詢順序
type fakeMeetingRepo struct {
	mu        sync.Mutex
	nextID    uint
	meetings  map[string]*models.Meeting
	turns     []models.Turn
	exchanges []models.Exchange

	appendTurnErr   error
	appendAnswerErr error
}

func newFakeMeetingRepo() *fakeMeetingRepo {
	return &fakeMeetingRepo{meetings: make(map[string]*models.Meeting)}
}

func (r *fakeMeetingRepo) Create(meeting *models.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	meeting.ID = r.nextID
	meeting.CreatedAt = time.Now()
	copied := *meeting
	r.meetings[meeting.MeetingID] = &copied
	return nil
}

func (r *fakeMeetingRepo) FindByCode(code string) (*models.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	meeting, ok := r.meetings[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *meeting
	return &copied, nil
}

func (r *fakeMeetingRepo) FindAll() ([]models.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]models.Meeting, 0, len(r.meetings))
	for _, m := range r.meetings {
		all = append(all, *m)
	}
	return all, nil
}

func (r *fakeMeetingRepo) DeleteByCode(code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[code]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.meetings, code)
	return nil
}

func (r *fakeMeetingRepo) AppendTurn(turn *models.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendTurnErr != nil {
		return r.appendTurnErr
	}
	r.nextID++
	turn.ID = r.nextID
	r.turns = append(r.turns, *turn)
	return nil
}

func (r *fakeMeetingRepo) AppendAnswer(turn *models.Turn, exchange *models.Exchange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendAnswerErr != nil {
		return r.appendAnswerErr
	}
	r.nextID++
	turn.ID = r.nextID
	r.turns = append(r.turns, *turn)
	r.nextID++
	exchange.ID = r.nextID
	r.exchanges = append(r.exchanges, *exchange)
	return nil
}

func (r *fakeMeetingRepo) TurnsByMeeting(code string) ([]models.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var turns []models.Turn
	for _, t := range r.turns {
		if t.MeetingID == code {
			turns = append(turns, t)
		}
	}
	return turns, nil
}

func (r *fakeMeetingRepo) ExchangesByMeeting(code string) ([]models.Exchange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var exchanges []models.Exchange
	for _, e := range r.exchanges {
		if e.MeetingID == code {
			exchanges = append(exchanges, e)
		}
	}
	return exchanges, nil
}

func (r *fakeMeetingRepo) turnsByRole(code, role string) []models.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	var turns []models.Turn
	for _, t := range r.turns {
		if t.MeetingID == code && t.Role == role {
			turns = append(turns, t)
		}
	}
	return turns
}

const meetingCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func TestCreateMeeting(t *testing.T) {
	repo := newFakeMeetingRepo()
	svc := NewMeetingService(repo, PlainCredential{})

	meeting, err := svc.CreateMeeting("Standup")
	require.NoError(t, err)

	require.Equal(t, "Standup", meeting.Title)
	require.Len(t, meeting.MeetingID, 6)
	for _, ch := range meeting.MeetingID {
		require.True(t, strings.ContainsRune(meetingCodeAlphabet, ch))
	}
	require.Len(t, meeting.Password, 8)
	for _, ch := range meeting.Password {
		require.True(t, ch >= '0' && ch <= '9')
	}

	// 對話紀錄以一則 system 訊息起頭
	require.Len(t, meeting.ChatHistory, 1)
	require.Equal(t, models.RoleSystem, meeting.ChatHistory[0].Role)
	require.Equal(t, models.SystemSeed, meeting.ChatHistory[0].Content)
	require.Empty(t, meeting.Messages)
}

func TestCreateMeetingDefaultsTitle(t *testing.T) {
	repo := newFakeMeetingRepo()
	svc := NewMeetingService(repo, PlainCredential{})

	meeting, err := svc.CreateMeeting("   ")
	require.NoError(t, err)
	require.Equal(t, "Untitled Meeting", meeting.Title)
}

func TestCreateMeetingCodesUnique(t *testing.T) {
	repo := newFakeMeetingRepo()
	svc := NewMeetingService(repo, PlainCredential{})

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		meeting, err := svc.CreateMeeting("Meeting")
		require.NoError(t, err)
		require.False(t, seen[meeting.MeetingID], "duplicate code %s", meeting.MeetingID)
		seen[meeting.MeetingID] = true
	}
}

func TestJoinMeeting(t *testing.T) {
	repo := newFakeMeetingRepo()
	svc := NewMeetingService(repo, PlainCredential{})

	meeting, err := svc.CreateMeeting("Standup")
	require.NoError(t, err)

	joined, err := svc.JoinMeeting(meeting.MeetingID, meeting.Password)
	require.NoError(t, err)
	require.Equal(t, meeting.MeetingID, joined.MeetingID)
	require.Equal(t, "Standup", joined.Title)

	// 任何不完全一致的輸入都要失敗
	for _, bad := range []string{"", meeting.Password + "0", meeting.Password[:7]} {
		_, err := svc.JoinMeeting(meeting.MeetingID, bad)
		require.ErrorIs(t, err, ErrInvalidPassword)
	}

	_, err = svc.JoinMeeting("NOSUCH", meeting.Password)
	require.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestJoinMeetingWithBcryptCredential(t *testing.T) {
	repo := newFakeMeetingRepo()
	svc := NewMeetingService(repo, BcryptCredential{})

	meeting, err := svc.CreateMeeting("Standup")
	require.NoError(t, err)

	// 回傳給主持人的仍是明文，保存的是雜湊
	stored, err := repo.FindByCode(meeting.MeetingID)
	require.NoError(t, err)
	require.NotEqual(t, meeting.Password, stored.Password)

	_, err = svc.JoinMeeting(meeting.MeetingID, meeting.Password)
	require.NoError(t, err)

	_, err = svc.JoinMeeting(meeting.MeetingID, "00000000")
	require.ErrorIs(t, err, ErrInvalidPassword)
}

func TestHistoryForAskerExcludesSystemTurn(t *testing.T) {
	repo := newFakeMeetingRepo()
	svc := NewMeetingService(repo, PlainCredential{})

	meeting, err := svc.CreateMeeting("Standup")
	require.NoError(t, err)

	now := time.Now()
	userTurn := models.NewTurn(meeting.MeetingID, models.RoleUser, "What is 2+2?", now)
	require.NoError(t, repo.AppendTurn(&userTurn))
	assistantTurn := models.NewTurn(meeting.MeetingID, models.RoleAssistant, "4", now)
	require.NoError(t, repo.AppendTurn(&assistantTurn))

	turns, err := svc.HistoryForAsker(meeting.MeetingID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	for _, turn := range turns {
		require.NotEqual(t, models.RoleSystem, turn.Role)
	}
	require.Equal(t, "What is 2+2?", turns[0].Content)
	require.Equal(t, "4", turns[1].Content)

	_, err = svc.HistoryForAsker("NOSUCH")
	require.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestHistoryForViewer(t *testing.T) {
	repo := newFakeMeetingRepo()
	svc := NewMeetingService(repo, PlainCredential{})

	meeting, err := svc.CreateMeeting("Standup")
	require.NoError(t, err)

	now := time.Now()
	answer := models.NewTurn(meeting.MeetingID, models.RoleAssistant, "4", now)
	require.NoError(t, repo.AppendAnswer(&answer, &models.Exchange{
		MeetingID:        meeting.MeetingID,
		Title:            meeting.Title,
		Password:         meeting.Password,
		Input:            "What is 2+2?",
		Response:         "4",
		InputDatetime:    now,
		ResponseDatetime: now,
	}))

	messages, err := svc.HistoryForViewer(meeting.MeetingID, meeting.Password)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	// 投影只有回答與時間，提問原文不外流
	require.Equal(t, "4", messages[0].Response)

	_, err = svc.HistoryForViewer(meeting.MeetingID, "wrong")
	require.ErrorIs(t, err, ErrInvalidPassword)
	_, err = svc.HistoryForViewer("NOSUCH", meeting.Password)
	require.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestListMeetingsOmitsSecrets(t *testing.T) {
	repo := newFakeMeetingRepo()
	svc := NewMeetingService(repo, PlainCredential{})

	meeting, err := svc.CreateMeeting("Standup")
	require.NoError(t, err)

	summaries, err := svc.ListMeetings()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, meeting.MeetingID, summaries[0].MeetingID)
	require.Equal(t, "Standup", summaries[0].Title)
	require.False(t, summaries[0].CreatedAt.IsZero())
}

func TestDeleteMeeting(t *testing.T) {
	repo := newFakeMeetingRepo()
	svc := NewMeetingService(repo, PlainCredential{})

	meeting, err := svc.CreateMeeting("Standup")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMeeting(meeting.MeetingID))
	require.ErrorIs(t, svc.DeleteMeeting(meeting.MeetingID), ErrMeetingNotFound)

	_, err = svc.GetMeeting(meeting.MeetingID)
	require.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestGetMeetingReturnsFullRecord(t *testing.T) {
	repo := newFakeMeetingRepo()
	svc := NewMeetingService(repo, PlainCredential{})

	meeting, err := svc.CreateMeeting("Standup")
	require.NoError(t, err)

	detail, err := svc.GetMeeting(meeting.MeetingID)
	require.NoError(t, err)
	require.Equal(t, meeting.MeetingID, detail.MeetingID)
	require.Len(t, detail.ChatHistory, 1)
	require.Equal(t, models.RoleSystem, detail.ChatHistory[0].Role)
	require.Empty(t, detail.Messages)

	_, err = svc.GetMeeting("NOSUCH")
	require.ErrorIs(t, err, ErrMeetingNotFound)
}
