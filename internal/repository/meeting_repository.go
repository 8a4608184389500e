package repository

import (
	"meeting_qa/internal/models"
	"meeting_qa/internal/storage"

	"gorm.io/gorm"
)

// MeetingRepository 是會議紀錄的唯一真實來源
// 每個寫入方法都是同步落地，回傳 nil 即代表已寫進資料庫
type MeetingRepository interface {
	Create(meeting *models.Meeting) error
	FindByCode(code string) (*models.Meeting, error)
	FindAll() ([]models.Meeting, error)
	DeleteByCode(code string) error
	AppendTurn(turn *models.Turn) error
	AppendAnswer(turn *models.Turn, exchange *models.Exchange) error
	TurnsByMeeting(code string) ([]models.Turn, error)
	ExchangesByMeeting(code string) ([]models.Exchange, error)
}

type meetingRepository struct {
	db *storage.PostgresDB
}

func NewMeetingRepository(db *storage.PostgresDB) MeetingRepository {
	return &meetingRepository{db: db}
}

func (r *meetingRepository) Create(meeting *models.Meeting) error {
	return r.db.Create(meeting).Error
}

func (r *meetingRepository) FindByCode(code string) (*models.Meeting, error) {
	var meeting models.Meeting
	err := r.db.Where("meeting_id = ?", code).First(&meeting).Error
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

// FindAll 查詢所有會議，新的在前
func (r *meetingRepository) FindAll() ([]models.Meeting, error) {
	var meetings []models.Meeting
	err := r.db.Order("created_at DESC").Find(&meetings).Error
	return meetings, err
}

// DeleteByCode 硬刪除會議以及它的對話紀錄與問答紀錄
func (r *meetingRepository) DeleteByCode(code string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Unscoped().Where("meeting_id = ?", code).Delete(&models.Meeting{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Unscoped().Where("meeting_id = ?", code).Delete(&models.Turn{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("meeting_id = ?", code).Delete(&models.Exchange{}).Error
	})
}

func (r *meetingRepository) AppendTurn(turn *models.Turn) error {
	return r.db.Create(turn).Error
}

// AppendAnswer 保存一組完成的回答
// 對話訊息和問答紀錄在同一筆交易落地，不會只留下其中一筆
func (r *meetingRepository) AppendAnswer(turn *models.Turn, exchange *models.Exchange) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(turn).Error; err != nil {
			return err
		}
		return tx.Create(exchange).Error
	})
}

// TurnsByMeeting 查詢完整對話紀錄，依插入順序排序
func (r *meetingRepository) TurnsByMeeting(code string) ([]models.Turn, error) {
	var turns []models.Turn
	err := r.db.Where("meeting_id = ?", code).Order("id asc").Find(&turns).Error
	return turns, err
}

// ExchangesByMeeting 查詢問答紀錄，依插入順序排序
func (r *meetingRepository) ExchangesByMeeting(code string) ([]models.Exchange, error) {
	var exchanges []models.Exchange
	err := r.db.Where("meeting_id = ?", code).Order("id asc").Find(&exchanges).Error
	return exchanges, err
}
