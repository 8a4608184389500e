package repository

import "meeting_qa/internal/storage"

type Repositories struct {
	Meeting MeetingRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		Meeting: NewMeetingRepository(db),
	}
}
