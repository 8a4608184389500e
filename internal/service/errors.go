package service

import "errors"

// 服務層錯誤，由 handler 對應到 HTTP 狀態碼
var (
	ErrMeetingNotFound  = errors.New("meeting not found")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrEmptyMessage     = errors.New("message required")
	ErrGenerationFailed = errors.New("assistant failed to respond")
)
