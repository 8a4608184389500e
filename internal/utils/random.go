package utils

import "math/rand/v2"

// 會議代碼字母表，排除容易混淆的 0/O/1/I
const meetingCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	MeetingCodeLength = 6
	PasswordLength    = 8
)

// NewMeetingCode 產生 6 位會議代碼
func NewMeetingCode() string {
	b := make([]byte, MeetingCodeLength)
	for i := range b {
		b[i] = meetingCodeAlphabet[rand.IntN(len(meetingCodeAlphabet))]
	}
	return string(b)
}

// NewNumericPassword 產生 8 位數字密碼
func NewNumericPassword() string {
	b := make([]byte, PasswordLength)
	for i := range b {
		b[i] = byte('0' + rand.IntN(10))
	}
	return string(b)
}
