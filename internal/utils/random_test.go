package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMeetingCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := NewMeetingCode()
		require.Len(t, code, MeetingCodeLength)
		for _, ch := range code {
			require.True(t, strings.ContainsRune(meetingCodeAlphabet, ch),
				"unexpected character %q in code %q", ch, code)
		}
		seen[code] = true
	}
	// 32^6 種組合，100 次抽樣不該出現重複
	require.Len(t, seen, 100)
}

func TestNewMeetingCodeExcludesAmbiguousCharacters(t *testing.T) {
	for _, ch := range "0O1I" {
		require.False(t, strings.ContainsRune(meetingCodeAlphabet, ch))
	}
}

func TestNewNumericPassword(t *testing.T) {
	for i := 0; i < 100; i++ {
		password := NewNumericPassword()
		require.Len(t, password, PasswordLength)
		for _, ch := range password {
			require.True(t, ch >= '0' && ch <= '9',
				"unexpected character %q in password %q", ch, password)
		}
	}
}
