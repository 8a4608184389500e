package service

import "golang.org/x/crypto/bcrypt"

// CredentialVerifier 定義觀眾密碼的保存形式與比對方式
// 兩個實作走同一個介面，可由設定切換
type CredentialVerifier interface {
	// Store 把明文密碼轉成要寫進資料庫的形式
	Store(password string) (string, error)
	// Verify 比對保存值與使用者輸入
	Verify(stored, given string) bool
}

// PlainCredential 以明文保存密碼並做精確字串比對
// 密碼是共享秘密而不是帳號憑證，沿用線上既有的比對行為
type PlainCredential struct{}

func (PlainCredential) Store(password string) (string, error) {
	return password, nil
}

func (PlainCredential) Verify(stored, given string) bool {
	return stored == given
}

// BcryptCredential 以 bcrypt 雜湊保存密碼
type BcryptCredential struct{}

func (BcryptCredential) Store(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (BcryptCredential) Verify(stored, given string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
}
