package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meeting_qa/internal/identity"
	"meeting_qa/internal/utils"
)

// AuthHandler 處理主持人登入
type AuthHandler struct {
	identity    *identity.Client
	adminEmails []string
}

// NewAuthHandler 創建一個新的 AuthHandler 實例
func NewAuthHandler(identityClient *identity.Client, adminEmails []string) *AuthHandler {
	return &AuthHandler{
		identity:    identityClient,
		adminEmails: adminEmails,
	}
}

// LoginInput 定義登入請求的結構
type LoginInput struct {
	IDToken string `json:"idToken" binding:"required"`
}

// Login 把外部身份服務核發的 idToken 換成本地 session token
// 只有 email 在允許清單上的人可以拿到主持人 token
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Missing token"})
		return
	}

	email, err := h.identity.Verify(c.Request.Context(), input.IDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Auth failed"})
		return
	}

	if !h.isAdmin(email) {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "Not authorized"})
		return
	}

	token, err := utils.GenerateToken(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "獲取token失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "token": token})
}

func (h *AuthHandler) isAdmin(email string) bool {
	for _, allowed := range h.adminEmails {
		if allowed == email {
			return true
		}
	}
	return false
}
