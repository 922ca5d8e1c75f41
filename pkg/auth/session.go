package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken は形式不正または署名不一致
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired は有効期限切れ
	ErrTokenExpired = errors.New("token expired")
)

// DefaultTokenTTL は管理者トークンの既定の有効期間
const DefaultTokenTTL = time.Hour

const minSecretLen = 32

// CreateToken は subject と有効期限から署名付きトークンを生成する。
// 形式: base64url("subject|unixExpiry") + "." + hex(HMAC-SHA256)
func CreateToken(subject string, expiresAt time.Time, secret []byte) string {
	payload := []byte(subject + "|" + strconv.FormatInt(expiresAt.Unix(), 10))
	return base64.RawURLEncoding.EncodeToString(payload) + "." + sign(payload, secret)
}

// VerifyToken はトークンを検証し subject を返す
func VerifyToken(token string, secret []byte, now time.Time) (string, error) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrInvalidToken
	}
	if !hmac.Equal([]byte(sign(payload, secret)), []byte(parts[1])) {
		return "", ErrInvalidToken
	}

	i := strings.LastIndexByte(string(payload), '|')
	if i <= 0 {
		return "", ErrInvalidToken
	}
	exp, err := strconv.ParseInt(string(payload[i+1:]), 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if !now.Before(time.Unix(exp, 0)) {
		return "", ErrTokenExpired
	}
	return string(payload[:i]), nil
}

func sign(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SessionSecretBytes は文字列からトークン署名用のバイト列を生成する（最低32バイト）
func SessionSecretBytes(s string) []byte {
	b := []byte(s)
	if len(b) < minSecretLen {
		out := make([]byte, minSecretLen)
		copy(out, b)
		return out
	}
	return b
}
