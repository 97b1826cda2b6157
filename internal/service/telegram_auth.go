package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var ErrBadInitData = errors.New("invalid telegram init data")

// TelegramUser is the user object embedded in WebApp init data.
type TelegramUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// VerifyTelegramInitData checks the WebApp init_data signature against the
// bot token and returns the embedded user. auth_date must be within the last
// hour, which keeps captured payloads from being replayed later.
func VerifyTelegramInitData(initData, botToken string) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrBadInitData
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, ErrBadInitData
	}
	values.Del("hash")

	var dataCheck []string
	for k, v := range values {
		dataCheck = append(dataCheck, k+"="+strings.Join(v, ""))
	}
	sort.Strings(dataCheck)

	kdf := hmac.New(sha256.New, []byte("WebAppData"))
	kdf.Write([]byte(botToken))

	mac := hmac.New(sha256.New, kdf.Sum(nil))
	mac.Write([]byte(strings.Join(dataCheck, "\n")))

	provided, err := hex.DecodeString(hash)
	if err != nil {
		return nil, ErrBadInitData
	}
	if !hmac.Equal(mac.Sum(nil), provided) {
		return nil, ErrBadInitData
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, ErrBadInitData
	}
	now := time.Now().Unix()
	// small forward skew allowed, anything older than an hour rejected
	if now-authDate > 3600 || authDate-now > 300 {
		return nil, ErrBadInitData
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil {
		return nil, ErrBadInitData
	}
	if user.ID == 0 {
		return nil, ErrBadInitData
	}

	return &user, nil
}
