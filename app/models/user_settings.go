package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// UserSettings holds the review notification preference and the API
// credential of a user. Only the SHA-256 of a key is stored.
type UserSettings struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"uniqueIndex" json:"user_id"`
	NotifyOnReview   bool           `gorm:"default:true" json:"notify_on_review"`
	APIKeyHash       string         `gorm:"type:char(64);default:''" json:"-"`
	APIKeyPrefix     string         `gorm:"type:varchar(20);default:''" json:"api_key_prefix"`
	APIKeyCreatedAt  *time.Time     `json:"api_key_created_at"`
	APIKeyLastUsedAt *time.Time     `json:"api_key_last_used_at"`
	APIKeyRevokedAt  *time.Time     `json:"api_key_revoked_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

const (
	apiKeyPrefix     = "ccy_"
	apiKeyRandomLen  = 20 // bytes, 32 base32 characters
	apiKeyDisplayLen = 12
)

var apiKeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// APIKey is freshly generated key material. Raw is handed out once.
type APIKey struct {
	Raw    string
	Prefix string
	Hash   string
}

// NewAPIKey generates a random "ccy_" key.
func NewAPIKey() (APIKey, error) {
	buf := make([]byte, apiKeyRandomLen)
	if _, err := rand.Read(buf); err != nil {
		return APIKey{}, fmt.Errorf("failed to generate api key: %w", err)
	}
	raw := apiKeyPrefix + strings.ToLower(apiKeyEncoding.EncodeToString(buf))
	return APIKey{Raw: raw, Prefix: raw[:apiKeyDisplayLen], Hash: HashAPIKey(raw)}, nil
}

// LooksLikeAPIKey reports whether raw has the shape of a key issued by NewAPIKey.
func LooksLikeAPIKey(raw string) bool {
	if !strings.HasPrefix(raw, apiKeyPrefix) {
		return false
	}
	body := raw[len(apiKeyPrefix):]
	if len(body) != apiKeyEncoding.EncodedLen(apiKeyRandomLen) {
		return false
	}
	_, err := apiKeyEncoding.DecodeString(strings.ToUpper(body))
	return err == nil
}

// HashAPIKey returns the hex SHA-256 of a raw key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

// GetOrCreateUserSettings loads the settings row of a user, creating one with
// review notifications enabled when missing.
func GetOrCreateUserSettings(db *gorm.DB, userID uint) (*UserSettings, error) {
	var us UserSettings
	err := db.Where(UserSettings{UserID: userID}).
		Attrs(UserSettings{NotifyOnReview: true}).
		FirstOrCreate(&us).Error
	if err != nil {
		return nil, err
	}
	return &us, nil
}

func (us *UserSettings) HasActiveAPIKey() bool {
	return us != nil && us.APIKeyHash != "" && us.APIKeyRevokedAt == nil
}

// IssueAPIKey replaces the stored credential and returns the raw key.
// The caller persists us.
func (us *UserSettings) IssueAPIKey() (string, error) {
	key, err := NewAPIKey()
	if err != nil {
		return "", err
	}
	now := time.Now()
	us.APIKeyHash = key.Hash
	us.APIKeyPrefix = key.Prefix
	us.APIKeyCreatedAt = &now
	us.APIKeyLastUsedAt = nil
	us.APIKeyRevokedAt = nil
	return key.Raw, nil
}

// RevokeAPIKey disables the credential but keeps the row.
func (us *UserSettings) RevokeAPIKey() {
	now := time.Now()
	us.APIKeyHash = ""
	us.APIKeyPrefix = ""
	us.APIKeyLastUsedAt = nil
	us.APIKeyRevokedAt = &now
}
