package models

import (
	"time"
)

// User описывает учётную запись, привязанную к WeChat openId.
// Роль может быть пустой до завершения онбординга.
type User struct {
	ID           int64     `db:"id" json:"id"`
	OpenID       string    `db:"open_id" json:"open_id"`
	Name         *string   `db:"name" json:"name,omitempty"`
	Email        *string   `db:"email" json:"email,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	AvatarURL    *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	LoginMethod  *string   `db:"login_method" json:"login_method,omitempty"`
	Role         string    `db:"role" json:"role"`
	LastSignedIn time.Time `db:"last_signed_in" json:"last_signed_in"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
