// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User はアプリケーションの利用者を表すモデルです。
// PasswordHash はbcryptハッシュとして保存し、JSONには含めません。
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser は新しいUserインスタンスを作成します。
func NewUser(email, passwordHash string) (*User, error) {
	u := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Truncate(time.Second),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// LoadUser は既存のUserインスタンスを作成します。
func LoadUser(id uuid.UUID, email, passwordHash string, createdAt time.Time) (*User, error) {
	if id == uuid.Nil {
		return nil, errors.New("id is required for loaded user")
	}
	u := &User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate はユーザーのデータバリデーションを行います。
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	// 厳密なRFC検証はせず、最低限の形式のみ確認する
	if !strings.Contains(u.Email, "@") {
		return errors.New("email is invalid")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if u.CreatedAt.IsZero() {
		return errors.New("created_at is required")
	}
	return nil
}
