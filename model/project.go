// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus はプロジェクトの進行状態を表す列挙型です。
type ProjectStatus string

const (
	StatusPlanning   ProjectStatus = "planning"
	StatusInProgress ProjectStatus = "in-progress"
	StatusDone       ProjectStatus = "done"
)

// ParseProjectStatus は文字列からProjectStatusを生成します。
// 空文字列の場合はデフォルトとしてplanningを返します。
func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch ProjectStatus(s) {
	case StatusPlanning, StatusInProgress, StatusDone:
		return ProjectStatus(s), nil
	case "":
		return StatusPlanning, nil
	default:
		return "", NewValidationError(fmt.Sprintf("invalid status: %s", s))
	}
}

// Project はプロジェクトエンティティを表すモデルです。
// プロジェクトは必ず一人のユーザーに所有されます。
type Project struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"-"`
	Name        string        `json:"name"`        // プロジェクト名
	Description string        `json:"description"` // プロジェクトの説明
	Status      ProjectStatus `json:"status"`      // 進行状態
	CreatedAt   time.Time     `json:"created_at"`  // 作成日時
	UpdatedAt   time.Time     `json:"updated_at"`  // 更新日時
}

// NewProject は新しいProjectインスタンスを作成します。
func NewProject(userID uuid.UUID, name, description string, status ProjectStatus) (*Project, error) {
	now := time.Now().Truncate(time.Second)
	p := &Project{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadProject は既存のProjectインスタンスを作成します。
func LoadProject(id, userID uuid.UUID, name, description string, status ProjectStatus, createdAt, updatedAt time.Time) (*Project, error) {
	if id == uuid.Nil {
		return nil, errors.New("id is required for loaded project")
	}
	p := &Project{
		ID:          id,
		UserID:      userID,
		Name:        name,
		Description: description,
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate はプロジェクトのデータバリデーションを行います。
func (p *Project) Validate() error {
	if p.UserID == uuid.Nil {
		return errors.New("user_id is required")
	}
	if p.Name == "" {
		return NewValidationError("name is required")
	}
	if _, err := ParseProjectStatus(string(p.Status)); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		return errors.New("created_at is required")
	}
	if p.UpdatedAt.IsZero() {
		return errors.New("updated_at is required")
	}
	return nil
}
