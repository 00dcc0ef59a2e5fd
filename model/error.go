// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import "errors"

// センチネルエラー - リソースが見つからない場合など
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrProjectNotFound  = errors.New("project not found")
	ErrDiaryNotFound    = errors.New("diary not found")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrDuplicateDiary   = errors.New("diary already exists for this day")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ValidationError はバリデーションエラーを表す型
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError はValidationErrorを生成するヘルパー関数
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
