// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Troubleshooting は一日分のトラブルシューティング記録です。
// problem / solution はどちらも任意で、独立して表示されます。
type Troubleshooting struct {
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
}

// IsEmpty は問題・解決のどちらも記録されていない場合にtrueを返します。
func (t Troubleshooting) IsEmpty() bool {
	return t.Problem == "" && t.Solution == ""
}

// Diary はプロジェクト配下の日誌エントリを表すモデルです。
// タグは入力順を保持し、重複も許容します。
type Diary struct {
	ID              uuid.UUID       `json:"id"`
	ProjectID       uuid.UUID       `json:"project_id"`
	Title           string          `json:"title"`           // 日誌タイトル
	Progress        string          `json:"progress"`        // 進行内容
	Troubleshooting Troubleshooting `json:"troubleshooting"` // トラブルシューティング
	Retrospective   string          `json:"retrospective"`   // 回顧
	Tags            []string        `json:"tags"`            // タグ一覧（順序あり）
	CreatedAt       time.Time       `json:"created_at"`      // 作成日時（サーバー側で採番）
}

// NewDiary は新しいDiaryインスタンスを作成します。
// 作成日時はサーバー側の現在時刻を採用します。
func NewDiary(projectID uuid.UUID, title, progress string, ts Troubleshooting, retrospective string, tags []string) (*Diary, error) {
	if tags == nil {
		tags = []string{}
	}
	d := &Diary{
		ID:              uuid.New(),
		ProjectID:       projectID,
		Title:           title,
		Progress:        progress,
		Troubleshooting: ts,
		Retrospective:   retrospective,
		Tags:            tags,
		// 秒精度で保存されるため最初から切り詰めておく
		CreatedAt:       time.Now().Truncate(time.Second),
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadDiary は既存のDiaryインスタンスを作成します。
func LoadDiary(id, projectID uuid.UUID, title, progress string, ts Troubleshooting, retrospective string, tags []string, createdAt time.Time) (*Diary, error) {
	if id == uuid.Nil {
		return nil, errors.New("id is required for loaded diary")
	}
	if tags == nil {
		tags = []string{}
	}
	d := &Diary{
		ID:              id,
		ProjectID:       projectID,
		Title:           title,
		Progress:        progress,
		Troubleshooting: ts,
		Retrospective:   retrospective,
		Tags:            tags,
		CreatedAt:       createdAt,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate は日誌のデータバリデーションを行います。
func (d *Diary) Validate() error {
	if d.ProjectID == uuid.Nil {
		return errors.New("project_id is required")
	}
	if d.Title == "" {
		return NewValidationError("title is required")
	}
	if d.CreatedAt.IsZero() {
		return errors.New("created_at is required")
	}
	for _, tag := range d.Tags {
		if tag == "" {
			return NewValidationError("tag cannot be empty")
		}
	}
	return nil
}

// Day は作成日時をローカルタイムの日付（日粒度）で返します。
func (d *Diary) Day() time.Time {
	y, m, day := d.CreatedAt.Local().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.Local)
}

// HasTroubleshooting は問題または解決のいずれかが記録されている場合にtrueを返します。
func (d *Diary) HasTroubleshooting() bool {
	return !d.Troubleshooting.IsEmpty()
}
