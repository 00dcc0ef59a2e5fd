// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"time"

	"github.com/google/uuid"
)

// EventColor はカレンダーイベントの表示色です。
// 色は一種類のみで、意味は「日誌が存在する」こと以上を持ちません。
const EventColor = "#3b82f6"

// CalendarEvent は日誌から導出されるカレンダー表示用のイベントです。
// 永続化せず、集計のたびに再構築されます。
type CalendarEvent struct {
	DiaryID     uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Date        string    `json:"date"` // 日粒度（YYYY-MM-DD）
	Color       string    `json:"color"`
	ProjectID   uuid.UUID `json:"project_id"`
	ProjectName string    `json:"project_name"`
}

// SummaryStats は全日誌の走査から導出されるサマリー統計です。
// 「今月」はフェッチ時点のローカルの年月を基準に再計算されます。
type SummaryStats struct {
	DiaryCount            int `json:"diary_count"`
	TroubleshootingCount  int `json:"troubleshooting_count"`
	ProjectCount          int `json:"project_count"`
	ThisMonthDiaryCount   int `json:"this_month_diary_count"`
	ThisMonthTroubleCount int `json:"this_month_trouble_count"`
}

// ProjectRef はフィルタ用ドロップダウンなどで使う最小限のプロジェクト参照です。
type ProjectRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// DiaryEntry は一覧表示用の日誌エントリです。
// 本文全体ではなくサマリーフィールドのみを保持します。
type DiaryEntry struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	ProjectName string    `json:"project_name"`
	Title       string    `json:"title"`
	Progress    string    `json:"progress"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	HasTrouble  bool      `json:"has_troubleshooting"`
}

// CalendarData はホーム画面のために集約された導出ビューの一式です。
type CalendarData struct {
	Events   []CalendarEvent `json:"events"`
	Stats    SummaryStats    `json:"stats"`
	Projects []ProjectRef    `json:"projects"`
	Recent   []CalendarEvent `json:"recent"`
	Message  string          `json:"message"`
}
