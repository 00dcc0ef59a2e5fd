package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewDiary(t *testing.T) {
	// テストデータ
	projectID := uuid.New()
	title := "実装開始"
	progress := "APIのルーティングを作成した"
	ts := Troubleshooting{Problem: "CORSエラー", Solution: "ミドルウェアを追加"}
	tags := []string{"go", "api"}

	// 日誌を生成
	diary, err := NewDiary(projectID, title, progress, ts, "順調", tags)
	if err != nil {
		t.Fatalf("Failed to create diary: %v", err)
	}

	// IDが生成されていることを確認
	if diary.ID == uuid.Nil {
		t.Error("Expected ID to be generated, got Nil UUID")
	}

	// 各フィールドが正しく設定されていることを確認
	if diary.ProjectID != projectID {
		t.Errorf("Expected ProjectID to be %v, got %v", projectID, diary.ProjectID)
	}
	if diary.Title != title {
		t.Errorf("Expected Title to be %s, got %s", title, diary.Title)
	}
	if diary.Progress != progress {
		t.Errorf("Expected Progress to be %s, got %s", progress, diary.Progress)
	}
	if diary.Troubleshooting != ts {
		t.Errorf("Expected Troubleshooting to be %v, got %v", ts, diary.Troubleshooting)
	}
	if len(diary.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %d", len(diary.Tags))
	}

	// 作成日時がサーバー側で設定されていることを確認
	if diary.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestNewDiaryNilTags(t *testing.T) {
	// nilタグは空スライスに正規化される
	diary, err := NewDiary(uuid.New(), "タイトル", "", Troubleshooting{}, "", nil)
	if err != nil {
		t.Fatalf("Failed to create diary: %v", err)
	}
	if diary.Tags == nil {
		t.Error("Expected Tags to be normalized to empty slice, got nil")
	}
}

func TestDiaryValidate(t *testing.T) {
	// 無効な日誌（タイトルが空）
	if _, err := NewDiary(uuid.New(), "", "progress", Troubleshooting{}, "", nil); err == nil {
		t.Error("Expected error for empty title, got nil")
	}

	// 無効な日誌（空のタグ）
	if _, err := NewDiary(uuid.New(), "タイトル", "", Troubleshooting{}, "", []string{"go", ""}); err == nil {
		t.Error("Expected error for empty tag, got nil")
	}

	// 無効な日誌（プロジェクトIDが空）
	if _, err := LoadDiary(
		uuid.New(), uuid.Nil, "タイトル", "", Troubleshooting{}, "", nil,
		time.Date(2026, 8, 1, 10, 0, 0, 0, time.Local),
	); err == nil {
		t.Error("Expected error for empty project ID, got nil")
	}
}

func TestHasTroubleshooting(t *testing.T) {
	cases := []struct {
		name string
		ts   Troubleshooting
		want bool
	}{
		{"both empty", Troubleshooting{}, false},
		{"problem only", Troubleshooting{Problem: "ビルドが失敗する"}, true},
		{"solution only", Troubleshooting{Solution: "キャッシュを削除した"}, true},
		{"both set", Troubleshooting{Problem: "p", Solution: "s"}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			diary, err := NewDiary(uuid.New(), "タイトル", "", c.ts, "", nil)
			if err != nil {
				t.Fatalf("Failed to create diary: %v", err)
			}
			if got := diary.HasTroubleshooting(); got != c.want {
				t.Errorf("Expected HasTroubleshooting to be %v, got %v", c.want, got)
			}
		})
	}
}

func TestDiaryDay(t *testing.T) {
	createdAt := time.Date(2026, 8, 15, 23, 45, 0, 0, time.Local)
	diary, err := LoadDiary(uuid.New(), uuid.New(), "タイトル", "", Troubleshooting{}, "", nil, createdAt)
	if err != nil {
		t.Fatalf("Failed to load diary: %v", err)
	}

	day := diary.Day()
	if day.Hour() != 0 || day.Minute() != 0 {
		t.Errorf("Expected day granularity, got %v", day)
	}
	if day.Year() != 2026 || day.Month() != 8 || day.Day() != 15 {
		t.Errorf("Expected 2026-08-15, got %v", day)
	}
}
