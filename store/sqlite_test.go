package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stsysd/nisshi/model"
)

// testMigration はテスト用のシンプルなマイグレーション関数です。
func testMigration(conn *sql.DB) error {
	// 外部キー制約を有効化
	_, err := conn.Exec(`PRAGMA foreign_keys = ON;`)
	if err != nil {
		return err
	}

	// テーブルの作成
	_, err = conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'planning',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		-- 日誌はプロジェクト削除時に連鎖削除しない
		CREATE TABLE IF NOT EXISTS diaries (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			title TEXT NOT NULL,
			progress TEXT NOT NULL DEFAULT '',
			problem TEXT NOT NULL DEFAULT '',
			solution TEXT NOT NULL DEFAULT '',
			retrospective TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS diary_tags (
			diary_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			tag TEXT NOT NULL,
			PRIMARY KEY (diary_id, seq),
			FOREIGN KEY (diary_id) REFERENCES diaries(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_projects_user_id ON projects(user_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_diaries_project_created ON diaries(project_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_diary_tags_diary_id ON diary_tags(diary_id);
	`)
	return err
}

func setupTestStore(t *testing.T) (*SQLiteStore, func()) {
	// テスト用の一時ディレクトリを作成
	tempDir, err := os.MkdirTemp("", "nisshi-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	// テスト用のSQLiteストアを初期化
	store, err := NewSQLiteStore(tempDir, testMigration)
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to create test store: %v", err)
	}

	// クリーンアップ関数を返す
	cleanup := func() {
		store.Close()
		os.RemoveAll(tempDir)
	}

	return store, cleanup
}

// createTestUser はテスト用のユーザーを保存して返します。
func createTestUser(t *testing.T, store *SQLiteStore, email string) *model.User {
	t.Helper()
	user, err := model.NewUser(email, "hashed-password")
	if err != nil {
		t.Fatalf("Failed to create user model: %v", err)
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// createTestProject はテスト用のプロジェクトを保存して返します。
func createTestProject(t *testing.T, store *SQLiteStore, userID uuid.UUID, name string) *model.Project {
	t.Helper()
	project, err := model.NewProject(userID, name, "テスト用プロジェクト", model.StatusInProgress)
	if err != nil {
		t.Fatalf("Failed to create project model: %v", err)
	}
	if err := store.CreateProject(context.Background(), project); err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	return project
}

func TestCreateAndGetUser(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	user := createTestUser(t, store, "alice@example.com")

	got, err := store.GetUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("Expected email alice@example.com, got %s", got.Email)
	}

	got, err = store.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("Failed to get user by email: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Expected ID %v, got %v", user.ID, got.ID)
	}

	// 存在しないユーザー
	if _, err := store.GetUser(context.Background(), uuid.New()); !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	createTestUser(t, store, "alice@example.com")

	dup, err := model.NewUser("alice@example.com", "other-hash")
	if err != nil {
		t.Fatalf("Failed to create user model: %v", err)
	}
	if err := store.CreateUser(context.Background(), dup); !errors.Is(err, model.ErrDuplicateEmail) {
		t.Errorf("Expected ErrDuplicateEmail, got %v", err)
	}
}

func TestProjectCRUD(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	user := createTestUser(t, store, "alice@example.com")
	project := createTestProject(t, store, user.ID, "自作キーボード")

	// 取得
	got, err := store.GetProject(context.Background(), user.ID, project.ID)
	if err != nil {
		t.Fatalf("Failed to get project: %v", err)
	}
	if got.Name != "自作キーボード" {
		t.Errorf("Expected name 自作キーボード, got %s", got.Name)
	}
	if got.Status != model.StatusInProgress {
		t.Errorf("Expected status %s, got %s", model.StatusInProgress, got.Status)
	}

	// 更新
	got.Name = "分割キーボード"
	got.Status = model.StatusDone
	got.UpdatedAt = time.Now()
	if err := store.UpdateProject(context.Background(), got); err != nil {
		t.Fatalf("Failed to update project: %v", err)
	}
	updated, err := store.GetProject(context.Background(), user.ID, project.ID)
	if err != nil {
		t.Fatalf("Failed to get updated project: %v", err)
	}
	if updated.Name != "分割キーボード" || updated.Status != model.StatusDone {
		t.Errorf("Update not persisted: %+v", updated)
	}

	// 削除
	if err := store.DeleteProject(context.Background(), user.ID, project.ID); err != nil {
		t.Fatalf("Failed to delete project: %v", err)
	}
	if _, err := store.GetProject(context.Background(), user.ID, project.ID); !errors.Is(err, model.ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound after delete, got %v", err)
	}
}

func TestProjectUserScoping(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	project := createTestProject(t, store, alice.ID, "aliceのプロジェクト")

	// 他人のプロジェクトは見えない
	if _, err := store.GetProject(context.Background(), bob.ID, project.ID); !errors.Is(err, model.ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound for other user, got %v", err)
	}

	// 一覧も所有者スコープ
	projects, err := store.ListProjects(context.Background(), bob.ID)
	if err != nil {
		t.Fatalf("Failed to list projects: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("Expected 0 projects for bob, got %d", len(projects))
	}
}

func TestGetProjectByID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	alice := createTestUser(t, store, "alice@example.com")
	project := createTestProject(t, store, alice.ID, "公開グラフ")

	// ユーザースコープなしで取得できる
	got, err := store.GetProjectByID(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("Failed to get project by id: %v", err)
	}
	if got.UserID != alice.ID {
		t.Errorf("Expected UserID %v, got %v", alice.ID, got.UserID)
	}
}

func TestCreateAndGetDiary(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	user := createTestUser(t, store, "alice@example.com")
	project := createTestProject(t, store, user.ID, "自作キーボード")

	ts := model.Troubleshooting{Problem: "スイッチの接触不良", Solution: "ハンダ付けをやり直した"}
	diary, err := model.NewDiary(project.ID, "配線完了", "マトリクス配線を終えた", ts, "順調", []string{"hw", "soldering"})
	if err != nil {
		t.Fatalf("Failed to create diary model: %v", err)
	}
	if err := store.CreateDiary(context.Background(), user.ID, diary); err != nil {
		t.Fatalf("Failed to create diary: %v", err)
	}

	got, err := store.GetDiary(context.Background(), user.ID, project.ID, diary.ID)
	if err != nil {
		t.Fatalf("Failed to get diary: %v", err)
	}
	if got.Title != "配線完了" {
		t.Errorf("Expected title 配線完了, got %s", got.Title)
	}
	if got.Troubleshooting != ts {
		t.Errorf("Expected troubleshooting %v, got %v", ts, got.Troubleshooting)
	}
	if !slices.Equal(got.Tags, []string{"hw", "soldering"}) {
		t.Errorf("Expected tags [hw soldering], got %v", got.Tags)
	}

	// 存在しないプロジェクトに日誌は作成できない
	stray, err := model.NewDiary(uuid.New(), "タイトル", "", model.Troubleshooting{}, "", nil)
	if err != nil {
		t.Fatalf("Failed to create diary model: %v", err)
	}
	if err := store.CreateDiary(context.Background(), user.ID, stray); !errors.Is(err, model.ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound, got %v", err)
	}
}

func TestDiaryTagsOrderAndDuplicates(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	user := createTestUser(t, store, "alice@example.com")
	project := createTestProject(t, store, user.ID, "タグテスト")

	// 入力順と重複が保持されること
	tags := []string{"go", "api", "go"}
	diary, err := model.NewDiary(project.ID, "タグ確認", "", model.Troubleshooting{}, "", tags)
	if err != nil {
		t.Fatalf("Failed to create diary model: %v", err)
	}
	if err := store.CreateDiary(context.Background(), user.ID, diary); err != nil {
		t.Fatalf("Failed to create diary: %v", err)
	}

	got, err := store.GetDiary(context.Background(), user.ID, project.ID, diary.ID)
	if err != nil {
		t.Fatalf("Failed to get diary: %v", err)
	}
	if !slices.Equal(got.Tags, tags) {
		t.Errorf("Expected tags %v, got %v", tags, got.Tags)
	}
}

func TestUpdateDiary(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	user := createTestUser(t, store, "alice@example.com")
	project := createTestProject(t, store, user.ID, "自作キーボード")

	diary, err := model.NewDiary(project.ID, "初日", "着手", model.Troubleshooting{}, "", []string{"start"})
	if err != nil {
		t.Fatalf("Failed to create diary model: %v", err)
	}
	if err := store.CreateDiary(context.Background(), user.ID, diary); err != nil {
		t.Fatalf("Failed to create diary: %v", err)
	}

	// タイトルとタグを更新
	updated := *diary
	updated.Title = "初日（改）"
	updated.Tags = []string{"start", "rework"}
	if err := store.UpdateDiary(context.Background(), user.ID, &updated); err != nil {
		t.Fatalf("Failed to update diary: %v", err)
	}

	got, err := store.GetDiary(context.Background(), user.ID, project.ID, diary.ID)
	if err != nil {
		t.Fatalf("Failed to get diary: %v", err)
	}
	if got.Title != "初日（改）" {
		t.Errorf("Expected updated title, got %s", got.Title)
	}
	if !slices.Equal(got.Tags, []string{"start", "rework"}) {
		t.Errorf("Expected updated tags, got %v", got.Tags)
	}

	// 作成日時は変わらない
	if !got.CreatedAt.Equal(diary.CreatedAt) {
		t.Errorf("Expected CreatedAt to be unchanged: %v != %v", got.CreatedAt, diary.CreatedAt)
	}
}

func TestDeleteDiary(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	user := createTestUser(t, store, "alice@example.com")
	project := createTestProject(t, store, user.ID, "自作キーボード")

	diary, err := model.NewDiary(project.ID, "削除対象", "", model.Troubleshooting{}, "", nil)
	if err != nil {
		t.Fatalf("Failed to create diary model: %v", err)
	}
	if err := store.CreateDiary(context.Background(), user.ID, diary); err != nil {
		t.Fatalf("Failed to create diary: %v", err)
	}

	if err := store.DeleteDiary(context.Background(), user.ID, project.ID, diary.ID); err != nil {
		t.Fatalf("Failed to delete diary: %v", err)
	}
	if _, err := store.GetDiary(context.Background(), user.ID, project.ID, diary.ID); !errors.Is(err, model.ErrDiaryNotFound) {
		t.Errorf("Expected ErrDiaryNotFound after delete, got %v", err)
	}

	// 二重削除
	if err := store.DeleteDiary(context.Background(), user.ID, project.ID, diary.ID); !errors.Is(err, model.ErrDiaryNotFound) {
		t.Errorf("Expected ErrDiaryNotFound for double delete, got %v", err)
	}
}

func TestListDiariesOrder(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	user := createTestUser(t, store, "alice@example.com")
	project := createTestProject(t, store, user.ID, "自作キーボード")

	// 異なる日付の日誌を作成
	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.Local)
	for i := range 3 {
		diary, err := model.LoadDiary(
			uuid.New(), project.ID, "日誌", "", model.Troubleshooting{}, "", nil,
			base.AddDate(0, 0, i),
		)
		if err != nil {
			t.Fatalf("Failed to load diary model: %v", err)
		}
		if err := store.CreateDiary(context.Background(), user.ID, diary); err != nil {
			t.Fatalf("Failed to create diary: %v", err)
		}
	}

	diaries, err := store.ListDiaries(context.Background(), user.ID, project.ID)
	if err != nil {
		t.Fatalf("Failed to list diaries: %v", err)
	}
	if len(diaries) != 3 {
		t.Fatalf("Expected 3 diaries, got %d", len(diaries))
	}

	// 作成日時の降順
	for i := 1; i < len(diaries); i++ {
		if diaries[i-1].CreatedAt.Before(diaries[i].CreatedAt) {
			t.Errorf("Expected diaries in descending order of CreatedAt")
		}
	}
}

func TestFindDiaryOnDay(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	user := createTestUser(t, store, "alice@example.com")
	project := createTestProject(t, store, user.ID, "自作キーボード")

	day := time.Date(2026, 7, 15, 14, 30, 0, 0, time.Local)
	diary, err := model.LoadDiary(
		uuid.New(), project.ID, "当日の日誌", "", model.Troubleshooting{}, "", nil, day,
	)
	if err != nil {
		t.Fatalf("Failed to load diary model: %v", err)
	}
	if err := store.CreateDiary(context.Background(), user.ID, diary); err != nil {
		t.Fatalf("Failed to create diary: %v", err)
	}

	// 同じ日の別時刻で検索できること
	found, err := store.FindDiaryOnDay(context.Background(), user.ID, project.ID,
		time.Date(2026, 7, 15, 23, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("Failed to find diary on day: %v", err)
	}
	if found.ID != diary.ID {
		t.Errorf("Expected diary %v, got %v", diary.ID, found.ID)
	}

	// 別の日には存在しない
	if _, err := store.FindDiaryOnDay(context.Background(), user.ID, project.ID,
		time.Date(2026, 7, 16, 0, 0, 0, 0, time.Local)); !errors.Is(err, model.ErrDiaryNotFound) {
		t.Errorf("Expected ErrDiaryNotFound for another day, got %v", err)
	}
}

func TestDeleteProjectKeepsDiaries(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	user := createTestUser(t, store, "alice@example.com")
	project := createTestProject(t, store, user.ID, "削除予定")

	diary, err := model.NewDiary(project.ID, "残る日誌", "", model.Troubleshooting{}, "", nil)
	if err != nil {
		t.Fatalf("Failed to create diary model: %v", err)
	}
	if err := store.CreateDiary(context.Background(), user.ID, diary); err != nil {
		t.Fatalf("Failed to create diary: %v", err)
	}

	// プロジェクトを削除しても日誌の行は残る
	if err := store.DeleteProject(context.Background(), user.ID, project.ID); err != nil {
		t.Fatalf("Failed to delete project: %v", err)
	}

	var count int
	row := store.conn.QueryRow(`SELECT COUNT(*) FROM diaries WHERE id = ?`, diary.ID.String())
	if err := row.Scan(&count); err != nil {
		t.Fatalf("Failed to count diaries: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected orphaned diary row to remain, got count %d", count)
	}

	// ただしプロジェクト経由のアクセスはできない
	if _, err := store.GetDiary(context.Background(), user.ID, project.ID, diary.ID); err == nil {
		t.Error("Expected error accessing diary of deleted project, got nil")
	}
}

func TestGetProjectTags(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	user := createTestUser(t, store, "alice@example.com")
	project := createTestProject(t, store, user.ID, "タグ集計")

	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.Local)
	tagSets := [][]string{{"go", "api"}, {"go", "db"}}
	for i, tags := range tagSets {
		diary, err := model.LoadDiary(
			uuid.New(), project.ID, "日誌", "", model.Troubleshooting{}, "", tags,
			base.AddDate(0, 0, i),
		)
		if err != nil {
			t.Fatalf("Failed to load diary model: %v", err)
		}
		if err := store.CreateDiary(context.Background(), user.ID, diary); err != nil {
			t.Fatalf("Failed to create diary: %v", err)
		}
	}

	tags, err := store.GetProjectTags(context.Background(), user.ID, project.ID)
	if err != nil {
		t.Fatalf("Failed to get project tags: %v", err)
	}

	// 重複なしでソートされていること
	if !slices.Equal(tags, []string{"api", "db", "go"}) {
		t.Errorf("Expected tags [api db go], got %v", tags)
	}
}
