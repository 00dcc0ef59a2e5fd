// Package store は、データの永続化機能を提供します。
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stsysd/nisshi/model"
)

// UserStore はユーザーの保存と取得を行うインターフェースです。
type UserStore interface {
	// CreateUser は新しいユーザーを作成します。
	CreateUser(ctx context.Context, user *model.User) error
	// GetUser は指定されたIDのユーザーを取得します。
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetUserByEmail は指定されたメールアドレスのユーザーを取得します。
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// ProjectStore はプロジェクトの保存と取得を行うインターフェースです。
// すべての操作は所有ユーザーのIDでスコープされます。
type ProjectStore interface {
	// CreateProject は新しいプロジェクトを作成します。
	CreateProject(ctx context.Context, project *model.Project) error
	// GetProject は指定されたユーザーが所有するプロジェクトを取得します。
	GetProject(ctx context.Context, userID, projectID uuid.UUID) (*model.Project, error)
	// GetProjectByID はユーザースコープなしでプロジェクトを取得します（公開グラフ用）。
	GetProjectByID(ctx context.Context, projectID uuid.UUID) (*model.Project, error)
	// UpdateProject は指定されたプロジェクトを更新します。
	UpdateProject(ctx context.Context, project *model.Project) error
	// DeleteProject はプロジェクトエンティティのみを削除します。
	// 配下の日誌は削除されず孤児として残ります（既知の仕様）。
	DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error
	// ListProjects は指定されたユーザーのすべてのプロジェクトを取得します。
	ListProjects(ctx context.Context, userID uuid.UUID) ([]*model.Project, error)
	// GetProjectTags は指定されたプロジェクト内のタグ一覧（重複なし）を取得します。
	GetProjectTags(ctx context.Context, userID, projectID uuid.UUID) ([]string, error)
}

// DiaryStore は日誌の保存と取得を行うインターフェースです。
// 日誌は必ずユーザー配下のプロジェクトを経由して参照されます。
type DiaryStore interface {
	// CreateDiary は新しい日誌を作成します。
	CreateDiary(ctx context.Context, userID uuid.UUID, diary *model.Diary) error
	// GetDiary は指定されたIDの日誌を取得します。
	GetDiary(ctx context.Context, userID, projectID, diaryID uuid.UUID) (*model.Diary, error)
	// UpdateDiary は指定された日誌を更新します。
	UpdateDiary(ctx context.Context, userID uuid.UUID, diary *model.Diary) error
	// DeleteDiary は指定された日誌を削除します。
	DeleteDiary(ctx context.Context, userID, projectID, diaryID uuid.UUID) error
	// ListDiaries は指定されたプロジェクトの日誌を作成日時の降順で取得します。
	ListDiaries(ctx context.Context, userID, projectID uuid.UUID) ([]*model.Diary, error)
	// FindDiaryOnDay は指定された日（ローカル日付）の日誌を探します。
	// 見つからない場合は model.ErrDiaryNotFound を返します。
	FindDiaryOnDay(ctx context.Context, userID, projectID uuid.UUID, day time.Time) (*model.Diary, error)
}

// Store はアプリケーションが必要とする永続化操作の集合です。
type Store interface {
	UserStore
	ProjectStore
	DiaryStore
	// Close はストアの接続を閉じます。
	Close() error
}

// SQLiteStore はSQLiteを使用したStoreの実装です。
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore は新しいSQLiteStoreを作成します。
func NewSQLiteStore(dataDir string, migrate func(*sql.DB) error) (*SQLiteStore, error) {
	// データディレクトリの作成（存在しない場合）
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// SQLiteデータベースファイルのパス
	dbPath := filepath.Join(dataDir, "nisshi.db")

	// SQLiteデータベースへの接続
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	// マイグレーションの実行
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStore{conn: conn}, nil
}

// Close はデータベース接続を閉じます。
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// CreateUser は新しいユーザーをデータベースに保存します。
func (s *SQLiteStore) CreateUser(ctx context.Context, user *model.User) error {
	// バリデーション
	if err := user.Validate(); err != nil {
		return err
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		user.ID.String(), user.Email, user.PasswordHash,
		user.CreatedAt.Format(time.RFC3339))
	if err != nil {
		// email のUNIQUE制約違反を重複エラーに変換する
		if isUniqueViolation(err) {
			return model.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUser は指定されたIDのユーザーを取得します。
func (s *SQLiteStore) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at FROM users WHERE id = ?`,
		id.String())
	return scanUser(row)
}

// GetUserByEmail は指定されたメールアドレスのユーザーを取得します。
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at FROM users WHERE email = ?`,
		email)
	return scanUser(row)
}

// scanUser は1行分のユーザーをモデルに変換します。
func scanUser(row *sql.Row) (*model.User, error) {
	var idStr, email, passwordHash, createdAtStr string
	err := row.Scan(&idStr, &email, &passwordHash, &createdAtStr)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in database: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return model.LoadUser(id, email, passwordHash, createdAt)
}

// isUniqueViolation はUNIQUE制約違反かどうかを判定します。
func isUniqueViolation(err error) bool {
	// mattn/go-sqlite3 のエラー型に依存せず、メッセージで判定する
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateProject は新しいプロジェクトをデータベースに保存します。
func (s *SQLiteStore) CreateProject(ctx context.Context, project *model.Project) error {
	// バリデーション
	if err := project.Validate(); err != nil {
		return err
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO projects (id, user_id, name, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		project.ID.String(), project.UserID.String(),
		project.Name, project.Description, string(project.Status),
		project.CreatedAt.Format(time.RFC3339),
		project.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetProject は指定されたユーザーが所有するプロジェクトを取得します。
func (s *SQLiteStore) GetProject(ctx context.Context, userID, projectID uuid.UUID) (*model.Project, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, status, created_at, updated_at
		FROM projects WHERE id = ? AND user_id = ?`,
		projectID.String(), userID.String())
	return scanProject(row)
}

// GetProjectByID はユーザースコープなしでプロジェクトを取得します。
// 公開グラフ配信のみが使用します。
func (s *SQLiteStore) GetProjectByID(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, status, created_at, updated_at
		FROM projects WHERE id = ?`,
		projectID.String())
	return scanProject(row)
}

// scanProject は1行分のプロジェクトをモデルに変換します。
func scanProject(row *sql.Row) (*model.Project, error) {
	var idStr, userIDStr, name, description, status, createdAtStr, updatedAtStr string
	err := row.Scan(&idStr, &userIDStr, &name, &description, &status, &createdAtStr, &updatedAtStr)
	if err == sql.ErrNoRows {
		return nil, model.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return loadProjectRow(idStr, userIDStr, name, description, status, createdAtStr, updatedAtStr)
}

// loadProjectRow はカラム値からプロジェクトモデルを組み立てます。
func loadProjectRow(idStr, userIDStr, name, description, status, createdAtStr, updatedAtStr string) (*model.Project, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in database: %w", err)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in database: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return model.LoadProject(id, userID, name, description, model.ProjectStatus(status), createdAt, updatedAt)
}

// UpdateProject は指定されたプロジェクトを更新します。
func (s *SQLiteStore) UpdateProject(ctx context.Context, project *model.Project) error {
	// バリデーション
	if err := project.Validate(); err != nil {
		return err
	}

	result, err := s.conn.ExecContext(ctx, `
		UPDATE projects SET name = ?, description = ?, status = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		project.Name, project.Description, string(project.Status),
		project.UpdatedAt.Format(time.RFC3339),
		project.ID.String(), project.UserID.String())
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	// 更新された行数を確認
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	// プロジェクトが見つからない場合
	if rowsAffected == 0 {
		return model.ErrProjectNotFound
	}

	return nil
}

// DeleteProject はプロジェクトエンティティのみを削除します。
// 配下の日誌はあえて削除しません。元の実装と同じく、プロジェクト削除後の
// 日誌は一覧からたどれない孤児レコードとして残ります。
func (s *SQLiteStore) DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error {
	result, err := s.conn.ExecContext(ctx, `
		DELETE FROM projects WHERE id = ? AND user_id = ?`,
		projectID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrProjectNotFound
	}

	return nil
}

// ListProjects は指定されたユーザーのすべてのプロジェクトを取得します。
// 作成日時の降順で返します。
func (s *SQLiteStore) ListProjects(ctx context.Context, userID uuid.UUID) ([]*model.Project, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, user_id, name, description, status, created_at, updated_at
		FROM projects WHERE user_id = ?
		ORDER BY created_at DESC, id`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	// 結果の変換
	var projects []*model.Project
	for rows.Next() {
		var idStr, userIDStr, name, description, status, createdAtStr, updatedAtStr string
		if err := rows.Scan(&idStr, &userIDStr, &name, &description, &status, &createdAtStr, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		project, err := loadProjectRow(idStr, userIDStr, name, description, status, createdAtStr, updatedAtStr)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

// GetProjectTags は指定されたプロジェクト内のタグ一覧（重複なし）を取得します。
func (s *SQLiteStore) GetProjectTags(ctx context.Context, userID, projectID uuid.UUID) ([]string, error) {
	// プロジェクトの存在確認
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT DISTINCT t.tag
		FROM diary_tags t
		JOIN diaries d ON d.id = t.diary_id
		WHERE d.project_id = ?
		ORDER BY t.tag`,
		projectID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get project tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get project tags: %w", err)
	}

	return tags, nil
}

// CreateDiary は新しい日誌をデータベースに保存します。
func (s *SQLiteStore) CreateDiary(ctx context.Context, userID uuid.UUID, diary *model.Diary) error {
	// バリデーション
	if err := diary.Validate(); err != nil {
		return err
	}

	// プロジェクトの存在確認（アプリケーションレベルでの整合性チェック）
	if _, err := s.GetProject(ctx, userID, diary.ProjectID); err != nil {
		return err
	}

	// トランザクションの開始
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// トランザクションをロールバックするための遅延関数
	defer func() {
		if tx != nil {
			tx.Rollback() // 成功した場合は既にnilになっているためエラーは無視
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO diaries (id, project_id, title, progress, problem, solution, retrospective, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		diary.ID.String(), diary.ProjectID.String(),
		diary.Title, diary.Progress,
		diary.Troubleshooting.Problem, diary.Troubleshooting.Solution,
		diary.Retrospective,
		diary.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to create diary: %w", err)
	}

	// タグを入力順に挿入
	if err := insertTags(ctx, tx, diary); err != nil {
		return err
	}

	// トランザクションのコミット
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil // コミットが成功したのでnilにして遅延関数でのロールバックを防ぐ

	return nil
}

// insertTags は日誌のタグを入力順に挿入します。
func insertTags(ctx context.Context, tx *sql.Tx, diary *model.Diary) error {
	for i, tag := range diary.Tags {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO diary_tags (diary_id, seq, tag) VALUES (?, ?, ?)`,
			diary.ID.String(), i, tag)
		if err != nil {
			return fmt.Errorf("failed to create tag %s: %w", tag, err)
		}
	}
	return nil
}

// GetDiary は指定されたIDの日誌を取得します。
// 日誌は必ずユーザー配下のプロジェクトを経由して参照されます。
func (s *SQLiteStore) GetDiary(ctx context.Context, userID, projectID, diaryID uuid.UUID) (*model.Diary, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT d.id, d.project_id, d.title, d.progress, d.problem, d.solution, d.retrospective, d.created_at
		FROM diaries d
		JOIN projects p ON p.id = d.project_id
		WHERE d.id = ? AND d.project_id = ? AND p.user_id = ?`,
		diaryID.String(), projectID.String(), userID.String())

	diary, err := scanDiary(row)
	if err != nil {
		return nil, err
	}

	// タグを取得
	tags, err := s.getDiaryTags(ctx, diary.ID)
	if err != nil {
		return nil, err
	}
	diary.Tags = tags

	return diary, nil
}

// rowScanner は*sql.Rowと*sql.Rowsを同じ形で扱うための小さなインターフェースです。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDiary は1行分の日誌をモデルに変換します（タグは含みません）。
func scanDiary(row *sql.Row) (*model.Diary, error) {
	diary, err := scanDiaryRow(row)
	if err == sql.ErrNoRows {
		return nil, model.ErrDiaryNotFound
	}
	return diary, err
}

// scanDiaryRow はカラム値から日誌モデルを組み立てます。
func scanDiaryRow(row rowScanner) (*model.Diary, error) {
	var idStr, projectIDStr, title, progress, problem, solution, retrospective, createdAtStr string
	err := row.Scan(&idStr, &projectIDStr, &title, &progress, &problem, &solution, &retrospective, &createdAtStr)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in database: %w", err)
	}
	projectID, err := uuid.Parse(projectIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in database: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	ts := model.Troubleshooting{Problem: problem, Solution: solution}
	return model.LoadDiary(id, projectID, title, progress, ts, retrospective, nil, createdAt)
}

// getDiaryTags は日誌のタグを入力順に取得します。
func (s *SQLiteStore) getDiaryTags(ctx context.Context, diaryID uuid.UUID) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT tag FROM diary_tags WHERE diary_id = ? ORDER BY seq`,
		diaryID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get diary tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// UpdateDiary は指定された日誌を更新します。
// タグは全置換され、入力順が保持されます。作成日時は変更されません。
func (s *SQLiteStore) UpdateDiary(ctx context.Context, userID uuid.UUID, diary *model.Diary) error {
	// バリデーション
	if err := diary.Validate(); err != nil {
		return err
	}

	// プロジェクトの存在確認（アプリケーションレベルでの整合性チェック）
	if _, err := s.GetProject(ctx, userID, diary.ProjectID); err != nil {
		return err
	}

	// トランザクションの開始
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// トランザクションをロールバックするための遅延関数
	defer func() {
		if tx != nil {
			tx.Rollback() // 成功した場合は既にnilになっているためエラーは無視
		}
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE diaries SET title = ?, progress = ?, problem = ?, solution = ?, retrospective = ?
		WHERE id = ? AND project_id = ?`,
		diary.Title, diary.Progress,
		diary.Troubleshooting.Problem, diary.Troubleshooting.Solution,
		diary.Retrospective,
		diary.ID.String(), diary.ProjectID.String())
	if err != nil {
		return fmt.Errorf("failed to update diary: %w", err)
	}

	// 更新された行数を確認
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	// 日誌が見つからない場合
	if rowsAffected == 0 {
		return model.ErrDiaryNotFound
	}

	// 既存のタグを削除
	if _, err := tx.ExecContext(ctx, `DELETE FROM diary_tags WHERE diary_id = ?`, diary.ID.String()); err != nil {
		return fmt.Errorf("failed to delete existing tags: %w", err)
	}

	// 新しいタグを入力順に挿入
	if err := insertTags(ctx, tx, diary); err != nil {
		return err
	}

	// トランザクションのコミット
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil // コミットが成功したのでnilにして遅延関数でのロールバックを防ぐ

	return nil
}

// DeleteDiary は指定された日誌を削除します。
func (s *SQLiteStore) DeleteDiary(ctx context.Context, userID, projectID, diaryID uuid.UUID) error {
	// プロジェクトの存在確認
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return err
	}

	result, err := s.conn.ExecContext(ctx, `
		DELETE FROM diaries WHERE id = ? AND project_id = ?`,
		diaryID.String(), projectID.String())
	if err != nil {
		return fmt.Errorf("failed to delete diary: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrDiaryNotFound
	}

	// タグは外部キーのON DELETE CASCADEで削除される
	return nil
}

// ListDiaries は指定されたプロジェクトの日誌を作成日時の降順で取得します。
func (s *SQLiteStore) ListDiaries(ctx context.Context, userID, projectID uuid.UUID) ([]*model.Diary, error) {
	// プロジェクトの存在確認
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, project_id, title, progress, problem, solution, retrospective, created_at
		FROM diaries WHERE project_id = ?
		ORDER BY created_at DESC, id`,
		projectID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list diaries: %w", err)
	}
	defer rows.Close()

	// 結果の変換
	var diaries []*model.Diary
	for rows.Next() {
		diary, err := scanDiaryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan diary: %w", err)
		}
		diaries = append(diaries, diary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list diaries: %w", err)
	}

	// タグをまとめて取得して付与
	for _, diary := range diaries {
		tags, err := s.getDiaryTags(ctx, diary.ID)
		if err != nil {
			return nil, err
		}
		diary.Tags = tags
	}

	return diaries, nil
}

// FindDiaryOnDay は指定された日（サーバーのローカル日付）の日誌を探します。
// 「1プロジェクト1日1日誌」ルールの判定に使います。同日の日誌が複数ある
// 場合は最初に見つかったものを返します。
func (s *SQLiteStore) FindDiaryOnDay(ctx context.Context, userID, projectID uuid.UUID, day time.Time) (*model.Diary, error) {
	// プロジェクトの存在確認
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	// created_at はローカルタイムのRFC3339で保存されているため、
	// 日付部分の前方一致で同日判定ができる
	dayPrefix := day.Local().Format("2006-01-02")

	row := s.conn.QueryRowContext(ctx, `
		SELECT id, project_id, title, progress, problem, solution, retrospective, created_at
		FROM diaries
		WHERE project_id = ? AND substr(created_at, 1, 10) = ?
		ORDER BY created_at LIMIT 1`,
		projectID.String(), dayPrefix)

	diary, err := scanDiary(row)
	if err != nil {
		return nil, err
	}

	tags, err := s.getDiaryTags(ctx, diary.ID)
	if err != nil {
		return nil, err
	}
	diary.Tags = tags

	return diary, nil
}

// コンパイル時のインターフェース実装チェック
var _ Store = (*SQLiteStore)(nil)
