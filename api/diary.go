package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/stsysd/nisshi/aggregate"
	"github.com/stsysd/nisshi/model"
)

// CreateDiaryParams represents parameters for creating a diary.
type CreateDiaryParams struct {
	ProjectID     uuid.UUID
	Title         string
	Progress      string
	Problem       string
	Solution      string
	Retrospective string
	Tags          []string
}

// NewCreateDiaryParams creates parameters for diary creation from HTTP request.
func NewCreateDiaryParams(r *http.Request) (*CreateDiaryParams, error) {
	projectID, err := uuid.Parse(r.PathValue("project_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid project_id: %w", err)
	}

	var requestBody struct {
		Title         string   `json:"title"`
		Progress      string   `json:"progress"`
		Problem       string   `json:"problem"`
		Solution      string   `json:"solution"`
		Retrospective string   `json:"retrospective"`
		Tags          []string `json:"tags"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	return &CreateDiaryParams{
		ProjectID:     projectID,
		Title:         requestBody.Title,
		Progress:      requestBody.Progress,
		Problem:       requestBody.Problem,
		Solution:      requestBody.Solution,
		Retrospective: requestBody.Retrospective,
		Tags:          requestBody.Tags,
	}, nil
}

// handleCreateDiary は日誌作成エンドポイントのハンドラーです。
// 同一プロジェクトに同じ日（サーバーローカル日付）の日誌がすでにある場合は
// 409と既存日誌のIDを返し、クライアントを編集画面へ誘導します。
func (s *Server) handleCreateDiary(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSONError(w, "Unauthorized: sign in required", http.StatusUnauthorized)
		return
	}

	// パラメータを検証
	params, err := NewCreateDiaryParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 1日1件ルールの確認
	existing, err := s.store.FindDiaryOnDay(r.Context(), uid, params.ProjectID, time.Now())
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		resp := struct {
			Error   string `json:"error"`
			Code    int    `json:"code"`
			DiaryID string `json:"diary_id"`
		}{
			Error:   model.ErrDuplicateDiary.Error(),
			Code:    http.StatusConflict,
			DiaryID: existing.ID.String(),
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("Error encoding response: %v", err)
		}
		return
	}
	if errors.Is(err, model.ErrProjectNotFound) {
		writeJSONError(w, "Project not found", http.StatusNotFound)
		return
	}
	if !errors.Is(err, model.ErrDiaryNotFound) {
		log.Printf("Error checking existing diary: %v", err)
		writeJSONError(w, "Failed to create diary", http.StatusInternalServerError)
		return
	}

	// 新しい日誌の作成
	ts := model.Troubleshooting{Problem: params.Problem, Solution: params.Solution}
	diary, err := model.NewDiary(params.ProjectID, params.Title, params.Progress, ts, params.Retrospective, params.Tags)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 日誌の保存
	if err := s.store.CreateDiary(r.Context(), uid, diary); err != nil {
		if errors.Is(err, model.ErrProjectNotFound) {
			writeJSONError(w, "Project not found", http.StatusNotFound)
			return
		}
		log.Printf("Error creating diary: %v", err)
		writeJSONError(w, "Failed to create diary", http.StatusInternalServerError)
		return
	}

	// 成功レスポンスの返却
	writeJSON(w, http.StatusCreated, diary)
}

// DiaryPathParams represents path parameters addressing one diary.
type DiaryPathParams struct {
	ProjectID uuid.UUID
	DiaryID   uuid.UUID
}

// NewDiaryPathParams creates diary path parameters from HTTP request.
func NewDiaryPathParams(r *http.Request) (*DiaryPathParams, error) {
	projectID, err := uuid.Parse(r.PathValue("project_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid project_id: %w", err)
	}
	diaryID, err := uuid.Parse(r.PathValue("diary_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid diary_id: %w", err)
	}

	return &DiaryPathParams{ProjectID: projectID, DiaryID: diaryID}, nil
}

// handleGetDiary は特定のIDの日誌を取得するハンドラーです。
func (s *Server) handleGetDiary(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSONError(w, "Unauthorized: sign in required", http.StatusUnauthorized)
		return
	}

	params, err := NewDiaryPathParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	diary, err := s.store.GetDiary(r.Context(), uid, params.ProjectID, params.DiaryID)
	if err != nil {
		if errors.Is(err, model.ErrDiaryNotFound) || errors.Is(err, model.ErrProjectNotFound) {
			writeJSONError(w, "Diary not found", http.StatusNotFound)
		} else {
			log.Printf("Error retrieving diary: %v", err)
			writeJSONError(w, "Failed to retrieve diary", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, diary)
}

// UpdateDiaryParams represents parameters for updating a diary.
type UpdateDiaryParams struct {
	DiaryPathParams
	Title         *string
	Progress      *string
	Problem       *string
	Solution      *string
	Retrospective *string
	Tags          []string
}

// NewUpdateDiaryParams creates parameters for diary update from HTTP request.
func NewUpdateDiaryParams(r *http.Request) (*UpdateDiaryParams, error) {
	pathParams, err := NewDiaryPathParams(r)
	if err != nil {
		return nil, err
	}

	var requestBody struct {
		Title         *string  `json:"title"`
		Progress      *string  `json:"progress"`
		Problem       *string  `json:"problem"`
		Solution      *string  `json:"solution"`
		Retrospective *string  `json:"retrospective"`
		Tags          []string `json:"tags"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	return &UpdateDiaryParams{
		DiaryPathParams: *pathParams,
		Title:           requestBody.Title,
		Progress:        requestBody.Progress,
		Problem:         requestBody.Problem,
		Solution:        requestBody.Solution,
		Retrospective:   requestBody.Retrospective,
		Tags:            requestBody.Tags,
	}, nil
}

// handleUpdateDiary は特定のIDの日誌を更新するハンドラーです。
// 作成日時は変更されません。
func (s *Server) handleUpdateDiary(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSONError(w, "Unauthorized: sign in required", http.StatusUnauthorized)
		return
	}

	params, err := NewUpdateDiaryParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 更新前に日誌が存在するか確認
	existing, err := s.store.GetDiary(r.Context(), uid, params.ProjectID, params.DiaryID)
	if err != nil {
		if errors.Is(err, model.ErrDiaryNotFound) || errors.Is(err, model.ErrProjectNotFound) {
			writeJSONError(w, "Diary not found", http.StatusNotFound)
		} else {
			log.Printf("Error retrieving diary: %v", err)
			writeJSONError(w, "Failed to retrieve diary", http.StatusInternalServerError)
		}
		return
	}

	// 更新用の日誌を既存日誌をベースに作成
	updated := *existing
	if params.Title != nil {
		updated.Title = *params.Title
	}
	if params.Progress != nil {
		updated.Progress = *params.Progress
	}
	if params.Problem != nil {
		updated.Troubleshooting.Problem = *params.Problem
	}
	if params.Solution != nil {
		updated.Troubleshooting.Solution = *params.Solution
	}
	if params.Retrospective != nil {
		updated.Retrospective = *params.Retrospective
	}

	// tagsの更新（JSONで明示的に指定されている場合のみ）
	// nil の場合は既存のタグを保持、空配列の場合はタグをクリア
	if params.Tags != nil {
		updated.Tags = params.Tags
	}

	if err := updated.Validate(); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.UpdateDiary(r.Context(), uid, &updated); err != nil {
		if errors.Is(err, model.ErrDiaryNotFound) {
			writeJSONError(w, "Diary not found", http.StatusNotFound)
		} else {
			log.Printf("Error updating diary: %v", err)
			writeJSONError(w, "Failed to update diary", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, &updated)
}

// handleDeleteDiary は特定のIDの日誌を削除するハンドラーです。
func (s *Server) handleDeleteDiary(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSONError(w, "Unauthorized: sign in required", http.StatusUnauthorized)
		return
	}

	params, err := NewDiaryPathParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.DeleteDiary(r.Context(), uid, params.ProjectID, params.DiaryID); err != nil {
		if errors.Is(err, model.ErrDiaryNotFound) || errors.Is(err, model.ErrProjectNotFound) {
			writeJSONError(w, "Diary not found", http.StatusNotFound)
		} else {
			log.Printf("Error deleting diary: %v", err)
			writeJSONError(w, "Failed to delete diary", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListProjectDiaries はプロジェクト配下の日誌一覧を取得するハンドラーです。
func (s *Server) handleListProjectDiaries(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSONError(w, "Unauthorized: sign in required", http.StatusUnauthorized)
		return
	}

	params, err := NewGetProjectParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	diaries, err := s.store.ListDiaries(r.Context(), uid, params.ProjectID)
	if err != nil {
		if errors.Is(err, model.ErrProjectNotFound) {
			writeJSONError(w, "Project not found", http.StatusNotFound)
		} else {
			log.Printf("Error listing diaries: %v", err)
			writeJSONError(w, "Failed to list diaries", http.StatusInternalServerError)
		}
		return
	}
	if diaries == nil {
		diaries = []*model.Diary{}
	}

	writeJSON(w, http.StatusOK, diaries)
}

// ListDiariesParams represents parameters for the cross-project diary list.
type ListDiariesParams struct {
	Filter *model.ProjectFilter
	Query  string
	Sort   *model.SortOrder
}

// NewListDiariesParams creates parameters for diary listing from HTTP request.
func NewListDiariesParams(r *http.Request) (*ListDiariesParams, error) {
	query := r.URL.Query()

	filter, err := model.NewProjectFilter(query.Get("project_id"))
	if err != nil {
		return nil, err
	}
	sort, err := model.NewSortOrder(query.Get("sort"))
	if err != nil {
		return nil, err
	}

	return &ListDiariesParams{
		Filter: filter,
		Query:  query.Get("q"),
		Sort:   sort,
	}, nil
}

// handleListDiaries は全プロジェクト横断の日誌一覧エンドポイントのハンドラーです。
// q による絞り込みとsortによる並べ替えをサポートします。
func (s *Server) handleListDiaries(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSONError(w, "Unauthorized: sign in required", http.StatusUnauthorized)
		return
	}

	params, err := NewListDiariesParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := s.engine.BuildFlatDiaryList(r.Context(), uid, params.Filter)
	if err != nil {
		if errors.Is(err, model.ErrProjectNotFound) {
			writeJSONError(w, "Project not found", http.StatusNotFound)
		} else {
			log.Printf("Error listing diaries: %v", err)
			writeJSONError(w, "Failed to list diaries", http.StatusInternalServerError)
		}
		return
	}

	entries = aggregate.Filter(entries, params.Query)
	aggregate.SortEntries(entries, params.Sort.IsDesc())
	if entries == nil {
		entries = []model.DiaryEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// handleGetCalendar はホーム画面用の集計データを返却するハンドラーです。
func (s *Server) handleGetCalendar(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSONError(w, "Unauthorized: sign in required", http.StatusUnauthorized)
		return
	}

	data, err := s.engine.BuildCalendarAndStats(r.Context(), uid)
	if err != nil {
		log.Printf("Error building calendar: %v", err)
		writeJSONError(w, "Failed to build calendar", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, data)
}
