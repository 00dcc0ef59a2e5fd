package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/stsysd/nisshi/model"
)

// CreateProjectParams represents parameters for creating a project.
type CreateProjectParams struct {
	Name        string
	Description string
	Status      model.ProjectStatus
}

// NewCreateProjectParams creates parameters for project creation from HTTP request.
func NewCreateProjectParams(r *http.Request) (*CreateProjectParams, error) {
	var requestBody struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Status      string `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	status, err := model.ParseProjectStatus(requestBody.Status)
	if err != nil {
		return nil, err
	}

	return &CreateProjectParams{
		Name:        requestBody.Name,
		Description: requestBody.Description,
		Status:      status,
	}, nil
}

// handleCreateProject はプロジェクト作成エンドポイントのハンドラーです。
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSONError(w, "Unauthorized: sign in required", http.StatusUnauthorized)
		return
	}

	// パラメータを検証
	params, err := NewCreateProjectParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 新しいプロジェクトの作成
	project, err := model.NewProject(uid, params.Name, params.Description, params.Status)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// プロジェクトの保存
	if err := s.store.CreateProject(r.Context(), project); err != nil {
		log.Printf("Error creating project: %v", err)
		writeJSONError(w, "Failed to create project", http.StatusInternalServerError)
		return
	}

	// 成功レスポンスの返却
	writeJSON(w, http.StatusCreated, project)
}

// handleListProjects はプロジェクト一覧エンドポイントのハンドラーです。
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSONError(w, "Unauthorized: sign in required", http.StatusUnauthorized)
		return
	}

	projects, err := s.store.ListProjects(r.Context(), uid)
	if err != nil {
		log.Printf("Error listing projects: %v", err)
		writeJSONError(w, "Failed to list projects", http.StatusInternalServerError)
		return
	}
	if projects == nil {
		projects = []*model.Project{}
	}

	writeJSON(w, http.StatusOK, projects)
}

// GetProjectParams represents parameters for getting a project.
type GetProjectParams struct {
	ProjectID uuid.UUID
}

// NewGetProjectParams creates parameters for project retrieval from HTTP request.
func NewGetProjectParams(r *http.Request) (*GetProjectParams, error) {
	projectID, err := uuid.Parse(r.PathValue("project_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid project_id: %w", err)
	}

	return &GetProjectParams{ProjectID: projectID}, nil
}

// handleGetProject は特定のIDのプロジェクトを取得するハンドラーです。
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
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

	project, err := s.store.GetProject(r.Context(), uid, params.ProjectID)
	if err != nil {
		if errors.Is(err, model.ErrProjectNotFound) {
			writeJSONError(w, "Project not found", http.StatusNotFound)
		} else {
			log.Printf("Error retrieving project: %v", err)
			writeJSONError(w, "Failed to retrieve project", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, project)
}

// UpdateProjectParams represents parameters for updating a project.
type UpdateProjectParams struct {
	ProjectID   uuid.UUID
	Name        *string
	Description *string
	Status      *model.ProjectStatus
}

// NewUpdateProjectParams creates parameters for project update from HTTP request.
func NewUpdateProjectParams(r *http.Request) (*UpdateProjectParams, error) {
	projectID, err := uuid.Parse(r.PathValue("project_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid project_id: %w", err)
	}

	var requestBody struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	var status *model.ProjectStatus
	if requestBody.Status != nil {
		parsed, err := model.ParseProjectStatus(*requestBody.Status)
		if err != nil {
			return nil, err
		}
		status = &parsed
	}

	return &UpdateProjectParams{
		ProjectID:   projectID,
		Name:        requestBody.Name,
		Description: requestBody.Description,
		Status:      status,
	}, nil
}

// handleUpdateProject は特定のIDのプロジェクトを更新するハンドラーです。
func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSONError(w, "Unauthorized: sign in required", http.StatusUnauthorized)
		return
	}

	params, err := NewUpdateProjectParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 更新前にプロジェクトが存在するか確認
	existing, err := s.store.GetProject(r.Context(), uid, params.ProjectID)
	if err != nil {
		if errors.Is(err, model.ErrProjectNotFound) {
			writeJSONError(w, "Project not found", http.StatusNotFound)
		} else {
			log.Printf("Error retrieving project: %v", err)
			writeJSONError(w, "Failed to retrieve project", http.StatusInternalServerError)
		}
		return
	}

	// 更新用のプロジェクトを既存プロジェクトをベースに作成
	updated := *existing
	if params.Name != nil {
		updated.Name = *params.Name
	}
	if params.Description != nil {
		updated.Description = *params.Description
	}
	if params.Status != nil {
		updated.Status = *params.Status
	}
	updated.UpdatedAt = time.Now().Truncate(time.Second)

	if err := updated.Validate(); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.UpdateProject(r.Context(), &updated); err != nil {
		if errors.Is(err, model.ErrProjectNotFound) {
			writeJSONError(w, "Project not found", http.StatusNotFound)
		} else {
			log.Printf("Error updating project: %v", err)
			writeJSONError(w, "Failed to update project", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, &updated)
}

// handleDeleteProject は特定のIDのプロジェクトを削除するハンドラーです。
// 配下の日誌は削除されません。
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
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

	if err := s.store.DeleteProject(r.Context(), uid, params.ProjectID); err != nil {
		if errors.Is(err, model.ErrProjectNotFound) {
			writeJSONError(w, "Project not found", http.StatusNotFound)
		} else {
			log.Printf("Error deleting project: %v", err)
			writeJSONError(w, "Failed to delete project", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGetProjectTags はプロジェクト内のタグ一覧を取得するハンドラーです。
func (s *Server) handleGetProjectTags(w http.ResponseWriter, r *http.Request) {
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

	tags, err := s.store.GetProjectTags(r.Context(), uid, params.ProjectID)
	if err != nil {
		if errors.Is(err, model.ErrProjectNotFound) {
			writeJSONError(w, "Project not found", http.StatusNotFound)
		} else {
			log.Printf("Error retrieving tags: %v", err)
			writeJSONError(w, "Failed to retrieve tags", http.StatusInternalServerError)
		}
		return
	}
	if tags == nil {
		tags = []string{}
	}

	writeJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}
