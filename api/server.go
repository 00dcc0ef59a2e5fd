// Package api はnisshiのAPIサーバー実装を提供します。
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/stsysd/nisshi/aggregate"
	"github.com/stsysd/nisshi/config"
	"github.com/stsysd/nisshi/heatmap"
	"github.com/stsysd/nisshi/model"
	"github.com/stsysd/nisshi/session"
	"github.com/stsysd/nisshi/store"
)

// Server はAPIサーバーの構造体です。
type Server struct {
	router   *http.ServeMux
	store    store.Store
	engine   *aggregate.Engine
	sessions *session.Manager
	config   *config.Config
}

// ErrorResponse はエラーレスポンスの構造体です。
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// writeJSONError はJSON形式でエラーレスポンスを返却します。
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp := ErrorResponse{
		Error: message,
		Code:  statusCode,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding error response: %v", err)
	}
}

// writeJSON は成功レスポンスをJSON形式で返却します。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// NewServer は新しいAPIサーバーインスタンスを生成します。
func NewServer(store store.Store, sessions *session.Manager, config *config.Config) *Server {
	s := &Server{
		router:   http.NewServeMux(),
		store:    store,
		engine:   aggregate.NewEngine(store),
		sessions: sessions,
		config:   config,
	}
	s.routes()
	return s
}

// routes はAPIエンドポイントのルーティングを設定します。
func (s *Server) routes() {
	// ヘルスチェックと認証エンドポイントは認証不要
	s.router.HandleFunc("GET /healthz", s.handleHealthCheck)
	s.router.HandleFunc("POST /api/v0/auth/signup", s.handleSignUp)
	s.router.HandleFunc("POST /api/v0/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /api/v0/auth/logout", s.handleLogout)

	// すべての保護されたエンドポイントをまずセキュアなルータに登録
	securedHandler := http.NewServeMux()

	securedHandler.HandleFunc("GET /api/v0/auth/me", s.handleMe)

	// Project endpoints
	securedHandler.HandleFunc("GET /api/v0/projects", s.handleListProjects)
	securedHandler.HandleFunc("POST /api/v0/projects", s.handleCreateProject)
	securedHandler.HandleFunc("GET /api/v0/projects/{project_id}", s.handleGetProject)
	securedHandler.HandleFunc("PUT /api/v0/projects/{project_id}", s.handleUpdateProject)
	securedHandler.HandleFunc("DELETE /api/v0/projects/{project_id}", s.handleDeleteProject)
	securedHandler.HandleFunc("GET /api/v0/projects/{project_id}/tags", s.handleGetProjectTags)

	// Diary endpoints
	securedHandler.HandleFunc("POST /api/v0/projects/{project_id}/diaries", s.handleCreateDiary)
	securedHandler.HandleFunc("GET /api/v0/projects/{project_id}/diaries", s.handleListProjectDiaries)
	securedHandler.HandleFunc("GET /api/v0/projects/{project_id}/diaries/{diary_id}", s.handleGetDiary)
	securedHandler.HandleFunc("PUT /api/v0/projects/{project_id}/diaries/{diary_id}", s.handleUpdateDiary)
	securedHandler.HandleFunc("DELETE /api/v0/projects/{project_id}/diaries/{diary_id}", s.handleDeleteDiary)

	// Cross-project endpoints
	securedHandler.HandleFunc("GET /api/v0/diaries", s.handleListDiaries)
	securedHandler.HandleFunc("GET /api/v0/calendar", s.handleGetCalendar)

	// 認証ミドルウェアを適用し、メインルータにマウント
	s.router.Handle("/api/", s.authMiddleware(securedHandler))

	// Graph endpoints - support both with and without .svg extension
	s.router.HandleFunc("GET /p/{project_id}/graph.svg", s.handleGetGraph)
	s.router.HandleFunc("GET /p/{project_id}/graph", s.handleGetGraph)
}

// Run はサーバーを指定されたアドレスで起動します。
func (s *Server) Run(addr string) error {
	log.Printf("Server starting on %s", addr)
	return http.ListenAndServe(addr, s)
}

// ServeHTTP はServer構造体をhttp.Handlerとして実装します。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// routesに設定されたルーティングを使用する
	s.router.ServeHTTP(w, r)
}

// handleHealthCheck はヘルスチェックエンドポイントのハンドラーです。
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetGraphParams represents parameters for getting a graph.
type GetGraphParams struct {
	ProjectID uuid.UUID
	DateRange *model.DateRange
}

// NewGetGraphParams creates parameters for graph generation from HTTP request.
func NewGetGraphParams(r *http.Request) (*GetGraphParams, error) {
	projectID, err := uuid.Parse(r.PathValue("project_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid project_id: %w", err)
	}

	query := r.URL.Query()
	dateRange, err := model.NewDateRange(query.Get("from"), query.Get("to"))
	if err != nil {
		return nil, err
	}

	return &GetGraphParams{
		ProjectID: projectID,
		DateRange: dateRange,
	}, nil
}

// handleGetGraph は指定プロジェクトの日誌ヒートマップを生成・返却するハンドラーです。
// 認証なしで参照できる唯一のプロジェクト情報です。
func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewGetGraphParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// プロジェクトを取得（グラフ生成時のタイトル用）
	project, err := s.store.GetProjectByID(r.Context(), params.ProjectID)
	if err != nil {
		log.Printf("Error getting project: %v", err)
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}

	// 日誌の取得と日付ごとの集計
	diaries, err := s.store.ListDiaries(r.Context(), project.UserID, project.ID)
	if err != nil {
		log.Printf("Error retrieving diaries: %v", err)
		http.Error(w, "Failed to retrieve diaries", http.StatusInternalServerError)
		return
	}

	data := heatmap.BuildDayCounts(diaries, params.DateRange)
	opts := heatmap.DefaultOptions()
	opts.Title = project.Name
	svg := heatmap.RenderYearlySVG(data, opts)

	// レスポンスの返却
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(svg))
}
