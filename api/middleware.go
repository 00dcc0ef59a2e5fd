package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/stsysd/nisshi/session"
)

// authMiddleware はセッションクッキーを検証し、ユーザーIDをコンテキストに
// 注入するミドルウェアです。
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.sessions.FromRequest(r)
		if !ok {
			writeJSONError(w, "Unauthorized: sign in required", http.StatusUnauthorized)
			return
		}

		// 認証成功：ユーザーIDをコンテキストに載せて次のハンドラーを呼び出し
		ctx := session.WithUser(r.Context(), sess.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userID はコンテキストから認証済みユーザーIDを取り出します。
// authMiddleware配下でのみ呼び出されます。
func userID(r *http.Request) (uuid.UUID, bool) {
	return session.UserFrom(r.Context())
}
