// Package main はアプリケーションのエントリーポイントを提供します。
package main

import (
	"log"

	"github.com/stsysd/nisshi/api"
	"github.com/stsysd/nisshi/config"
	"github.com/stsysd/nisshi/db"
	"github.com/stsysd/nisshi/session"
	"github.com/stsysd/nisshi/store"
)

func main() {
	// 設定の読み込み
	cfg := config.NewConfig()

	// SQLiteストアの初期化（マイグレーション関数を渡す）
	sqliteStore, err := store.NewSQLiteStore(cfg.DataDir, db.Migrate)
	if err != nil {
		log.Fatalf("Failed to initialize SQLite store: %v", err)
	}
	defer sqliteStore.Close()

	// セッションマネージャーの初期化
	sessions := session.NewManager(sqliteStore, cfg.SecureCookie)
	defer sessions.Close()

	// サーバーインスタンスの作成
	server := api.NewServer(sqliteStore, sessions, cfg)

	// サーバーの起動
	log.Fatal(server.Run(":" + cfg.Port))
}
