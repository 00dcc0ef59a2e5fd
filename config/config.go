// Package config はアプリケーション設定を管理します。
package config

import (
	"os"
	"path/filepath"
)

// Config はアプリケーション全体の設定を保持します。
type Config struct {
	// データディレクトリのパス
	DataDir string

	// HTTPサーバーのポート
	Port string

	// セッションCookieにSecure属性を付けるかどうか
	SecureCookie bool
}

// NewConfig は環境変数から設定を読み込み、Configインスタンスを生成します。
func NewConfig() *Config {
	// データディレクトリの設定
	dataDir := os.Getenv("NISSHI_DATA_DIR")
	if dataDir == "" {
		dataDir = filepath.Join(".", "data")
	}

	// ポートの設定
	port := os.Getenv("NISSHI_SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	// HTTPS配下で動かす場合のみSecure Cookieを有効にする
	secureCookie := os.Getenv("NISSHI_SECURE_COOKIE") == "true"

	return &Config{
		DataDir:      dataDir,
		Port:         port,
		SecureCookie: secureCookie,
	}
}
