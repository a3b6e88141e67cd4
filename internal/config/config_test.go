package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv はテスト中に影響する環境変数を空にする
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{ConfigFileEnv, "TINYWEB_HOST", "TINYWEB_PORT", "TINYWEB_DOC_ROOT", "TINYWEB_ADMIN_PORT", "TINYWEB_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

// TestConfigLoad は設定の読み込みをテストする
func TestConfigLoad(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("サーバーホスト: got %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("ポート番号: got %d, want 3000", cfg.Server.Port)
	}
	if filepath.Base(cfg.Server.DocRoot) != "static" {
		t.Errorf("ドキュメントルート: got %q", cfg.Server.DocRoot)
	}
	if cfg.Server.FallbackPage != "404.html" {
		t.Errorf("フォールバックページ: got %q", cfg.Server.FallbackPage)
	}
	// 行長はデフォルトで無制限
	if cfg.Server.MaxLineLength != 0 {
		t.Errorf("行長の上限: got %d, want 0", cfg.Server.MaxLineLength)
	}
	if cfg.Admin.Enabled {
		t.Error("管理サーバーはデフォルトで無効のはず")
	}
	if cfg.ServerAddress() != "127.0.0.1:3000" {
		t.Errorf("アドレス: got %q", cfg.ServerAddress())
	}
}

// TestConfigLoad_Env は環境変数による上書きをテストする
func TestConfigLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("TINYWEB_HOST", "0.0.0.0")
	t.Setenv("TINYWEB_PORT", "8080")
	t.Setenv("TINYWEB_DOC_ROOT", "/srv/www")
	t.Setenv("TINYWEB_ADMIN_PORT", "9090")
	t.Setenv("TINYWEB_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg.ServerAddress() != "0.0.0.0:8080" {
		t.Errorf("アドレス: got %q", cfg.ServerAddress())
	}
	if cfg.Server.DocRoot != "/srv/www" {
		t.Errorf("ドキュメントルート: got %q", cfg.Server.DocRoot)
	}
	if !cfg.Admin.Enabled || cfg.Admin.Port != 9090 {
		t.Errorf("管理サーバー: got %+v", cfg.Admin)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("ログレベル: got %q", cfg.Log.Level)
	}
}

// TestConfigLoad_File は設定ファイルの読み込みをテストする
func TestConfigLoad_File(t *testing.T) {
	testCases := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "YAML",
			file: "tinyweb.yaml",
			content: `server:
  port: 4000
  doc_root: /var/www
  max_line_length: 8192
log:
  format: json
`,
		},
		{
			name: "TOML",
			file: "tinyweb.toml",
			content: `[server]
port = 4000
doc_root = "/var/www"
max_line_length = 8192

[log]
format = "json"
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), tc.file)
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("設定ファイルの作成に失敗: %v", err)
			}
			t.Setenv(ConfigFileEnv, path)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("設定の読み込みに失敗しました: %v", err)
			}
			if cfg.Server.Port != 4000 || cfg.Server.DocRoot != "/var/www" || cfg.Server.MaxLineLength != 8192 {
				t.Errorf("サーバー設定: got %+v", cfg.Server)
			}
			// ファイルに無い項目はデフォルト値のまま
			if cfg.Server.Host != "127.0.0.1" || cfg.Server.FallbackPage != "404.html" {
				t.Errorf("デフォルト値が失われました: %+v", cfg.Server)
			}
			if cfg.Log.Format != "json" || cfg.Log.Level != "info" {
				t.Errorf("ログ設定: got %+v", cfg.Log)
			}
		})
	}
}

// TestConfigLoad_FileErrors は不正な設定ファイルをテストする
func TestConfigLoad_FileErrors(t *testing.T) {
	testCases := []struct {
		name    string
		file    string
		content string
	}{
		{"未対応の拡張子", "tinyweb.ini", "port=1"},
		{"未知のキー", "tinyweb.yaml", "server:\n  listen: 1\n"},
		{"壊れたTOML", "tinyweb.toml", "[server\nport = "},
		{"不正なポート", "tinyweb.yaml", "server:\n  port: 70000\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), tc.file)
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("設定ファイルの作成に失敗: %v", err)
			}
			t.Setenv(ConfigFileEnv, path)

			if _, err := Load(); err == nil {
				t.Error("エラーが返されるはず")
			}
		})
	}
}

// TestConfigValidation は設定の検証をテストする
func TestConfigValidation(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Server.DocRoot = "/srv/www"
		return cfg
	}

	testCases := []struct {
		name      string
		modify    func(c *Config)
		expectErr bool
	}{
		{"正常な設定", func(c *Config) {}, false},
		{"無効なポート番号", func(c *Config) { c.Server.Port = 99999 }, true},
		{"ポート番号0", func(c *Config) { c.Server.Port = 0 }, true},
		{"ホストなし", func(c *Config) { c.Server.Host = "" }, true},
		{"ドキュメントルートなし", func(c *Config) { c.Server.DocRoot = "" }, true},
		{"負の行長", func(c *Config) { c.Server.MaxLineLength = -1 }, true},
		{"不明なログレベル", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"不明なログ形式", func(c *Config) { c.Log.Format = "xml" }, true},
		{"管理サーバー有効", func(c *Config) { c.Admin.Enabled = true }, false},
		{"管理ポートの重複", func(c *Config) {
			c.Admin.Enabled = true
			c.Admin.Port = c.Server.Port
		}, true},
		{"管理ポートなし", func(c *Config) {
			c.Admin.Enabled = true
			c.Admin.Port = 0
		}, true},
		{"無効な管理サーバーのポートは検証しない", func(c *Config) { c.Admin.Port = c.Server.Port }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.expectErr && err == nil {
				t.Error("エラーが期待されましたが、nilが返されました")
			}
			if !tc.expectErr && err != nil {
				t.Errorf("エラーが期待されませんでしたが、エラーが返されました: %v", err)
			}
		})
	}
}
