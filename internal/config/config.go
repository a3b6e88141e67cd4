package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server ServerConfig `yaml:"server" toml:"server"`
	Admin  AdminConfig  `yaml:"admin" toml:"admin"`
	Log    LogConfig    `yaml:"log" toml:"log"`
}

// ServerConfig は静的ファイルサーバーの設定
type ServerConfig struct {
	Host string `yaml:"host" toml:"host" validate:"required"`        // リッスンするホスト
	Port int    `yaml:"port" toml:"port" validate:"gte=1,lte=65535"` // リッスンするポート番号

	// ドキュメントルートと、リソースが無い場合に代わりに配信するページ
	DocRoot      string `yaml:"doc_root" toml:"doc_root" validate:"required"`
	FallbackPage string `yaml:"fallback_page" toml:"fallback_page" validate:"required"`

	// Server ヘッダーの値
	ServerName string `yaml:"server_name" toml:"server_name" validate:"required"`

	// 1行の最大バイト数。0 は上限なし
	MaxLineLength int `yaml:"max_line_length" toml:"max_line_length" validate:"gte=0"`
}

// AdminConfig はステータス確認用HTTPサーバーの設定
type AdminConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Host    string `yaml:"host" toml:"host" validate:"required_if=Enabled true"`
	Port    int    `yaml:"port" toml:"port" validate:"gte=0,lte=65535"`
}

// LogConfig はログ出力の設定
type LogConfig struct {
	Level  string `yaml:"level" toml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" toml:"format" validate:"oneof=console json"`
}

// ConfigFileEnv は設定ファイルのパスを指定する環境変数
const ConfigFileEnv = "TINYWEB_CONFIG"

var validate = validator.New()

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "127.0.0.1",
			Port:          3000,
			DocRoot:       defaultDocRoot(),
			FallbackPage:  "404.html",
			ServerName:    "Tiny Web Server",
			MaxLineLength: 0,
		},
		Admin: AdminConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    3001,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load は設定を読み込む
// デフォルト値、設定ファイル、環境変数の順に上書きする
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
	}

	cfg.applyEnv()

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// loadFile は拡張子に応じてYAMLまたはTOMLを読み込む
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil {
			return fmt.Errorf("YAMLの解析に失敗: %w", err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(c); err != nil {
			return fmt.Errorf("TOMLの解析に失敗: %w", err)
		}
	default:
		return fmt.Errorf("未対応の設定ファイル形式: %s", path)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnvOrDefault("TINYWEB_HOST", c.Server.Host)
	c.Server.Port = getEnvAsIntOrDefault("TINYWEB_PORT", c.Server.Port)
	c.Server.DocRoot = getEnvOrDefault("TINYWEB_DOC_ROOT", c.Server.DocRoot)
	c.Log.Level = getEnvOrDefault("TINYWEB_LOG_LEVEL", c.Log.Level)

	// 管理ポートを指定した場合は管理サーバーを有効にする
	if port := getEnvAsIntOrDefault("TINYWEB_ADMIN_PORT", 0); port != 0 {
		c.Admin.Enabled = true
		c.Admin.Port = port
	}
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Admin.Enabled {
		if c.Admin.Port < 1 {
			return fmt.Errorf("無効な管理ポート番号: %d", c.Admin.Port)
		}
		if c.Admin.Port == c.Server.Port {
			return fmt.Errorf("管理ポートがサーバーポートと重複しています: %d", c.Admin.Port)
		}
	}

	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// AdminAddress は管理サーバーのリッスンアドレスを返す
func (c *Config) AdminAddress() string {
	return fmt.Sprintf("%s:%d", c.Admin.Host, c.Admin.Port)
}

// defaultDocRoot は実行ファイルと同じディレクトリの static を返す
func defaultDocRoot() string {
	exe, err := os.Executable()
	if err != nil {
		return "static"
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "static")
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}
