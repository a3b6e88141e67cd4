package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"tinyweb/internal/config"
	"tinyweb/internal/static"
)

// Server は静的ファイルサーバーを管理する構造体
type Server struct {
	config   *config.Config
	logger   zerolog.Logger
	resolver *static.Resolver
	stats    *Stats
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, logger zerolog.Logger) *Server {
	return &Server{
		config:   cfg,
		logger:   logger,
		resolver: static.NewResolver(cfg.Server.DocRoot, cfg.Server.FallbackPage),
		stats:    newStats(),
	}
}

// Stats は統計情報のスナップショットを返す
func (s *Server) Stats() StatsSnapshot {
	return s.stats.Snapshot()
}

// Start はリッスンを開始し、ctx がキャンセルされるまで接続を処理する
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ServerAddress())
	if err != nil {
		return fmt.Errorf("リッスンに失敗: %w", err)
	}

	if s.config.Admin.Enabled {
		admin, err := s.startAdmin()
		if err != nil {
			ln.Close()
			return err
		}
		defer s.shutdownAdmin(admin)
	}

	return s.Serve(ctx, ln)
}

// Serve は ln から1つずつ接続を受け付け、同期的に処理する
// 処理中の接続が終わるまで次の接続は受け付けない
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	// キャンセルされたら Accept を中断させる
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	port := 0
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}
	s.logger.Info().
		Int("port", port).
		Str("doc_root", s.resolver.Root()).
		Msg("Tiny Web Server を起動しました")

	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info().Msg("サーバーを停止しました")
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("リスナーが閉じられました: %w", err)
			}
			s.logger.Error().Err(err).Msg("接続の受け付けに失敗")
			continue
		}

		s.handleConn(c)
	}
}

// startAdmin は管理用HTTPサーバーを別ゴルーチンで起動する
func (s *Server) startAdmin() (*http.Server, error) {
	ln, err := net.Listen("tcp", s.config.AdminAddress())
	if err != nil {
		return nil, fmt.Errorf("管理サーバーのリッスンに失敗: %w", err)
	}

	admin := &http.Server{
		Handler:      s.adminRouter(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("管理サーバーを起動しています")
		if err := admin.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("管理サーバーが異常終了しました")
		}
	}()

	return admin, nil
}

// shutdownAdmin は管理サーバーをグレースフルにシャットダウンする
func (s *Server) shutdownAdmin(admin *http.Server) {
	// 5秒のタイムアウトを設定
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := admin.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("管理サーバーのシャットダウンに失敗")
		return
	}
	s.logger.Info().Msg("管理サーバーが正常にシャットダウンされました")
}
