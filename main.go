package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tinyweb/internal/config"
	"tinyweb/internal/logging"
	"tinyweb/internal/server"
)

func main() {
	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		logger := logging.New(config.Default().Log, os.Stdout)
		logger.Fatal().Err(err).Msg("設定の読み込みに失敗しました")
	}

	logger := logging.New(cfg.Log, os.Stdout)

	// サーバーを作成
	srv := server.New(cfg, logger)

	// SIGINT/SIGTERM でキャンセルされるコンテキスト
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// サーバーを起動
	if err := srv.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("サーバーの起動に失敗しました")
	}
}
