// Package server は、TCP接続の受け付けと1リクエストごとの処理を管理します。
//
// このパッケージは、リッスンループ、コネクションごとの状態遷移、
// 統計情報、管理用ステータスエンドポイントを担当します。
//
// 責務:
//   - TCP接続を1つずつ受け付け、同期的に処理する
//   - リクエスト解析 → パス解決 → レスポンス書き込み の状態遷移
//   - あらゆる失敗を500レスポンスにまとめ、接続を必ず1度だけクローズする
//   - 処理件数とエラー種別の集計
//   - 管理用HTTPサーバー（/health, /api/status）の提供
//
// 仕様:
//   - HTTP/1.0、1接続1リクエスト、常に Connection: close
//   - 並行処理なし。処理中の接続が終わるまで次の接続を受け付けない
//   - 読み書きにタイムアウトはない
//   - 管理サーバーはgin-gonic/ginを使用し、配信ループとは別ゴルーチンで動作する
package server
