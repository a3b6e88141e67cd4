package server

import (
	"sync"
	"sync/atomic"
	"time"

	"tinyweb/internal/failure"
)

// Stats はプロセス全体の処理件数を保持する
// 配信ループと管理サーバーの両方から参照されるためスレッドセーフにする
type Stats struct {
	connections atomic.Int64
	errors      atomic.Int64

	mu     sync.Mutex
	byKind map[string]int64
	last   *LastConnection
}

// LastConnection は最後に受け付けた接続の情報
type LastConnection struct {
	ID         string    `json:"id"`
	Peer       string    `json:"peer"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// StatsSnapshot はある時点の統計情報
type StatsSnapshot struct {
	Connections    int64            `json:"connections"`
	Errors         int64            `json:"errors"`
	ErrorsByKind   map[string]int64 `json:"errors_by_kind"`
	LastConnection *LastConnection  `json:"last_connection,omitempty"`
}

func newStats() *Stats {
	return &Stats{byKind: make(map[string]int64)}
}

func (s *Stats) recordAccept(id, peer string) {
	s.connections.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &LastConnection{ID: id, Peer: peer, AcceptedAt: time.Now()}
}

func (s *Stats) recordError(kind failure.Kind) {
	s.errors.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKind[kind.String()]++
}

// Snapshot は現在の統計情報のコピーを返す
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKind := make(map[string]int64, len(s.byKind))
	for k, v := range s.byKind {
		byKind[k] = v
	}

	var last *LastConnection
	if s.last != nil {
		copied := *s.last
		last = &copied
	}

	return StatsSnapshot{
		Connections:    s.connections.Load(),
		Errors:         s.errors.Load(),
		ErrorsByKind:   byKind,
		LastConnection: last,
	}
}
