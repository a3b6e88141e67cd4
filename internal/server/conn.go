package server

import (
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tinyweb/internal/failure"
	"tinyweb/internal/request"
	"tinyweb/internal/response"
	"tinyweb/internal/static"
)

// State はコネクション処理の状態
type State int

const (
	StateReadingRequestLine State = iota
	StateReadingHeaders
	StateReadingBody
	StateResolving
	StateWritingResponse
	StateError
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateReadingRequestLine:
		return "reading_request_line"
	case StateReadingHeaders:
		return "reading_headers"
	case StateReadingBody:
		return "reading_body"
	case StateResolving:
		return "resolving"
	case StateWritingResponse:
		return "writing_response"
	case StateError:
		return "error"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// connHandler は1つのコネクションを リクエスト解析 → パス解決 → レスポンス書き込み の順に処理する
type connHandler struct {
	conn     net.Conn
	reader   *request.Reader
	writer   *response.Writer
	resolver *static.Resolver
	stats    *Stats
	logger   zerolog.Logger

	state State
	req   *request.Request
}

// handleConn はコネクションを同期的に処理し、必ず1度だけクローズする
func (s *Server) handleConn(c net.Conn) {
	id := uuid.NewString()
	peer := c.RemoteAddr().String()

	h := &connHandler{
		conn:     c,
		reader:   request.NewReader(c, s.config.Server.MaxLineLength),
		writer:   response.NewWriter(c, s.config.Server.ServerName),
		resolver: s.resolver,
		stats:    s.stats,
		logger:   s.logger.With().Str("conn_id", id).Str("peer", peer).Logger(),
		state:    StateReadingRequestLine,
	}
	defer h.close()

	h.logger.Info().Msg("リクエストを受け付けました")
	s.stats.recordAccept(id, peer)

	if err := h.serve(); err != nil {
		h.fail(err)
	}
}

func (h *connHandler) transition(next State) {
	h.logger.Debug().Stringer("from", h.state).Stringer("to", next).Msg("状態遷移")
	h.state = next
}

func (h *connHandler) serve() error {
	line, err := request.ParseRequestLine(h.reader)
	if err != nil {
		return err
	}

	h.transition(StateReadingHeaders)
	header, contentLength, err := request.ParseHeaders(h.reader)
	if err != nil {
		return err
	}

	h.transition(StateReadingBody)
	body, err := h.reader.ReadBody(contentLength)
	if err != nil {
		return err
	}
	h.req = &request.Request{Line: line, Header: header, ContentLength: contentLength, Body: body}

	h.transition(StateResolving)
	res, err := h.resolver.Resolve(line.Path)
	if err != nil {
		return err
	}

	h.transition(StateWritingResponse)
	n, err := h.writer.WriteResource(res)
	if err != nil {
		return err
	}

	h.logger.Info().
		Str("method", line.Method).
		Str("path", line.Path).
		Int64("content_length", h.req.ContentLength).
		Str("file", res.Path).
		Bool("fallback", res.Fallback).
		Int64("bytes", n).
		Msg("静的ファイルを配信しました")
	return nil
}

// fail はエラーを記録し、まだヘッダーを送っていなければ500を返す
func (h *connHandler) fail(err error) {
	kind := failure.KindOf(err)
	failedIn := h.state
	h.transition(StateError)
	h.stats.recordError(kind)

	h.logger.Error().
		Err(err).
		Stringer("kind", kind).
		Stringer("state", failedIn).
		Msg("リクエストの処理に失敗しました")

	if h.writer.WroteHeader() {
		return
	}

	h.transition(StateWritingResponse)
	if werr := h.writer.WriteError(err); werr != nil {
		h.logger.Warn().Err(werr).Msg("エラーレスポンスを送信できませんでした")
	}
}

func (h *connHandler) close() {
	if err := h.conn.Close(); err != nil {
		h.logger.Warn().Err(err).Msg("コネクションのクローズに失敗")
	}
	h.transition(StateClosed)
}
