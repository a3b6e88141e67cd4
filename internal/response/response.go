// Package response はHTTP/1.0レスポンスをコネクションに書き込む
package response

import (
	"bytes"
	"fmt"
	"io"

	"tinyweb/internal/failure"
	"tinyweb/internal/static"
)

// DefaultServerName は Server ヘッダーの既定値
const DefaultServerName = "Tiny Web Server"

const (
	statusOK    = "HTTP/1.0 200 OK"
	statusError = "HTTP/1.0 500 Server Internal Error"

	errorContentType = "text/html; charset=UTF-8"
)

// Writer はステータス行、ヘッダー、ボディを順に書き込む
type Writer struct {
	w          io.Writer
	serverName string

	// ヘッダーの書き込みを開始したかどうか
	wroteHeader bool
}

// NewWriter は新しいWriterを作成する
func NewWriter(w io.Writer, serverName string) *Writer {
	if serverName == "" {
		serverName = DefaultServerName
	}
	return &Writer{w: w, serverName: serverName}
}

// WroteHeader はヘッダーの送信を開始済みなら true を返す
// true の場合、エラーレスポンスを続けて書き込んではならない
func (w *Writer) WroteHeader() bool {
	return w.wroteHeader
}

// WriteResource は200レスポンスとしてファイルを配信する
// ヘッダーを送り切ってからファイルの内容をストリームする
func (w *Writer) WriteResource(res *static.Resource) (int64, error) {
	f, err := res.Open()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w.wroteHeader = true
	if _, err := w.w.Write(w.header(statusOK, res.ContentType, res.Size)); err != nil {
		return 0, failure.Wrap(failure.KindIO, "ヘッダーの送信に失敗", err)
	}

	n, err := io.Copy(w.w, f)
	if err != nil {
		return n, failure.Wrap(failure.KindIO, "ボディの送信に失敗", err)
	}
	return n, nil
}

// WriteError はエラーメッセージをボディとする500レスポンスを書き込む
func (w *Writer) WriteError(cause error) error {
	msg := []byte(cause.Error())

	var buf bytes.Buffer
	buf.Write(w.header(statusError, errorContentType, int64(len(msg))))
	buf.Write(msg)

	w.wroteHeader = true
	if _, err := w.w.Write(buf.Bytes()); err != nil {
		return failure.Wrap(failure.KindIO, "エラーレスポンスの送信に失敗", err)
	}
	return nil
}

func (w *Writer) header(status, contentType string, contentLength int64) []byte {
	var buf bytes.Buffer
	buf.WriteString(status + "\r\n")
	fmt.Fprintf(&buf, "Server: %s\r\n", w.serverName)
	buf.WriteString("Connection: close\r\n")
	fmt.Fprintf(&buf, "Content-Type: %s\r\n", contentType)
	fmt.Fprintf(&buf, "Content-Length: %d\r\n", contentLength)
	buf.WriteString("\r\n")
	return buf.Bytes()
}
