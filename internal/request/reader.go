package request

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"tinyweb/internal/failure"
)

// ErrLineTooLong は行が上限を超えたことを表す
var ErrLineTooLong = errors.New("行が長すぎます")

var crlf = []byte("\r\n")

// Reader はコネクションからCRLF区切りの行と固定長のボディを読み込む
//
// 行とボディは同じバッファから順に消費されるため、
// 1つのコネクションに対して Reader は1つだけ作成すること。
type Reader struct {
	br      *bufio.Reader
	maxLine int // 0 の場合は上限なし
}

// NewReader は新しいReaderを作成する
func NewReader(r io.Reader, maxLine int) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{br: br, maxLine: maxLine}
}

// ReadLine は1バイトずつ読み込み、バッファが CRLF で終わった時点で返す
// 戻り値には区切りの CRLF を含む
func (r *Reader) ReadLine() ([]byte, error) {
	var line []byte
	for {
		b, err := r.br.ReadByte()
		if err != nil {
			return nil, readError("行の読み込み中に", err)
		}
		line = append(line, b)
		if bytes.HasSuffix(line, crlf) {
			return line, nil
		}
		if r.maxLine > 0 && len(line) >= r.maxLine {
			return nil, ErrLineTooLong
		}
	}
}

// ReadBody はちょうど n バイトを読み込む
func (r *Reader) ReadBody(n int64) ([]byte, error) {
	if n <= 0 {
		return []byte{}, nil
	}
	// content-length を信用して一括確保しないよう、届いた分だけ伸ばす
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r.br, n); err != nil {
		return nil, readError("ボディの読み込み中に", err)
	}
	return buf.Bytes(), nil
}

func readError(where string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return failure.New(failure.KindConnClosed, where+"接続が閉じられました")
	}
	return failure.Wrap(failure.KindIO, where+"読み込みに失敗", err)
}
