// Package request はHTTP/1.0リクエストのフレーミングと解析を行う
package request

import (
	"errors"
	"strconv"
	"strings"

	"tinyweb/internal/failure"
)

// ContentLengthKey は正規化済みの content-length ヘッダー名
const ContentLengthKey = "content-length"

// RequestLine はリクエストの1行目
type RequestLine struct {
	Method   string
	Path     string // クエリを含む生のパス
	Protocol string
}

// Header は小文字化したヘッダー名から値へのマップ
// http.Header と異なり、同名ヘッダーは後勝ちで1つだけ保持する
type Header map[string]string

// Get は大文字小文字を区別せずに値を取得する
func (h Header) Get(name string) string {
	return h[strings.ToLower(name)]
}

// Request は1コネクション分の解析済みリクエスト
type Request struct {
	Line          RequestLine
	Header        Header
	ContentLength int64
	Body          []byte
}

// Read はリクエスト行、ヘッダー、ボディの順に読み込む
// いずれかのステップで失敗した場合はそこで中断する
func Read(rd *Reader) (*Request, error) {
	line, err := ParseRequestLine(rd)
	if err != nil {
		return nil, err
	}

	header, contentLength, err := ParseHeaders(rd)
	if err != nil {
		return nil, err
	}

	body, err := rd.ReadBody(contentLength)
	if err != nil {
		return nil, err
	}

	return &Request{
		Line:          line,
		Header:        header,
		ContentLength: contentLength,
		Body:          body,
	}, nil
}

// ParseRequestLine は1行読み込み、単一スペースで method, path, protocol に分割する
func ParseRequestLine(rd *Reader) (RequestLine, error) {
	raw, err := rd.ReadLine()
	if err != nil {
		if errors.Is(err, ErrLineTooLong) {
			return RequestLine{}, failure.Wrap(failure.KindMalformedRequestLine, "リクエスト行が不正です", err)
		}
		return RequestLine{}, err
	}

	fields := strings.Split(trimCRLF(raw), " ")
	if len(fields) != 3 {
		return RequestLine{}, failure.New(failure.KindMalformedRequestLine,
			"リクエスト行が不正です: トークン数 "+strconv.Itoa(len(fields)))
	}

	return RequestLine{
		Method:   fields[0],
		Path:     fields[1],
		Protocol: fields[2],
	}, nil
}

// ParseHeaders は空行が現れるまでヘッダー行を読み込む
// content-length が無い場合は 0 として補完する
func ParseHeaders(rd *Reader) (Header, int64, error) {
	header := make(Header)
	var contentLength int64

	for {
		raw, err := rd.ReadLine()
		if err != nil {
			if errors.Is(err, ErrLineTooLong) {
				return nil, 0, failure.Wrap(failure.KindMalformedHeader, "ヘッダー行が不正です", err)
			}
			return nil, 0, err
		}
		if len(raw) == len(crlf) {
			break
		}

		name, value, ok := strings.Cut(trimCRLF(raw), ": ")
		if !ok {
			return nil, 0, failure.New(failure.KindMalformedHeader,
				"ヘッダー行に区切り \": \" がありません: "+strconv.Quote(trimCRLF(raw)))
		}
		name = strings.ToLower(name)

		if name == ContentLengthKey {
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, 0, failure.Wrap(failure.KindMalformedHeader, "content-length が整数ではありません", err)
			}
			if n < 0 {
				return nil, 0, failure.New(failure.KindMalformedHeader, "content-length が負の値です: "+value)
			}
			contentLength = n
			value = strconv.FormatInt(n, 10)
		}
		header[name] = value
	}

	if _, ok := header[ContentLengthKey]; !ok {
		header[ContentLengthKey] = "0"
	}

	return header, contentLength, nil
}

func trimCRLF(line []byte) string {
	return strings.TrimSuffix(string(line), "\r\n")
}
