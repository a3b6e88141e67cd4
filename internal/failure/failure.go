// Package failure はリクエスト処理中に発生するエラーの種別を定義する
//
// 各処理ステップは (値, error) を返し、error は種別付きの *Error として
// コネクションハンドラまで明示的に伝播される。
package failure

import (
	"errors"
	"fmt"
)

// Kind はエラーの種別を表す
type Kind int

const (
	KindUnknown              Kind = iota // 種別不明
	KindConnClosed                       // 読み込み中にピアが切断した
	KindMalformedRequestLine             // リクエスト行のトークン数が不正
	KindMalformedHeader                  // ヘッダー行の区切りや content-length が不正
	KindForbidden                        // リソースは存在するが通常ファイルでない、または読めない
	KindIO                               // 書き込みやファイルオープンの失敗
)

// String は種別名を返す
func (k Kind) String() string {
	switch k {
	case KindConnClosed:
		return "conn_closed"
	case KindMalformedRequestLine:
		return "malformed_request_line"
	case KindMalformedHeader:
		return "malformed_header"
	case KindForbidden:
		return "forbidden"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error は種別付きのエラー
type Error struct {
	Kind Kind
	Msg  string
	Err  error // 原因となったエラー（nilの場合あり）
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New は原因を持たないエラーを作成する
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap は原因となるエラーに種別とメッセージを付与する
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf はエラーチェーンから最初に見つかった種別を返す
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}
