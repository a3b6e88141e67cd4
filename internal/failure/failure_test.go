package failure

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestKindOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want Kind
	}{
		{"直接のエラー", New(KindForbidden, "x"), KindForbidden},
		{"ラップされたエラー", fmt.Errorf("outer: %w", New(KindMalformedHeader, "x")), KindMalformedHeader},
		{"種別なし", io.EOF, KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestError(t *testing.T) {
	err := Wrap(KindIO, "書き込みに失敗", io.ErrClosedPipe)
	if err.Error() != "書き込みに失敗: io: read/write on closed pipe" {
		t.Errorf("got %q", err.Error())
	}
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Error("原因のエラーを辿れるはず")
	}

	if got := New(KindConnClosed, "接続が閉じられました").Error(); got != "接続が閉じられました" {
		t.Errorf("got %q", got)
	}
}

func TestKindString(t *testing.T) {
	for kind, want := range map[Kind]string{
		KindConnClosed:           "conn_closed",
		KindMalformedRequestLine: "malformed_request_line",
		KindMalformedHeader:      "malformed_header",
		KindForbidden:            "forbidden",
		KindIO:                   "io",
		Kind(99):                 "unknown",
	} {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d): got %q, want %q", int(kind), got, want)
		}
	}
}
