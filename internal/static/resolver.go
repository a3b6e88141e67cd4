// Package static はリクエストパスをドキュメントルート配下のファイルに解決する
package static

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"tinyweb/internal/failure"
)

// DefaultFallback はリソースが見つからない場合に配信するページ
const DefaultFallback = "404.html"

// 拡張子は大文字小文字を区別して照合する
var contentTypes = map[string]string{
	".html": "text/html",
	".png":  "image/png",
	".jpg":  "image/jpg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".js":   "application/javascript",
	".css":  "text/css",
}

const charsetSuffix = "; charset=UTF-8"

// ContentType はパスの拡張子から Content-Type を決定する
func ContentType(path string) string {
	ct, ok := contentTypes[filepath.Ext(path)]
	if !ok {
		ct = "text/plain"
	}
	return ct + charsetSuffix
}

// Resource は配信可能と確認されたファイル
type Resource struct {
	Path        string // ファイルシステム上のパス
	ContentType string
	Size        int64
	Fallback    bool // 404ページで代替した場合 true
}

// Open は配信用にファイルを開く
func (r *Resource) Open() (*os.File, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, failure.Wrap(failure.KindIO, "ファイルを開けません", err)
	}
	return f, nil
}

// Resolver はドキュメントルートとフォールバックページを保持する
type Resolver struct {
	root     string
	fallback string
}

// NewResolver は新しいResolverを作成する
func NewResolver(root, fallback string) *Resolver {
	if fallback == "" {
		fallback = DefaultFallback
	}
	return &Resolver{
		root:     filepath.Clean(root),
		fallback: fallback,
	}
}

// Root はドキュメントルートを返す
func (r *Resolver) Root() string {
	return r.root
}

// Resolve は生のリクエストパスを配信するファイルに解決する
//
// パスが存在しなければフォールバックページに置き換えて同じ判定を行う。
// 存在するが通常ファイルでない、または読めない場合は KindForbidden を返す。
func (r *Resolver) Resolve(rawPath string) (*Resource, error) {
	target, err := r.join(stripQuery(rawPath))
	if err != nil {
		return nil, err
	}

	fallback := false
	if _, err := os.Stat(target); err != nil {
		target = filepath.Join(r.root, r.fallback)
		fallback = true
	}

	res, err := r.inspect(target)
	if err != nil {
		return nil, err
	}
	res.Fallback = fallback
	return res, nil
}

// join はパスをルート配下に結合し、ルート外に出るパスを拒否する
func (r *Resolver) join(p string) (string, error) {
	target := filepath.Join(r.root, filepath.FromSlash(p))
	rel, err := filepath.Rel(r.root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", failure.New(failure.KindForbidden, "ドキュメントルート外へのアクセスは禁止されています: "+p)
	}
	return target, nil
}

func (r *Resolver) inspect(path string) (*Resource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, failure.Wrap(failure.KindForbidden, "アクセス権限がありません", err)
	}
	if !info.Mode().IsRegular() {
		return nil, failure.New(failure.KindForbidden, "アクセス権限がありません: 通常ファイルではありません")
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return nil, failure.Wrap(failure.KindForbidden, "アクセス権限がありません", err)
	}

	return &Resource{
		Path:        path,
		ContentType: ContentType(path),
		Size:        info.Size(),
	}, nil
}

// stripQuery はクエリとフラグメントを取り除く
func stripQuery(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		return p[:i]
	}
	return p
}
