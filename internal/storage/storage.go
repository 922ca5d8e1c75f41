package storage

import (
	"context"
	"io"
)

// Object は保存済みオブジェクトへの参照。
// URL は公開用、Handle は削除時にのみ使う識別子 (Cloudinary の public_id 相当)。
type Object struct {
	URL    string
	Handle string
}

// Storage は画像ファイルの保存・削除を抽象化するインターフェース。
// ローカルファイルシステム実装と Cloudinary 実装がある。
type Storage interface {
	// Save はファイルを保存し、参照を返す。
	// key はストレージ内の一意パス (例: "shares/<uuid>.jpg")。
	Save(ctx context.Context, key string, data io.Reader, contentType string) (Object, error)

	// Delete は handle に対応するファイルを削除する。
	// 既に存在しない場合も成功として扱う (再試行可能)。
	Delete(ctx context.Context, handle string) error
}
