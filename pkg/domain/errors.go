package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingPrimary は主要被写体が未準備のままバッチを開始しようとした場合のエラーです。
	ErrMissingPrimary = errors.New("主要被写体の参照画像が準備できていないのだ。解析済みの primary スロットが必須なのだ")

	// ErrEmptySceneList はシーンリストの解決結果が空だった場合のエラーです。
	ErrEmptySceneList = errors.New("シーンリストが空なのだ。カスタムテキストに有効な行が 1 行もなかったのだ")

	// ErrBatchInFlight は実行中のバッチがある状態で次のバッチを開始しようとした場合のエラーです。
	ErrBatchInFlight = errors.New("別のバッチが実行中なのだ。完了を待ってから再実行してほしいのだ")

	// ErrNoImage は画像が登録されていないスロットへの操作を表します。
	ErrNoImage = errors.New("このスロットには画像が登録されていません")
)

// IncompleteAssetError は、画像は登録済みだが記述子が未抽出の任意スロットを指します。
// 利用者は該当スロットを解析するか、取り除いてから再実行する必要があります。
type IncompleteAssetError struct {
	Role Role
}

func (e *IncompleteAssetError) Error() string {
	return fmt.Sprintf("%s スロットの記述子が未抽出です。解析するか、スロットをクリアしてください", e.Role)
}

// ExtractionError は単一スロットの記述子抽出の失敗を表します。
// 失敗は当該スロットに閉じ、他スロットの記述子には影響しません。
type ExtractionError struct {
	Role Role
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s スロットの記述子抽出に失敗しました: %v", e.Role, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
