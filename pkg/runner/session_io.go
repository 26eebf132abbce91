package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shouni/go-recast-kit/pkg/asset"
	"github.com/shouni/go-recast-kit/pkg/domain"
)

// sessionSlot はセッション JSON 内の 1 スロット分の表現です。
// 画像バイト列は保存せず、読み込み元と記述子だけを永続化します。
type sessionSlot struct {
	Role       domain.Role `json:"role"`
	Source     string      `json:"source"`
	MimeType   string      `json:"mime_type"`
	Descriptor string      `json:"descriptor"`
}

// SessionDocument は analyze フェーズの成果物として保存されるセッションです。
type SessionDocument struct {
	Slots []sessionSlot `json:"slots"`
}

// SaveSession はストアの現在の状態をセッション JSON として保存します。
// sources は各スロットの読み込み元（パスまたは URL）です。
func SaveSession(path string, snapshot domain.AssetSet, sources map[domain.Role]string) error {
	doc := SessionDocument{}
	for _, role := range domain.RoleOrder {
		a, ok := snapshot.Get(role)
		if !ok || !a.Ready() {
			continue
		}
		doc.Slots = append(doc.Slots, sessionSlot{
			Role:       role,
			Source:     sources[role],
			MimeType:   a.Image.MimeType,
			Descriptor: a.Descriptor,
		})
	}
	if len(doc.Slots) == 0 {
		return fmt.Errorf("保存できる解析済みスロットがありません")
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("セッションのシリアライズに失敗しました: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("セッション保存先の作成に失敗しました: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("セッションの保存に失敗しました (%s): %w", path, err)
	}
	return nil
}

// LoadSession はセッション JSON を読み込み、画像を読み込み元から再取得して
// ストアを復元します。記述子はスロット登録後に紐付け直します。
func LoadSession(ctx context.Context, path string, loader *asset.Loader, store *domain.SessionStore) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("セッションの読み込みに失敗しました (%s): %w", path, err)
	}

	var doc SessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("セッション JSON の解析に失敗しました (%s): %w", path, err)
	}

	for _, slot := range doc.Slots {
		if slot.Source == "" {
			return fmt.Errorf("%s スロットの読み込み元が記録されていません", slot.Role)
		}
		img, err := loader.Load(ctx, slot.Source)
		if err != nil {
			return fmt.Errorf("%s スロットの画像の再取得に失敗しました: %w", slot.Role, err)
		}
		if err := store.Populate(slot.Role, img); err != nil {
			return err
		}
		if slot.Descriptor != "" {
			if err := store.AttachDescriptor(slot.Role, slot.Descriptor); err != nil {
				return err
			}
		}
	}
	return nil
}
