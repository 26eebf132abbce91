package domain

import (
	"fmt"
	"sync"
)

// SessionStore は 4 つの参照スロットを保持するスレッドセーフなストアです。
// バッチ実行側は Snapshot で得た AssetSet だけを参照するため、
// 実行中にスロットを差し替えても進行中のバッチには影響しないのだ。
type SessionStore struct {
	mu    sync.RWMutex
	slots map[Role]ReferenceAsset
}

// NewSessionStore は空の SessionStore を生成します。
func NewSessionStore() *SessionStore {
	return &SessionStore{
		slots: make(map[Role]ReferenceAsset, len(RoleOrder)),
	}
}

// Populate は指定ロールに参照画像を登録します。
// 既存スロットの差し替え時は、古い画像に対する記述子を必ず破棄します。
func (s *SessionStore) Populate(role Role, img ReferenceImage) error {
	if !role.Valid() {
		return fmt.Errorf("未知のロールです: %q", role)
	}
	if img.IsEmpty() {
		return fmt.Errorf("%s スロットに登録する画像データが空です", role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[role] = ReferenceAsset{Role: role, Image: img.Clone()}
	return nil
}

// AttachDescriptor は抽出済みの記述子をスロットへ紐付けます。
// 画像のないスロットへの紐付けは不正なので ErrNoImage を返します。
func (s *SessionStore) AttachDescriptor(role Role, descriptor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.slots[role]
	if !ok || !a.HasImage() {
		return fmt.Errorf("%s スロットへの記述子の紐付けに失敗しました: %w", role, ErrNoImage)
	}
	a.Descriptor = descriptor
	s.slots[role] = a
	return nil
}

// Clear は指定ロールのスロットを空に戻します。画像と記述子は同時に消えます。
func (s *SessionStore) Clear(role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, role)
}

// Snapshot は現在のスロット集合の深いコピーを返します。
func (s *SessionStore) Snapshot() AssetSet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := make(AssetSet, len(s.slots))
	for role, a := range s.slots {
		set[role] = ReferenceAsset{
			Role:       a.Role,
			Image:      a.Image.Clone(),
			Descriptor: a.Descriptor,
		}
	}
	return set
}
