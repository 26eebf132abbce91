package domain

import "fmt"

// SceneSpec は 1 シーン分の生成指示です。Text は解決済みの本文で、
// カメラアングル修飾子が指定されていれば解決時に前置済みです。
type SceneSpec struct {
	Text string
}

// GenerationRequest は 1 枚分の画像生成呼び出しに必要な情報一式です。
// References は RoleOrder 順に並んだ合成可能スロットの画像コピーです。
type GenerationRequest struct {
	Index       int
	Scene       SceneSpec
	Instruction string
	References  []ReferenceImage
}

// GeneratedImage は生成結果の画像データです。
type GeneratedImage struct {
	Data     []byte
	MimeType string
}

// SlotState は結果スロットの状態です。すべてのスロットは
// 最終的に StateSucceeded か StateFailed のどちらかへ遷移します。
type SlotState int

const (
	StatePending SlotState = iota
	StateSucceeded
	StateFailed
)

// String は状態のログ表示用の名前を返します。
func (st SlotState) String() string {
	switch st {
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// ResultSlot はバッチ内の 1 項目の結果です。Index は入力順と一致します。
type ResultSlot struct {
	Index       int
	Scene       SceneSpec
	Instruction string
	State       SlotState
	Image       *GeneratedImage
	Reason      string
}

// Succeeded は成功状態の ResultSlot を生成します。
func Succeeded(req GenerationRequest, img *GeneratedImage) ResultSlot {
	return ResultSlot{
		Index:       req.Index,
		Scene:       req.Scene,
		Instruction: req.Instruction,
		State:       StateSucceeded,
		Image:       img,
	}
}

// Failed は失敗理由を刻んだ ResultSlot を生成します。
// 失敗は当該スロットに閉じ、バッチ全体を中断させません。
func Failed(req GenerationRequest, reason string) ResultSlot {
	return ResultSlot{
		Index:       req.Index,
		Scene:       req.Scene,
		Instruction: req.Instruction,
		State:       StateFailed,
		Reason:      reason,
	}
}

// Summary はスロットの状態をレポート表示用に 1 行へ整形します。
func (r ResultSlot) Summary() string {
	if r.State == StateFailed {
		return fmt.Sprintf("[%d] %s: %s", r.Index+1, r.State, r.Reason)
	}
	return fmt.Sprintf("[%d] %s", r.Index+1, r.State)
}
