package prompts

import (
	"math/rand/v2"

	"github.com/shouni/go-recast-kit/pkg/domain"
)

// DescriptorInstructionFor はロールに応じた記述子抽出指示を返します。
// 被写体ロールは顔優先の構造化記述、小道具は素材と形状、背景は場所と光なのだ。
func DescriptorInstructionFor(role domain.Role) string {
	switch {
	case role.IsSubject():
		return CharacterDescriptorInstruction
	case role == domain.RoleProp:
		return PropDescriptorInstruction
	default:
		return BackgroundDescriptorInstruction
	}
}

// ExpressionSampler は表情語彙から一様に 1 語をサンプリングします。
// インデックス選択関数を差し替え可能にして、テストで出力を固定できるようにしています。
type ExpressionSampler struct {
	pick func(n int) int
}

// NewExpressionSampler は math/rand/v2 を使う標準のサンプラーを生成します。
func NewExpressionSampler() *ExpressionSampler {
	return &ExpressionSampler{pick: rand.IntN}
}

// NewExpressionSamplerWithSource は選択関数を注入したサンプラーを生成します。
func NewExpressionSamplerWithSource(pick func(n int) int) *ExpressionSampler {
	return &ExpressionSampler{pick: pick}
}

// Sample は語彙から 1 つの表情を返します。シーンごとに呼び出され、
// 同一バッチ内でもシーン間で共有されません。
func (s *ExpressionSampler) Sample() string {
	return ExpressionVocabulary[s.pick(len(ExpressionVocabulary))]
}
