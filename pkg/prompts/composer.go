package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-recast-kit/pkg/domain"
)

// StyleConfig はバッチ単位の画風・出力形式の設定です。
type StyleConfig struct {
	// AspectRatio は "3:4" 等のアスペクト比指定です。空なら指示を出しません。
	AspectRatio string
	// ArtStyle は明示的な画風名です。指定時は参照画像の画風より優先されます。
	ArtStyle string
}

// composeInput は各節ビルダーへ渡す入力一式です。
type composeInput struct {
	assets     domain.AssetSet
	scene      domain.SceneSpec
	expression string
	style      StyleConfig
}

// clauseBuilder はプロンプトの 1 節を構築します。
// false を返した節は出力から省かれます。
type clauseBuilder func(in composeInput) (string, bool)

// ScenePromptBuilder は参照アセットとシーン指示から生成指示を合成します。
// 節ビルダーの固定順リストを順に評価するだけの純粋な変換であり、
// 同一入力に対してバイト単位で同一の出力を返します。
type ScenePromptBuilder struct {
	clauses []clauseBuilder
}

// NewScenePromptBuilder は既定の節順序を持つビルダーを生成します。
// 順序: 同一性 → シーン → 小道具 → 環境 → 表情 → アスペクト比 → 画風 → 禁則。
func NewScenePromptBuilder() *ScenePromptBuilder {
	return &ScenePromptBuilder{
		clauses: []clauseBuilder{
			buildIdentityClause,
			buildSceneClause,
			buildPropClause,
			buildEnvironmentClause,
			buildExpressionClause,
			buildAspectClause,
			buildStyleClause,
			buildAvoidClause,
		},
	}
}

// Compose は 1 シーン分の生成指示を構築します。
func (pb *ScenePromptBuilder) Compose(assets domain.AssetSet, scene domain.SceneSpec, expression string, style StyleConfig) string {
	in := composeInput{assets: assets, scene: scene, expression: expression, style: style}

	var parts []string
	for _, build := range pb.clauses {
		if clause, ok := build(in); ok {
			parts = append(parts, clause)
		}
	}
	return strings.Join(parts, "\n\n")
}

// referenceIndex は RoleOrder 中の合成可能スロットにおける 1 始まりの位置を返します。
// この番号が生成リクエストに添付する参照画像の並び順と一致するのだ。
func referenceIndex(assets domain.AssetSet, role domain.Role) int {
	index := 0
	for _, r := range domain.RoleOrder {
		if !assets.IsReady(r) {
			continue
		}
		index++
		if r == role {
			return index
		}
	}
	return 0
}

// buildIdentityClause は被写体の同一性固定節を構築します。
// 第二被写体が準備済みかどうかで単体・二人構図の文面を切り替えます。
func buildIdentityClause(in composeInput) (string, bool) {
	primary, ok := in.assets.Get(domain.RolePrimary)
	if !ok || !primary.Ready() {
		return "", false
	}

	var sb strings.Builder
	if in.assets.IsReady(domain.RoleSecondary) {
		secondary, _ := in.assets.Get(domain.RoleSecondary)
		sb.WriteString("### SUBJECT IDENTITIES (STRICT, TWO SUBJECTS) ###\n")
		sb.WriteString(fmt.Sprintf("- SUBJECT [PRIMARY]: VISUAL_FEATURES: {%s}\n", primary.Descriptor))
		sb.WriteString(fmt.Sprintf("- SUBJECT [SECONDARY]: VISUAL_FEATURES: {%s}\n", secondary.Descriptor))
		sb.WriteString(fmt.Sprintf("- GROUND TRUTH: reference image #%d is PRIMARY, reference image #%d is SECONDARY. Reproduce both faces exactly as shown.\n", referenceIndex(in.assets, domain.RolePrimary), referenceIndex(in.assets, domain.RoleSecondary)))
		sb.WriteString("- Depict BOTH subjects together in the scene. Never merge or swap their features.")
	} else {
		sb.WriteString("### SUBJECT IDENTITY (STRICT) ###\n")
		sb.WriteString(fmt.Sprintf("- SUBJECT [PRIMARY]: VISUAL_FEATURES: {%s}\n", primary.Descriptor))
		sb.WriteString(fmt.Sprintf("- GROUND TRUTH: reference image #%d is the absolute identity reference. Reproduce the face exactly as shown.", referenceIndex(in.assets, domain.RolePrimary)))
	}
	return sb.String(), true
}

func buildSceneClause(in composeInput) (string, bool) {
	var sb strings.Builder
	sb.WriteString("### SCENE DIRECTION ###\n")
	sb.WriteString(fmt.Sprintf("- ACTION: %s\n", in.scene.Text))
	sb.WriteString("- " + CameraEmphasis)
	return sb.String(), true
}

func buildPropClause(in composeInput) (string, bool) {
	if !in.assets.IsReady(domain.RoleProp) {
		return "", false
	}
	prop, _ := in.assets.Get(domain.RoleProp)

	var sb strings.Builder
	sb.WriteString("### PROP (STRICT) ###\n")
	sb.WriteString(fmt.Sprintf("- ITEM: {%s}\n", prop.Descriptor))
	sb.WriteString(fmt.Sprintf("- The subject holds or uses this item. Its appearance must match reference image #%d exactly.", referenceIndex(in.assets, domain.RoleProp)))
	return sb.String(), true
}

func buildEnvironmentClause(in composeInput) (string, bool) {
	if !in.assets.IsReady(domain.RoleBackground) {
		// 背景未指定時は毎回同じ無地スタジオに固定する
		return NeutralStudioClause, true
	}
	bg, _ := in.assets.Get(domain.RoleBackground)

	var sb strings.Builder
	sb.WriteString("### ENVIRONMENT (STRICT) ###\n")
	sb.WriteString(fmt.Sprintf("- SETTING: {%s}\n", bg.Descriptor))
	sb.WriteString(fmt.Sprintf("- Recreate this location faithfully. Match reference image #%d.", referenceIndex(in.assets, domain.RoleBackground)))
	return sb.String(), true
}

func buildExpressionClause(in composeInput) (string, bool) {
	if in.expression == "" {
		return "", false
	}
	return fmt.Sprintf("### EXPRESSION ###\n- Every depicted subject shows %s.", in.expression), true
}

func buildAspectClause(in composeInput) (string, bool) {
	if in.style.AspectRatio == "" {
		return "", false
	}
	return fmt.Sprintf("### OUTPUT FORMAT ###\n- ASPECT RATIO: %s. Compose the frame for this ratio.", in.style.AspectRatio), true
}

func buildStyleClause(in composeInput) (string, bool) {
	var sb strings.Builder
	sb.WriteString("### ART STYLE ###\n")
	if in.style.ArtStyle != "" {
		sb.WriteString(fmt.Sprintf("- Render the entire image in: %s.\n", in.style.ArtStyle))
		sb.WriteString("- This style directive OVERRIDES the style of the reference images.")
	} else {
		sb.WriteString("- " + MatchReferenceStyle)
	}
	sb.WriteString("\n- " + CinematicTags)
	return sb.String(), true
}

func buildAvoidClause(in composeInput) (string, bool) {
	return fmt.Sprintf("### AVOID ###\n- %s", RecastNegativePrompt), true
}
