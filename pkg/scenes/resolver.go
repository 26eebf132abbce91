package scenes

import (
	"fmt"
	"strings"

	"github.com/shouni/go-recast-kit/pkg/domain"
)

// singleSubjectScenes は被写体が 1 人のときの既定シーン表です。
var singleSubjectScenes = []string{
	"full-body shot, standing confidently and looking at the camera",
	"waist-up shot, waving cheerfully at the viewer",
	"walking through the scene, captured mid-stride from the side",
	"sitting casually and relaxing, three-quarter view",
	"dynamic action pose, leaping with motion blur on the background",
}

// dualSubjectScenes は被写体が 2 人のときの既定シーン表です。
// 単体用の表とは内容を重複させないこと。
var dualSubjectScenes = []string{
	"the two subjects standing back to back, arms crossed, facing the camera",
	"the two subjects walking together and chatting, side view",
	"one subject pointing at something off-frame while the other looks on in surprise",
	"the two subjects sharing a high-five, captured at the moment of contact",
	"the two subjects sitting together and laughing, waist-up shot",
}

// ResolveInput はシーンリスト解決の入力です。
type ResolveInput struct {
	// CustomText は利用者入力のシーン本文です。1 行 1 シーン。空なら既定表を使います。
	CustomText string
	// CameraAngle は任意のカメラアングル修飾子です。各シーン本文の前に付きます。
	CameraAngle string
	// DualSubject は第二被写体が合成可能な状態かどうかです。既定表の選択に使います。
	DualSubject bool
	// Limit は 1 バッチの上限シーン数です。1 未満は不正です。
	Limit int
}

// Resolve はシーンリストを確定します。カスタム入力があれば行分割して採用し、
// なければ被写体数に応じた既定表を返します。上限超過分は先頭優先で切り詰めますが、
// 第 2 戻り値で切り詰めを報告するのはカスタム入力由来のリストに限ります。
// 既定表が上限を超えた場合は黙って切り詰めます。
func Resolve(in ResolveInput) ([]domain.SceneSpec, bool, error) {
	if in.Limit < 1 {
		return nil, false, fmt.Errorf("シーン数の上限が不正です: %d", in.Limit)
	}

	lines := splitSceneLines(in.CustomText)
	if strings.TrimSpace(in.CustomText) != "" && len(lines) == 0 {
		// 入力はあったが有効な行が 1 つもない
		return nil, false, domain.ErrEmptySceneList
	}

	fromCustom := len(lines) > 0
	if !fromCustom {
		if in.DualSubject {
			lines = append(lines, dualSubjectScenes...)
		} else {
			lines = append(lines, singleSubjectScenes...)
		}
	}

	// 上限超過は先頭優先で切り詰める。切り詰めの報告はカスタム入力のときだけで、
	// 既定表は上限が表より小さくても黙って切り詰める
	truncated := false
	if len(lines) > in.Limit {
		lines = lines[:in.Limit]
		truncated = fromCustom
	}

	specs := make([]domain.SceneSpec, 0, len(lines))
	for _, line := range lines {
		specs = append(specs, domain.SceneSpec{Text: applyAngle(in.CameraAngle, line)})
	}
	if len(specs) == 0 {
		return nil, false, domain.ErrEmptySceneList
	}
	return specs, truncated, nil
}

// splitSceneLines は本文を行に分割し、空行と前後空白を取り除きます。
func splitSceneLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

// applyAngle はカメラアングル修飾子を "<angle>: <text>" の形で前置します。
func applyAngle(angle, text string) string {
	angle = strings.TrimSpace(angle)
	if angle == "" {
		return text
	}
	return fmt.Sprintf("%s: %s", angle, text)
}
