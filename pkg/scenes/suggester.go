package scenes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shouni/go-gemini-client/gemini"
	"github.com/shouni/go-recast-kit/pkg/domain"
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

const suggestionPromptTemplate = `You are a creative director planning a photo shoot.
The main subject is described as: {%s}
%s
Propose exactly %d distinct scene directions for generated images of this subject.
Each direction is ONE short line: an action or pose, optionally with a framing hint.
Respond with a JSON array of strings only. No numbering, no commentary.`

// SceneSuggester はテキストモデルでシーン案をブレインストーミングします。
// 得られた行はそのままカスタムシーンテキストとして Resolve に渡せます。
type SceneSuggester struct {
	aiClient gemini.GenerativeModel
	model    string
}

// NewSceneSuggester は SceneSuggester を生成します。
func NewSceneSuggester(aiClient gemini.GenerativeModel, model string) (*SceneSuggester, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient は必須です")
	}
	if model == "" {
		return nil, fmt.Errorf("モデル名は必須です")
	}
	return &SceneSuggester{aiClient: aiClient, model: model}, nil
}

// Suggest は現在のアセット構成に合うシーン案を count 件生成します。
func (ss *SceneSuggester) Suggest(ctx context.Context, assets domain.AssetSet, count int) ([]string, error) {
	if count < 1 {
		return nil, fmt.Errorf("提案件数が不正です: %d", count)
	}
	primary, ok := assets.Get(domain.RolePrimary)
	if !ok || !primary.Ready() {
		return nil, domain.ErrMissingPrimary
	}

	var extra strings.Builder
	if assets.IsReady(domain.RoleSecondary) {
		secondary, _ := assets.Get(domain.RoleSecondary)
		fmt.Fprintf(&extra, "A second subject appears in every scene: {%s}\n", secondary.Descriptor)
	}
	if assets.IsReady(domain.RoleProp) {
		prop, _ := assets.Get(domain.RoleProp)
		fmt.Fprintf(&extra, "Each scene should feature this item: {%s}\n", prop.Descriptor)
	}
	if assets.IsReady(domain.RoleBackground) {
		bg, _ := assets.Get(domain.RoleBackground)
		fmt.Fprintf(&extra, "All scenes take place in: {%s}\n", bg.Descriptor)
	}

	finalPrompt := fmt.Sprintf(suggestionPromptTemplate, primary.Descriptor, extra.String(), count)

	slog.Info("SceneSuggester: Calling Gemini API", "model", ss.model, "count", count)
	resp, err := ss.aiClient.GenerateContent(ctx, finalPrompt, ss.model)
	if err != nil {
		return nil, fmt.Errorf("シーン案の生成に失敗しました: %w", err)
	}

	lines, err := parseSceneLines(resp.Text)
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// parseSceneLines は AI 応答から文字列配列を取り出します。
// コードフェンス付き JSON を最優先し、見つからなければ最外の角括弧を探します。
func parseSceneLines(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	var rawJSON string

	matches := jsonBlockRegex.FindStringSubmatch(raw)
	if len(matches) > 1 {
		rawJSON = matches[1]
	} else {
		firstBracket := strings.Index(raw, "[")
		lastBracket := strings.LastIndex(raw, "]")
		if firstBracket != -1 && lastBracket != -1 && lastBracket > firstBracket {
			rawJSON = raw[firstBracket : lastBracket+1]
		} else {
			rawJSON = raw
		}
	}

	var lines []string
	if err := json.Unmarshal([]byte(rawJSON), &lines); err != nil {
		return nil, fmt.Errorf("AIからの応答に含まれるJSONの解析に失敗しました (応答抜粋: %q): %w", truncateString(raw, 200), err)
	}

	var clean []string
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			clean = append(clean, s)
		}
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("AIの応答に有効なシーン案が含まれていませんでした")
	}
	return clean, nil
}

func truncateString(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
