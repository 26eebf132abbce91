package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-recast-kit/pkg/asset"
	"github.com/shouni/go-recast-kit/pkg/domain"
	"github.com/shouni/go-recast-kit/pkg/generator"
	"github.com/shouni/go-recast-kit/pkg/prompts"
	"github.com/shouni/go-recast-kit/pkg/scenes"
)

// Dispatcher はバッチ投入の口です。generator.BatchDispatcher が実装します。
type Dispatcher interface {
	Dispatch(ctx context.Context, requests []domain.GenerationRequest, opts generator.DispatchOptions) ([]domain.ResultSlot, error)
}

// BatchOptions は 1 回のバッチ実行の入力です。
type BatchOptions struct {
	// CustomSceneText は 1 行 1 シーンの自由入力です。空なら既定表を使います。
	CustomSceneText string
	// CameraAngle は全シーン共通のカメラアングル修飾子です。
	CameraAngle string
	// AspectRatio / ArtStyle はバッチ単位の画風設定です。
	AspectRatio string
	ArtStyle    string
	// OnResult が nil でなければ、スロット確定のたびに通知します。
	OnResult generator.ResultObserver
}

// BatchResult はバッチ全体の結果です。
type BatchResult struct {
	Slots []domain.ResultSlot
	// Truncated はカスタム入力が上限で切り詰められたかどうかです。
	Truncated bool
}

// SucceededCount は成功スロット数を返します。
func (r *BatchResult) SucceededCount() int {
	n := 0
	for _, slot := range r.Slots {
		if slot.State == domain.StateSucceeded {
			n++
		}
	}
	return n
}

// FailedCount は失敗スロット数を返します。
func (r *BatchResult) FailedCount() int {
	return len(r.Slots) - r.SucceededCount()
}

// BatchRunner は事前検証からシーン解決、プロンプト合成、並列生成までを束ねます。
type BatchRunner struct {
	composer   *prompts.ScenePromptBuilder
	sampler    *prompts.ExpressionSampler
	dispatcher Dispatcher
	sceneLimit int
}

// NewBatchRunner は BatchRunner を初期化します。sceneLimit は 1 バッチの上限シーン数です。
func NewBatchRunner(composer *prompts.ScenePromptBuilder, sampler *prompts.ExpressionSampler, dispatcher Dispatcher, sceneLimit int) (*BatchRunner, error) {
	if composer == nil {
		return nil, fmt.Errorf("composer は必須です")
	}
	if sampler == nil {
		return nil, fmt.Errorf("sampler は必須です")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher は必須です")
	}
	if sceneLimit < 1 {
		return nil, fmt.Errorf("シーン数の上限が不正です: %d", sceneLimit)
	}
	return &BatchRunner{
		composer:   composer,
		sampler:    sampler,
		dispatcher: dispatcher,
		sceneLimit: sceneLimit,
	}, nil
}

// Run はバッチを実行します。致命的な検証エラーは 1 件も生成を呼び出す前に返します。
// 生成段階の失敗はスロット単位に閉じ、このメソッドのエラーにはなりません。
func (br *BatchRunner) Run(ctx context.Context, assets domain.AssetSet, opts BatchOptions) (*BatchResult, error) {
	// 1. 事前検証。スロット不備はここで止める
	if err := assets.Validate(); err != nil {
		return nil, err
	}

	// 2. シーンリストの確定
	specs, truncated, err := scenes.Resolve(scenes.ResolveInput{
		CustomText:  opts.CustomSceneText,
		CameraAngle: opts.CameraAngle,
		DualSubject: assets.IsReady(domain.RoleSecondary),
		Limit:       br.sceneLimit,
	})
	if err != nil {
		return nil, err
	}
	if truncated {
		slog.Warn("シーンリストを上限で切り詰めました", "limit", br.sceneLimit)
	}

	// 3. プロンプト合成。記述子と参照画像はこの時点の値で固定される
	references := assets.OrderedImages()
	style := prompts.StyleConfig{AspectRatio: opts.AspectRatio, ArtStyle: opts.ArtStyle}

	requests := make([]domain.GenerationRequest, 0, len(specs))
	for i, spec := range specs {
		expression := br.sampler.Sample()
		requests = append(requests, domain.GenerationRequest{
			Index:       i,
			Scene:       spec,
			Instruction: br.composer.Compose(assets, spec, expression, style),
			References:  references,
		})
	}

	slog.Info("バッチ生成を開始します", "scenes", len(requests), "references", len(references))

	// 4. 並列投入
	slots, err := br.dispatcher.Dispatch(ctx, requests, generator.DispatchOptions{
		AspectRatio: opts.AspectRatio,
		OnResult:    opts.OnResult,
	})
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Slots: slots, Truncated: truncated}
	slog.Info("バッチ生成が完了しました", "succeeded", result.SucceededCount(), "failed", result.FailedCount())
	return result, nil
}

// RunAndSave はバッチを実行し、成功スロットの画像を連番パスへ保存します。
// 保存されたパスの一覧を返します。失敗スロットは保存対象外です。
func (br *BatchRunner) RunAndSave(ctx context.Context, assets domain.AssetSet, opts BatchOptions, outputDir string) (*BatchResult, []string, error) {
	result, err := br.Run(ctx, assets, opts)
	if err != nil {
		return nil, nil, err
	}

	basePath, err := asset.ResolveOutputPath(outputDir, asset.DefaultResultFileName)
	if err != nil {
		return result, nil, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}

	var saved []string
	for _, slot := range result.Slots {
		if slot.State != domain.StateSucceeded || slot.Image == nil {
			continue
		}

		path, err := asset.GenerateIndexedPath(basePath, slot.Index+1)
		if err != nil {
			return result, saved, fmt.Errorf("連番パスの生成に失敗しました: %w", err)
		}
		path = withMimeExtension(path, slot.Image.MimeType)

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return result, saved, fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
		}
		if err := os.WriteFile(path, slot.Image.Data, 0o644); err != nil {
			return result, saved, fmt.Errorf("画像の保存に失敗しました (%s): %w", path, err)
		}

		slog.Info("画像を保存しました", "slot", slot.Index+1, "path", path)
		saved = append(saved, path)
	}
	return result, saved, nil
}

// withMimeExtension は MIME タイプに応じて拡張子を揃えます。
func withMimeExtension(path, mimeType string) string {
	var ext string
	switch mimeType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	default:
		ext = ".png"
	}
	if strings.EqualFold(filepath.Ext(path), ext) {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
