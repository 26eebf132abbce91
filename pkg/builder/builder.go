package builder

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shouni/go-gemini-client/gemini"
	"github.com/shouni/go-http-kit/httpkit"
	"google.golang.org/genai"

	"github.com/shouni/go-recast-kit/pkg/asset"
	"github.com/shouni/go-recast-kit/pkg/extractor"
	"github.com/shouni/go-recast-kit/pkg/generator"
	"github.com/shouni/go-recast-kit/pkg/imagegen"
	"github.com/shouni/go-recast-kit/pkg/prompts"
	"github.com/shouni/go-recast-kit/pkg/runner"
	"github.com/shouni/go-recast-kit/pkg/scenes"
)

// InitializeAIClient はテキスト生成用の gemini クライアントを初期化します。
func InitializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	const defaultGeminiTemperature = float32(0.7)
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// InitializeLoader は参照画像ローダーを初期化します。
// URL 取得には httpkit の共通クライアントを、ローカルは os.ReadFile を使うのだ。
func InitializeLoader(httpTimeout time.Duration) (*asset.Loader, error) {
	httpClient := httpkit.New(httpTimeout)
	return asset.NewLoader(httpClient, os.ReadFile)
}

// InitializeAnalyzeRunner はビジョン抽出までの一式を組み立てます。
func InitializeAnalyzeRunner(ctx context.Context, apiKey, describeModel, imageModel string, httpTimeout time.Duration) (*runner.AnalyzeRunner, error) {
	loader, err := InitializeLoader(httpTimeout)
	if err != nil {
		return nil, err
	}

	vision, err := imagegen.NewClient(ctx, apiKey, describeModel, imageModel)
	if err != nil {
		return nil, err
	}

	ex, err := extractor.New(vision)
	if err != nil {
		return nil, fmt.Errorf("抽出器の初期化に失敗しました: %w", err)
	}

	return runner.NewAnalyzeRunner(loader, ex)
}

// InitializeBatchRunner は生成バッチの実行一式を組み立てます。
func InitializeBatchRunner(ctx context.Context, apiKey, describeModel, imageModel string, rateInterval time.Duration, sceneLimit int) (*runner.BatchRunner, error) {
	imageClient, err := imagegen.NewClient(ctx, apiKey, describeModel, imageModel)
	if err != nil {
		return nil, err
	}

	dispatcher, err := generator.NewBatchDispatcher(imageClient, rateInterval)
	if err != nil {
		return nil, fmt.Errorf("ディスパッチャの初期化に失敗しました: %w", err)
	}

	return runner.NewBatchRunner(
		prompts.NewScenePromptBuilder(),
		prompts.NewExpressionSampler(),
		dispatcher,
		sceneLimit,
	)
}

// InitializeSceneSuggester はシーン提案のテキスト生成クライアントを組み立てます。
func InitializeSceneSuggester(ctx context.Context, apiKey, model string) (*scenes.SceneSuggester, error) {
	aiClient, err := InitializeAIClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return scenes.NewSceneSuggester(aiClient, model)
}
