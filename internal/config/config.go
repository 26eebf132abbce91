package config

import (
	"strconv"
	"time"

	"github.com/shouni/go-utils/envutil"

	"github.com/shouni/go-recast-kit/pkg/asset"
)

// デフォルト値の定義なのだ
const (
	DefaultModel           = "gemini-3-flash-preview"
	DefaultImageModel      = "gemini-3-pro-image-preview"
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultSceneLimit      = 10
	DefaultRateInterval    = 10 * time.Second
	DefaultSessionFile     = "output/" + asset.DefaultSessionFileName // analyze フェーズの成果物の保存先なのだ
	DefaultLocalImageDir   = "output/" + asset.DefaultImageDir        // 生成画像のデフォルト保存先なのだ
	DefaultSuggestionCount = 5
)

// Config はアプリケーション全体の環境設定（APIキーやモデル名）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	SceneLimit       int
	RateInterval     time.Duration

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	cfg := &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:      envutil.GetEnv("GEMINI_MODEL", DefaultModel),
		GeminiImageModel: envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		SceneLimit:       parsePositiveInt(envutil.GetEnv("RECAST_SCENE_LIMIT", ""), DefaultSceneLimit),
		RateInterval:     DefaultRateInterval,
	}
	return cfg
}

// parsePositiveInt は環境変数の整数値を解釈します。不正値は既定値に倒します。
func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// 参照画像スロット関連
	PrimarySource    string // --primary
	SecondarySource  string // --secondary
	PropSource       string // --prop
	BackgroundSource string // --background

	// シーン指定関連
	SceneFile   string // --scene-file
	CameraAngle string // --camera-angle
	SceneLimit  int    // --scene-limit

	// 生成結果の出力設定
	OutputImageDir string // --output-image-dir
	SessionFile    string // --session-file

	// 画風・出力形式
	AspectRatio string // --aspect-ratio
	ArtStyle    string // --art-style

	// AI挙動設定
	AIModel     string        // --model
	ImageModel  string        // --image-model
	HTTPTimeout time.Duration // --http-timeout

	// シーン提案
	SuggestionCount int // --count
}
