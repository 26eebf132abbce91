package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-recast-kit/internal/config"
	"github.com/shouni/go-recast-kit/pkg/builder"
	"github.com/shouni/go-recast-kit/pkg/domain"
	"github.com/shouni/go-recast-kit/pkg/runner"
)

// generateCmd は、解析済みの参照スロットからバッチ画像生成を実行するサブコマンドなのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "参照スロットからシーンバッチの画像を生成して保存するのだ。",
	Long: `セッション JSON（analyze の成果物）か --primary 等の指定から参照スロットを用意し、
シーンリストを確定して画像バッチを並列生成するのだ。
シーンは --scene-file で自由入力でき、なければ被写体数に合った既定のシーン表を使うのだ。`,
	RunE: generateCommand,
}

func init() {
	generateCmd.Flags().StringVarP(&opts.SceneFile, "scene-file", "f", "", "1 行 1 シーンのテキストファイル（'-'で標準入力）なのだ。")
	generateCmd.Flags().StringVar(&opts.CameraAngle, "camera-angle", "", "全シーン共通のカメラアングル修飾子なのだ。")
	generateCmd.Flags().StringVar(&opts.AspectRatio, "aspect-ratio", "", "出力画像のアスペクト比（例: 3:4）なのだ。")
	generateCmd.Flags().StringVar(&opts.ArtStyle, "art-style", "", "明示的な画風名なのだ。指定すると参照画像の画風より優先されるのだ。")
	generateCmd.Flags().IntVarP(&opts.SceneLimit, "scene-limit", "p", 0, "1 バッチの最大シーン数なのだ。0 なら環境設定に従うのだ。")
}

// generateCommand は、generate サブコマンドの実行ロジック本体なのだ。
func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 環境変数から基本設定をロード
	cfg := config.LoadConfig()
	cfg.Options = opts
	if opts.SceneLimit > 0 {
		cfg.SceneLimit = opts.SceneLimit
	}

	// 2. 参照スロットの用意。フラグ指定があればその場で解析、なければセッションを復元
	store := domain.NewSessionStore()
	sources := sourcesFromOpts()

	if len(sources) > 0 {
		ar, err := builder.InitializeAnalyzeRunner(ctx, cfg.GeminiAPIKey, opts.AIModel, opts.ImageModel, opts.HTTPTimeout)
		if err != nil {
			return err
		}
		for _, report := range ar.Run(ctx, store, sources) {
			if report.Err != nil {
				// 事前検証がスロット不備として検出するので、ここでは報告だけで続行する
				fmt.Printf("NG %-10s %v\n", report.Role, report.Err)
			}
		}
	} else {
		loader, err := builder.InitializeLoader(opts.HTTPTimeout)
		if err != nil {
			return err
		}
		if err := runner.LoadSession(ctx, opts.SessionFile, loader, store); err != nil {
			return fmt.Errorf("参照スロットが指定されておらず、セッションの復元にも失敗したのだ: %w", err)
		}
		slog.Info("セッションを復元したのだ", "path", opts.SessionFile)
	}

	// 3. シーンテキストの読み込み（任意）
	sceneText, err := readSceneFile(opts.SceneFile)
	if err != nil {
		return err
	}

	// 4. バッチ実行
	br, err := builder.InitializeBatchRunner(ctx, cfg.GeminiAPIKey, opts.AIModel, opts.ImageModel, cfg.RateInterval, cfg.SceneLimit)
	if err != nil {
		return err
	}

	slog.Info("バッチ生成モードを起動するのだ！",
		"image_model", opts.ImageModel,
		"scene_limit", cfg.SceneLimit,
		"output_image_dir", opts.OutputImageDir)

	result, saved, err := br.RunAndSave(ctx, store.Snapshot(), runner.BatchOptions{
		CustomSceneText: sceneText,
		CameraAngle:     opts.CameraAngle,
		AspectRatio:     opts.AspectRatio,
		ArtStyle:        opts.ArtStyle,
		OnResult: func(slot domain.ResultSlot) {
			fmt.Println(slot.Summary())
		},
	}, opts.OutputImageDir)
	if err != nil {
		return err
	}

	// 5. 最終レポート
	if result.Truncated {
		fmt.Printf("注意: シーンリストは上限 %d 件で切り詰められたのだ\n", cfg.SceneLimit)
	}
	fmt.Printf("完了: 成功 %d 件 / 失敗 %d 件, 保存 %d 枚\n", result.SucceededCount(), result.FailedCount(), len(saved))

	if result.FailedCount() > 0 {
		return fmt.Errorf("%d 件のシーンの生成に失敗したのだ", result.FailedCount())
	}
	return nil
}

// readSceneFile はシーンファイル（'-' なら標準入力）を読み込むのだ。
func readSceneFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("標準入力の読み込みに失敗したのだ: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("シーンファイルの読み込みに失敗したのだ (%s): %w", path, err)
	}
	return string(data), nil
}
