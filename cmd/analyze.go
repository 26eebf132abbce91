package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-recast-kit/internal/config"
	"github.com/shouni/go-recast-kit/pkg/builder"
	"github.com/shouni/go-recast-kit/pkg/domain"
	"github.com/shouni/go-recast-kit/pkg/runner"
)

// analyzeCmd は、参照画像の視覚記述子を抽出してセッションに保存するサブコマンドなのだ。
// 画像生成をスキップして、解析（Phase 1）だけを先にやっておけるのだ。
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "参照画像を解析して視覚記述子をセッションに保存するのだ。",
	Long: `指定された参照画像スロット（--primary 等）を順番に解析し、
各スロットの視覚記述子を抽出してセッション JSON に保存するのだ。
解析済みセッションがあれば、generate コマンドは抽出をやり直さずに済むのだ。`,
	RunE: analyzeCommand,
}

// analyzeCommand は、analyze サブコマンドの実行ロジック本体なのだ。
func analyzeCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sources := sourcesFromOpts()
	if len(sources) == 0 {
		return fmt.Errorf("解析する参照画像（--primary 等）を 1 つ以上指定してほしいのだ")
	}

	// 1. 環境変数から基本設定をロード
	cfg := config.LoadConfig()
	cfg.Options = opts

	slog.Info("解析モードを起動するのだ！", "slots", len(sources), "model", opts.AIModel)

	// 2. 解析一式を組み立てて実行
	ar, err := builder.InitializeAnalyzeRunner(ctx, cfg.GeminiAPIKey, opts.AIModel, opts.ImageModel, opts.HTTPTimeout)
	if err != nil {
		return err
	}

	store := domain.NewSessionStore()
	reports := ar.Run(ctx, store, sources)

	failed := 0
	for _, report := range reports {
		if report.Err != nil {
			failed++
			fmt.Printf("NG %-10s %s\n   %v\n", report.Role, report.Source, report.Err)
			continue
		}
		fmt.Printf("OK %-10s %s\n   %s\n", report.Role, report.Source, report.Descriptor)
	}

	// 3. 成功したスロットだけでもセッションに残す
	if failed < len(reports) {
		if err := runner.SaveSession(opts.SessionFile, store.Snapshot(), sources); err != nil {
			return err
		}
		slog.Info("セッションを保存したのだ", "path", opts.SessionFile)
	}

	if failed > 0 {
		return fmt.Errorf("%d 件のスロットの解析に失敗したのだ", failed)
	}
	return nil
}
