package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shouni/go-recast-kit/internal/config"
	"github.com/shouni/go-recast-kit/pkg/domain"
)

// opts は全サブコマンド共有のフラグ格納先なのだ。
var opts config.GenerateOptions

var rootCmd = &cobra.Command{
	Use:   "recast-kit",
	Short: "参照画像からキャラクターを保ったバッチ画像生成を行うのだ。",
	Long: `最大 4 枚の参照画像（主要被写体・第二被写体・小道具・背景）を解析して
視覚記述子を抽出し、シーンごとの生成指示を合成して画像バッチを並列生成するのだ。
1 シーンの失敗は他のシーンに波及しないのだ。`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- 参照画像スロット ---
	rootCmd.PersistentFlags().StringVar(&opts.PrimarySource, "primary", "", "主要被写体の参照画像（パス or URL）なのだ。必須スロットなのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.SecondarySource, "secondary", "", "第二被写体の参照画像（パス or URL）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.PropSource, "prop", "", "小道具の参照画像（パス or URL）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.BackgroundSource, "background", "", "背景の参照画像（パス or URL）なのだ。")

	// --- セッション・出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.SessionFile, "session-file", "s", config.DefaultSessionFile, "解析済みセッション JSON の保存・読込パスなのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.OutputImageDir, "output-image-dir", "i", config.DefaultLocalImageDir, "生成された画像を保存するディレクトリなのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", config.DefaultModel, "テキスト・ビジョンに使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", config.DefaultImageModel, "画像生成に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "参照画像取得のタイムアウトなのだ。")
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	// .env があれば読み込む。なければ環境変数だけで動くのだ
	_ = godotenv.Load()

	addAppFlags(rootCmd)
	rootCmd.AddCommand(
		analyzeCmd,
		generateCmd,
		suggestCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// sourcesFromOpts はフラグで指定された参照スロットをロール別にまとめるのだ。
func sourcesFromOpts() map[domain.Role]string {
	sources := make(map[domain.Role]string)
	for role, source := range map[domain.Role]string{
		domain.RolePrimary:    opts.PrimarySource,
		domain.RoleSecondary:  opts.SecondarySource,
		domain.RoleProp:       opts.PropSource,
		domain.RoleBackground: opts.BackgroundSource,
	} {
		if source != "" {
			sources[role] = source
		}
	}
	return sources
}
