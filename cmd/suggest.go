package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-recast-kit/internal/config"
	"github.com/shouni/go-recast-kit/pkg/builder"
	"github.com/shouni/go-recast-kit/pkg/domain"
	"github.com/shouni/go-recast-kit/pkg/runner"
)

// suggestCmd は、現在のアセット構成に合うシーン案をブレインストーミングするサブコマンドなのだ。
// 出力は 1 行 1 シーンなので、そのまま generate の --scene-file に流し込めるのだ。
var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "解析済みの参照スロットに合うシーン案を提案するのだ。",
	Long: `セッション JSON から参照スロットを復元し、記述子をもとに
テキストモデルへシーン案のブレインストーミングを依頼するのだ。
提案は 1 行 1 シーンで出力されるので、ファイルに保存して generate に渡せるのだ。`,
	RunE: suggestCommand,
}

func init() {
	suggestCmd.Flags().IntVarP(&opts.SuggestionCount, "count", "n", config.DefaultSuggestionCount, "提案するシーン案の件数なのだ。")
}

// suggestCommand は、suggest サブコマンドの実行ロジック本体なのだ。
func suggestCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg := config.LoadConfig()
	cfg.Options = opts

	// セッションから参照スロットを復元する
	loader, err := builder.InitializeLoader(opts.HTTPTimeout)
	if err != nil {
		return err
	}
	store := domain.NewSessionStore()
	if err := runner.LoadSession(ctx, opts.SessionFile, loader, store); err != nil {
		return fmt.Errorf("セッションの復元に失敗したのだ。先に analyze を実行してほしいのだ: %w", err)
	}

	ss, err := builder.InitializeSceneSuggester(ctx, cfg.GeminiAPIKey, opts.AIModel)
	if err != nil {
		return err
	}

	lines, err := ss.Suggest(ctx, store.Snapshot(), opts.SuggestionCount)
	if err != nil {
		return err
	}

	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
