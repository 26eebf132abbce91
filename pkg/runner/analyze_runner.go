package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-recast-kit/pkg/asset"
	"github.com/shouni/go-recast-kit/pkg/domain"
)

// Extractor は記述子抽出の口です。extractor.DescriptorExtractor が実装します。
type Extractor interface {
	Extract(ctx context.Context, a domain.ReferenceAsset) (string, error)
}

// AnalyzeReport は 1 スロット分の解析結果です。Err が nil なら成功です。
type AnalyzeReport struct {
	Role       domain.Role
	Source     string
	Descriptor string
	Err        error
}

// AnalyzeRunner は参照画像の読み込みと記述子抽出をスロット単位で実行します。
// 抽出はユーザー操作に対応して直列で行い、失敗は当該スロットに閉じます。
type AnalyzeRunner struct {
	loader    *asset.Loader
	extractor Extractor
}

// NewAnalyzeRunner は AnalyzeRunner を初期化します。
func NewAnalyzeRunner(loader *asset.Loader, ex Extractor) (*AnalyzeRunner, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader は必須です")
	}
	if ex == nil {
		return nil, fmt.Errorf("extractor は必須です")
	}
	return &AnalyzeRunner{loader: loader, extractor: ex}, nil
}

// Run は sources に指定されたスロットを RoleOrder の順に処理します。
// 各スロットについて、読み込み → ストア登録 → 抽出 → 記述子の紐付けを行い、
// 途中で失敗したスロットはレポートにエラーを刻んで次のスロットへ進みます。
func (ar *AnalyzeRunner) Run(ctx context.Context, store *domain.SessionStore, sources map[domain.Role]string) []AnalyzeReport {
	var reports []AnalyzeReport

	for _, role := range domain.RoleOrder {
		source, ok := sources[role]
		if !ok || source == "" {
			continue
		}

		report := AnalyzeReport{Role: role, Source: source}
		report.Descriptor, report.Err = ar.analyzeSlot(ctx, store, role, source)
		if report.Err != nil {
			slog.Warn("スロットの解析に失敗しました", "role", role, "error", report.Err)
		} else {
			slog.Info("スロットの解析が完了しました", "role", role, "descriptor_len", len(report.Descriptor))
		}
		reports = append(reports, report)
	}
	return reports
}

func (ar *AnalyzeRunner) analyzeSlot(ctx context.Context, store *domain.SessionStore, role domain.Role, source string) (string, error) {
	img, err := ar.loader.Load(ctx, source)
	if err != nil {
		return "", err
	}
	if err := store.Populate(role, img); err != nil {
		return "", err
	}

	descriptor, err := ar.extractor.Extract(ctx, domain.ReferenceAsset{Role: role, Image: img})
	if err != nil {
		return "", err
	}
	if err := store.AttachDescriptor(role, descriptor); err != nil {
		return "", err
	}
	return descriptor, nil
}
