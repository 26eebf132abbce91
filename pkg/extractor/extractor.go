package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/shouni/go-recast-kit/pkg/domain"
	"github.com/shouni/go-recast-kit/pkg/prompts"
)

const (
	// descriptorCacheTTL は同一画像の再抽出をキャッシュで吸収する期間です。
	descriptorCacheTTL = 30 * time.Minute
	cacheCleanupPeriod = 10 * time.Minute
)

// VisionDescriber は参照画像からテキスト記述を得る呼び出し口です。
type VisionDescriber interface {
	Describe(ctx context.Context, img domain.ReferenceImage, instruction string) (string, error)
}

// DescriptorExtractor は参照スロットの記述子抽出を担当します。
// 同一画像への連続リクエストは singleflight で 1 回にまとめ、
// 抽出済みの結果はキャッシュから返すのだ。
type DescriptorExtractor struct {
	vision VisionDescriber
	cache  *cache.Cache
	group  singleflight.Group
}

// New は DescriptorExtractor を生成します。
func New(vision VisionDescriber) (*DescriptorExtractor, error) {
	if vision == nil {
		return nil, fmt.Errorf("vision クライアントは必須です")
	}
	return &DescriptorExtractor{
		vision: vision,
		cache:  cache.New(descriptorCacheTTL, cacheCleanupPeriod),
	}, nil
}

// Extract はスロットの画像からロールに応じた記述子を抽出します。
// 失敗は ExtractionError として当該スロットに閉じ、他スロットへ波及しません。
func (e *DescriptorExtractor) Extract(ctx context.Context, asset domain.ReferenceAsset) (string, error) {
	if !asset.HasImage() {
		return "", &domain.ExtractionError{Role: asset.Role, Err: domain.ErrNoImage}
	}

	key := cacheKey(asset)
	if cached, ok := e.cache.Get(key); ok {
		slog.Debug("DescriptorExtractor: cache hit", "role", asset.Role)
		return cached.(string), nil
	}

	value, err, _ := e.group.Do(key, func() (any, error) {
		instruction := prompts.DescriptorInstructionFor(asset.Role)
		slog.Info("DescriptorExtractor: extracting", "role", asset.Role, "bytes", len(asset.Image.Data))

		text, err := e.vision.Describe(ctx, asset.Image, instruction)
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", fmt.Errorf("抽出結果が空でした")
		}

		e.cache.Set(key, text, cache.DefaultExpiration)
		return text, nil
	})
	if err != nil {
		return "", &domain.ExtractionError{Role: asset.Role, Err: err}
	}
	return value.(string), nil
}

// cacheKey は画像バイト列のハッシュとロールからキーを作ります。
// 同じ画像でもロールが違えば抽出指示が違うため、別キーになります。
func cacheKey(asset domain.ReferenceAsset) string {
	sum := sha256.Sum256(asset.Image.Data)
	return string(asset.Role) + ":" + hex.EncodeToString(sum[:])
}
