package generator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shouni/go-recast-kit/pkg/domain"
	"github.com/shouni/go-recast-kit/pkg/imagegen"
)

// ImageGenerator は 1 件分の画像生成呼び出しの口です。
type ImageGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest, opts imagegen.GenerateOptions) (*domain.GeneratedImage, error)
}

// ResultObserver はスロットが最終状態に達するたびに呼ばれます。
// バッチ内の複数ゴルーチンから順不同で呼ばれる可能性があります。
type ResultObserver func(slot domain.ResultSlot)

// DispatchOptions はバッチ単位の生成オプションです。
type DispatchOptions struct {
	AspectRatio string
	// OnResult が nil でなければ、各スロットの確定時に通知します。
	OnResult ResultObserver
}

// BatchDispatcher は生成リクエスト群を並列で投入し、
// 結果を入力と同じ長さ・同じ順序のスロット列として返します。
//
// 失敗の扱いが肝心なのだ。1 件の失敗はそのスロットに Failed として刻むだけで、
// 兄弟の呼び出しを中断させたりバッチ全体をエラーにしたりはしないのだ。
type BatchDispatcher struct {
	imageGen ImageGenerator
	limiter  *rate.Limiter
	inFlight atomic.Bool
}

// NewBatchDispatcher は BatchDispatcher を初期化します。
// rateInterval は呼び出し許可の最小間隔です。
func NewBatchDispatcher(imageGen ImageGenerator, rateInterval time.Duration) (*BatchDispatcher, error) {
	if imageGen == nil {
		return nil, fmt.Errorf("imageGen は必須です")
	}
	if rateInterval <= 0 {
		return nil, fmt.Errorf("レート間隔が不正です: %v", rateInterval)
	}
	return &BatchDispatcher{
		imageGen: imageGen,
		limiter:  rate.NewLimiter(rate.Every(rateInterval), 1),
	}, nil
}

// Dispatch はリクエスト群を並列実行します。戻り値のスロット数と順序は
// requests と常に一致し、各スロットは Succeeded か Failed のどちらかです。
// 実行中に再入された場合は ErrBatchInFlight を即座に返します。
func (d *BatchDispatcher) Dispatch(ctx context.Context, requests []domain.GenerationRequest, opts DispatchOptions) ([]domain.ResultSlot, error) {
	if !d.inFlight.CompareAndSwap(false, true) {
		return nil, domain.ErrBatchInFlight
	}
	defer d.inFlight.Store(false)

	slots := make([]domain.ResultSlot, len(requests))

	var notifyMu sync.Mutex
	notify := func(slot domain.ResultSlot) {
		if opts.OnResult == nil {
			return
		}
		notifyMu.Lock()
		defer notifyMu.Unlock()
		opts.OnResult(slot)
	}

	// errgroup は fan-out の土台としてだけ使い、ワーカーは常に nil を返す。
	// 1 件の失敗で egCtx がキャンセルされ兄弟が巻き込まれるのを避けるためなのだ。
	eg, egCtx := errgroup.WithContext(ctx)

	for i, req := range requests {
		eg.Go(func() error {
			logger := slog.With("slot", i+1, "total", len(requests))

			if err := d.limiter.Wait(egCtx); err != nil {
				slots[i] = domain.Failed(req, fmt.Sprintf("レート待機中に中断されました: %v", err))
				notify(slots[i])
				return nil
			}

			logger.Info("Starting image generation")
			startTime := time.Now()

			img, err := d.imageGen.Generate(egCtx, req, imagegen.GenerateOptions{AspectRatio: opts.AspectRatio})
			if err != nil {
				logger.Warn("Image generation failed", "error", err)
				slots[i] = domain.Failed(req, err.Error())
				notify(slots[i])
				return nil
			}

			logger.Info("Image generation completed", "duration", time.Since(startTime).Round(time.Millisecond))
			slots[i] = domain.Succeeded(req, img)
			notify(slots[i])
			return nil
		})
	}

	// ワーカーは nil しか返さないので、ここでエラーが出ることはない
	_ = eg.Wait()
	return slots, nil
}
