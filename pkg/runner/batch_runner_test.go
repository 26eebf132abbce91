package runner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shouni/go-recast-kit/pkg/domain"
	"github.com/shouni/go-recast-kit/pkg/generator"
	"github.com/shouni/go-recast-kit/pkg/prompts"
)

// fakeDispatcher は投入されたリクエストを記録し、全件成功を返します。
type fakeDispatcher struct {
	requests []domain.GenerationRequest
	opts     generator.DispatchOptions
	failAt   map[int]string
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, requests []domain.GenerationRequest, opts generator.DispatchOptions) ([]domain.ResultSlot, error) {
	f.requests = requests
	f.opts = opts

	slots := make([]domain.ResultSlot, len(requests))
	for i, req := range requests {
		if reason, ok := f.failAt[i]; ok {
			slots[i] = domain.Failed(req, reason)
		} else {
			slots[i] = domain.Succeeded(req, &domain.GeneratedImage{Data: []byte{byte(i)}, MimeType: "image/png"})
		}
	}
	return slots, nil
}

func readyAsset(role domain.Role, descriptor string) domain.ReferenceAsset {
	return domain.ReferenceAsset{
		Role:       role,
		Image:      domain.ReferenceImage{Data: []byte(role), MimeType: "image/png"},
		Descriptor: descriptor,
	}
}

func newTestRunner(t *testing.T, d Dispatcher, limit int) *BatchRunner {
	t.Helper()
	br, err := NewBatchRunner(
		prompts.NewScenePromptBuilder(),
		prompts.NewExpressionSamplerWithSource(func(n int) int { return 0 }),
		d,
		limit,
	)
	if err != nil {
		t.Fatalf("NewBatchRunner に失敗したのだ: %v", err)
	}
	return br
}

func TestBatchRunner_PreflightBlocksDispatch(t *testing.T) {
	tests := []struct {
		name    string
		assets  domain.AssetSet
		opts    BatchOptions
		wantErr error
	}{
		{
			name:    "主要被写体なしは即時エラー",
			assets:  domain.AssetSet{},
			wantErr: domain.ErrMissingPrimary,
		},
		{
			name: "記述子未抽出の任意スロットは即時エラー",
			assets: domain.AssetSet{
				domain.RolePrimary:    readyAsset(domain.RolePrimary, "a hero"),
				domain.RoleBackground: {Role: domain.RoleBackground, Image: domain.ReferenceImage{Data: []byte{1}}},
			},
			wantErr: nil, // IncompleteAssetError は型で検証する
		},
		{
			name: "空白だけのカスタムシーンは即時エラー",
			assets: domain.AssetSet{
				domain.RolePrimary: readyAsset(domain.RolePrimary, "a hero"),
			},
			opts:    BatchOptions{CustomSceneText: "   \n  "},
			wantErr: domain.ErrEmptySceneList,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := &fakeDispatcher{}
			br := newTestRunner(t, dispatcher, 10)

			_, err := br.Run(context.Background(), tt.assets, tt.opts)
			if err == nil {
				t.Fatalf("エラーを期待したが nil だったのだ")
			}
			if dispatcher.requests != nil {
				t.Errorf("検証エラーなのに生成が呼ばれてしまったのだ")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("期待値 %v, 実際の値 %v", tt.wantErr, err)
			}
		})
	}
}

func TestBatchRunner_DefaultScenes(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	br := newTestRunner(t, dispatcher, 10)

	assets := domain.AssetSet{
		domain.RolePrimary: readyAsset(domain.RolePrimary, "silver hair, green eyes"),
	}

	result, err := br.Run(context.Background(), assets, BatchOptions{})
	if err != nil {
		t.Fatalf("Run に失敗したのだ: %v", err)
	}

	if len(result.Slots) != 5 {
		t.Errorf("単体被写体の既定表は 5 シーンのはずが %d だったのだ", len(result.Slots))
	}
	if result.Truncated {
		t.Errorf("既定表で切り詰めフラグが立ったのだ")
	}
	if result.SucceededCount() != 5 {
		t.Errorf("全件成功のはずが %d 件だったのだ", result.SucceededCount())
	}
}

func TestBatchRunner_CustomScenesTruncation(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	br := newTestRunner(t, dispatcher, 5)

	assets := domain.AssetSet{
		domain.RolePrimary: readyAsset(domain.RolePrimary, "a hero"),
	}
	custom := "s1\ns2\ns3\ns4\ns5\ns6\ns7\ns8"

	result, err := br.Run(context.Background(), assets, BatchOptions{CustomSceneText: custom})
	if err != nil {
		t.Fatalf("Run に失敗したのだ: %v", err)
	}

	if !result.Truncated {
		t.Errorf("切り詰めフラグが立っていないのだ")
	}
	if len(result.Slots) != 5 {
		t.Fatalf("期待値 5, 実際の値 %d", len(result.Slots))
	}
	if result.Slots[0].Scene.Text != "s1" || result.Slots[4].Scene.Text != "s5" {
		t.Errorf("先頭優先の切り詰めになっていないのだ")
	}
}

func TestBatchRunner_DefaultScenesCappedSilently(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	br := newTestRunner(t, dispatcher, 3)

	assets := domain.AssetSet{
		domain.RolePrimary: readyAsset(domain.RolePrimary, "a hero"),
	}

	result, err := br.Run(context.Background(), assets, BatchOptions{})
	if err != nil {
		t.Fatalf("Run に失敗したのだ: %v", err)
	}

	if len(result.Slots) != 3 {
		t.Fatalf("上限 3 件に収まるはずが %d 件だったのだ", len(result.Slots))
	}
	if result.Truncated {
		t.Errorf("既定表由来のバッチで切り詰めフラグが立ったのだ")
	}
}

func TestBatchRunner_SingleReferenceEndToEnd(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	br := newTestRunner(t, dispatcher, 10)

	assets := domain.AssetSet{
		domain.RolePrimary: readyAsset(domain.RolePrimary, "a hero"),
	}

	result, err := br.Run(context.Background(), assets, BatchOptions{CustomSceneText: "standing still"})
	if err != nil {
		t.Fatalf("Run に失敗したのだ: %v", err)
	}

	if len(dispatcher.requests) != 1 {
		t.Fatalf("生成呼び出しは 1 件のはずが %d 件だったのだ", len(dispatcher.requests))
	}
	req := dispatcher.requests[0]
	if len(req.References) != 1 {
		t.Errorf("参照画像は 1 枚のはずが %d 枚だったのだ", len(req.References))
	}
	if !strings.Contains(req.Instruction, "photography studio") {
		t.Errorf("スタジオフォールバック節が含まれていないのだ:\n%s", req.Instruction)
	}
	if result.Slots[0].State != domain.StateSucceeded {
		t.Errorf("スロットが成功していないのだ: %v", result.Slots[0].State)
	}
}

func TestBatchRunner_FailedSlotsSurfaceInResult(t *testing.T) {
	dispatcher := &fakeDispatcher{failAt: map[int]string{2: "safety block"}}
	br := newTestRunner(t, dispatcher, 10)

	assets := domain.AssetSet{
		domain.RolePrimary: readyAsset(domain.RolePrimary, "a hero"),
	}

	result, err := br.Run(context.Background(), assets, BatchOptions{CustomSceneText: "a\nb\nc\nd\ne"})
	if err != nil {
		t.Fatalf("Run に失敗したのだ: %v", err)
	}
	if result.FailedCount() != 1 || result.SucceededCount() != 4 {
		t.Errorf("失敗 1 件・成功 4 件のはずが 失敗 %d・成功 %d だったのだ", result.FailedCount(), result.SucceededCount())
	}
	if result.Slots[2].Reason != "safety block" {
		t.Errorf("失敗理由が保存されていないのだ: %q", result.Slots[2].Reason)
	}
}

func TestBatchRunner_AngleAndStyleFlowIntoRequests(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	br := newTestRunner(t, dispatcher, 10)

	assets := domain.AssetSet{
		domain.RolePrimary: readyAsset(domain.RolePrimary, "a hero"),
	}

	_, err := br.Run(context.Background(), assets, BatchOptions{
		CustomSceneText: "running",
		CameraAngle:     "low-angle",
		AspectRatio:     "3:4",
		ArtStyle:        "watercolor",
	})
	if err != nil {
		t.Fatalf("Run に失敗したのだ: %v", err)
	}

	req := dispatcher.requests[0]
	if req.Scene.Text != "low-angle: running" {
		t.Errorf("カメラアングルが前置されていないのだ: %q", req.Scene.Text)
	}
	if !strings.Contains(req.Instruction, "ASPECT RATIO: 3:4") {
		t.Errorf("アスペクト比指示が含まれていないのだ")
	}
	if dispatcher.opts.AspectRatio != "3:4" {
		t.Errorf("ディスパッチオプションにアスペクト比が渡っていないのだ")
	}
	if !strings.Contains(req.Instruction, "watercolor") {
		t.Errorf("画風指定が含まれていないのだ")
	}
}
