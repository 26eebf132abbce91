package prompts

import (
	"strings"
	"testing"

	"github.com/shouni/go-recast-kit/pkg/domain"
)

func readyAsset(role domain.Role, descriptor string) domain.ReferenceAsset {
	return domain.ReferenceAsset{
		Role:       role,
		Image:      domain.ReferenceImage{Data: []byte{1, 2}, MimeType: "image/png"},
		Descriptor: descriptor,
	}
}

func primaryOnlySet() domain.AssetSet {
	return domain.AssetSet{
		domain.RolePrimary: readyAsset(domain.RolePrimary, "silver hair, sharp green eyes"),
	}
}

func TestScenePromptBuilder_SubjectBranches(t *testing.T) {
	pb := NewScenePromptBuilder()
	scene := domain.SceneSpec{Text: "full-body: standing in the rain"}

	t.Run("単体被写体では単体構図の文面になる", func(t *testing.T) {
		got := pb.Compose(primaryOnlySet(), scene, "a calm, composed expression", StyleConfig{})

		if !strings.Contains(got, "### SUBJECT IDENTITY (STRICT) ###") {
			t.Errorf("単体被写体節が含まれていないのだ:\n%s", got)
		}
		if strings.Contains(got, "SECONDARY") {
			t.Errorf("第二被写体が不在なのに SECONDARY への言及があるのだ")
		}
	})

	t.Run("第二被写体が準備済みなら二人構図の文面になる", func(t *testing.T) {
		set := primaryOnlySet()
		set[domain.RoleSecondary] = readyAsset(domain.RoleSecondary, "short black hair, round glasses")

		got := pb.Compose(set, scene, "a calm, composed expression", StyleConfig{})

		if !strings.Contains(got, "### SUBJECT IDENTITIES (STRICT, TWO SUBJECTS) ###") {
			t.Errorf("二人構図の節が含まれていないのだ:\n%s", got)
		}
		if !strings.Contains(got, "reference image #2 is SECONDARY") {
			t.Errorf("第二被写体の参照番号指定が欠けているのだ:\n%s", got)
		}
	})
}

func TestScenePromptBuilder_OptionalClauses(t *testing.T) {
	pb := NewScenePromptBuilder()
	scene := domain.SceneSpec{Text: "close-up: laughing"}

	t.Run("小道具と背景が未指定ならスタジオフォールバック", func(t *testing.T) {
		got := pb.Compose(primaryOnlySet(), scene, "a confident smirk", StyleConfig{})

		if strings.Contains(got, "### PROP") {
			t.Errorf("小道具未指定なのに PROP 節があるのだ")
		}
		if !strings.Contains(got, "photography studio") {
			t.Errorf("スタジオフォールバック節が欠けているのだ:\n%s", got)
		}
	})

	t.Run("小道具と背景が準備済みなら両方の節が入る", func(t *testing.T) {
		set := primaryOnlySet()
		set[domain.RoleProp] = readyAsset(domain.RoleProp, "a worn leather satchel")
		set[domain.RoleBackground] = readyAsset(domain.RoleBackground, "a rainy neon-lit alley")

		got := pb.Compose(set, scene, "a confident smirk", StyleConfig{})

		if !strings.Contains(got, "a worn leather satchel") {
			t.Errorf("小道具の記述子が含まれていないのだ")
		}
		if !strings.Contains(got, "### ENVIRONMENT (STRICT) ###") {
			t.Errorf("背景ロック節が含まれていないのだ")
		}
		if strings.Contains(got, "photography studio") {
			t.Errorf("背景指定済みなのにスタジオフォールバックが残っているのだ")
		}
		// 参照番号は primary=1, prop=2, background=3 の順になる
		if !strings.Contains(got, "reference image #2 exactly") {
			t.Errorf("小道具の参照番号が想定と違うのだ:\n%s", got)
		}
	})
}

func TestScenePromptBuilder_StyleDirectives(t *testing.T) {
	pb := NewScenePromptBuilder()
	scene := domain.SceneSpec{Text: "waist-up: waving"}

	t.Run("明示スタイルは参照画風を上書きする", func(t *testing.T) {
		got := pb.Compose(primaryOnlySet(), scene, "a gentle, warm smile", StyleConfig{ArtStyle: "watercolor illustration"})

		if !strings.Contains(got, "watercolor illustration") {
			t.Errorf("明示スタイルが含まれていないのだ")
		}
		if !strings.Contains(got, "OVERRIDES") {
			t.Errorf("上書き宣言が欠けているのだ")
		}
	})

	t.Run("スタイル未指定なら参照画像の画風に合わせる", func(t *testing.T) {
		got := pb.Compose(primaryOnlySet(), scene, "a gentle, warm smile", StyleConfig{})

		if !strings.Contains(got, MatchReferenceStyle) {
			t.Errorf("参照追従の画風指示が欠けているのだ")
		}
	})

	t.Run("アスペクト比は指定時のみ指示される", func(t *testing.T) {
		with := pb.Compose(primaryOnlySet(), scene, "a gentle, warm smile", StyleConfig{AspectRatio: "3:4"})
		without := pb.Compose(primaryOnlySet(), scene, "a gentle, warm smile", StyleConfig{})

		if !strings.Contains(with, "ASPECT RATIO: 3:4") {
			t.Errorf("アスペクト比指示が欠けているのだ")
		}
		if strings.Contains(without, "ASPECT RATIO") {
			t.Errorf("未指定なのにアスペクト比指示があるのだ")
		}
	})
}

func TestScenePromptBuilder_Deterministic(t *testing.T) {
	pb := NewScenePromptBuilder()
	set := primaryOnlySet()
	set[domain.RoleProp] = readyAsset(domain.RoleProp, "a red umbrella")
	scene := domain.SceneSpec{Text: "low-angle: jumping over a puddle"}
	style := StyleConfig{AspectRatio: "1:1", ArtStyle: "flat vector art"}

	first := pb.Compose(set, scene, "an excited, energetic grin", style)
	second := pb.Compose(set, scene, "an excited, energetic grin", style)

	if first != second {
		t.Errorf("同一入力で出力がバイト一致しないのだ")
	}
}

func TestExpressionSampler_InjectedSource(t *testing.T) {
	sampler := NewExpressionSamplerWithSource(func(n int) int { return 3 })

	if got := sampler.Sample(); got != ExpressionVocabulary[3] {
		t.Errorf("期待値 %q, 実際の値 %q", ExpressionVocabulary[3], got)
	}
}

func TestExpressionVocabulary_Size(t *testing.T) {
	if len(ExpressionVocabulary) != 10 {
		t.Errorf("表情語彙は 10 語のはずが %d 語なのだ", len(ExpressionVocabulary))
	}

	sampler := NewExpressionSampler()
	for i := 0; i < 50; i++ {
		if sampler.Sample() == "" {
			t.Fatalf("空の表情がサンプリングされたのだ")
		}
	}
}
