package scenes

import (
	"strings"
	"testing"
)

func TestParseSceneLines(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{
			name: "コードフェンス付きJSON",
			raw:  "Here you go:\n```json\n[\"scene one\", \"scene two\"]\n```",
			want: []string{"scene one", "scene two"},
		},
		{
			name: "フェンスなしでも角括弧から復元できる",
			raw:  "Sure! [\"walking\", \"smiling\"] hope that helps",
			want: []string{"walking", "smiling"},
		},
		{
			name: "応答全体が素のJSON",
			raw:  `["a", "b", "c"]`,
			want: []string{"a", "b", "c"},
		},
		{
			name: "空要素は除去される",
			raw:  `["  ", "running", ""]`,
			want: []string{"running"},
		},
		{
			name:    "JSONでない応答はエラー",
			raw:     "I cannot do that.",
			wantErr: true,
		},
		{
			name:    "有効な要素が残らなければエラー",
			raw:     `["", "  "]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSceneLines(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("エラーを期待したが nil だったのだ")
				}
				return
			}
			if err != nil {
				t.Fatalf("エラーは発生しないはずなのだ: %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("期待値 %v, 実際の値 %v", tt.want, got)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("abcdef", 3); got != "abc..." {
		t.Errorf("期待値 %q, 実際の値 %q", "abc...", got)
	}
	if got := truncateString("ab", 3); got != "ab" {
		t.Errorf("期待値 %q, 実際の値 %q", "ab", got)
	}
}
