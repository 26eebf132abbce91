// Package imagegen は Gemini API への薄いアダプタです。
// 参照画像つきのマルチモーダル呼び出し（記述子抽出・画像生成）だけを担当し、
// プロンプトの中身やバッチ制御には関与しません。
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/go-recast-kit/pkg/domain"
)

// ErrNoImagePayload は、呼び出し自体は成功したが応答に画像が含まれていなかったことを表します。
var ErrNoImagePayload = errors.New("no image in response")

// GenerateOptions は 1 回の画像生成呼び出しのオプションです。
type GenerateOptions struct {
	// AspectRatio は "3:4" 等の出力比率です。空なら API 既定に任せます。
	AspectRatio string
}

// Client は genai SDK を包む薄いクライアントです。
type Client struct {
	client        *genai.Client
	describeModel string
	imageModel    string
}

// NewClient は Gemini API クライアントを初期化します。
func NewClient(ctx context.Context, apiKey, describeModel, imageModel string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("APIキーは必須です")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini クライアントの初期化に失敗しました: %w", err)
	}

	return &Client{
		client:        client,
		describeModel: describeModel,
		imageModel:    imageModel,
	}, nil
}

// Describe は参照画像 1 枚をビジョンモデルに渡し、テキスト記述を得ます。
func (c *Client) Describe(ctx context.Context, img domain.ReferenceImage, instruction string) (string, error) {
	if img.IsEmpty() {
		return "", fmt.Errorf("記述対象の画像データが空です")
	}

	parts := []*genai.Part{
		genai.NewPartFromText(instruction),
		{InlineData: &genai.Blob{MIMEType: img.MimeType, Data: img.Data}},
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	res, err := c.client.Models.GenerateContent(ctx, c.describeModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("ビジョンモデルの呼び出しに失敗しました: %w", err)
	}

	text := collectText(res)
	if text == "" {
		return "", fmt.Errorf("ビジョンモデルの応答にテキストが含まれていませんでした")
	}
	return text, nil
}

// Generate は指示文と RoleOrder 順の参照画像群から 1 枚の画像を生成します。
// 応答に画像パートがなければ ErrNoImagePayload を返します。
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest, opts GenerateOptions) (*domain.GeneratedImage, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Instruction)}
	for _, ref := range req.References {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: ref.MimeType, Data: ref.Data},
		})
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	if opts.AspectRatio != "" {
		config.ImageConfig = &genai.ImageConfig{AspectRatio: opts.AspectRatio}
	}

	res, err := c.client.Models.GenerateContent(ctx, c.imageModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("画像生成の呼び出しに失敗しました: %w", err)
	}

	if img := firstImagePart(res); img != nil {
		return img, nil
	}
	return nil, ErrNoImagePayload
}

// firstImagePart は応答候補から最初の画像パートを取り出します。
func firstImagePart(res *genai.GenerateContentResponse) *domain.GeneratedImage {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range res.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &domain.GeneratedImage{
				Data:     part.InlineData.Data,
				MimeType: part.InlineData.MIMEType,
			}
		}
	}
	return nil
}

// collectText は応答候補のテキストパートを連結します。
func collectText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
