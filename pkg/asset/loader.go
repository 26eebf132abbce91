package asset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shouni/go-recast-kit/pkg/domain"
)

// HTTPDoer は URL 参照の取得に使う HTTP クライアントの口です。
// httpkit.ClientInterface をそのまま渡せます。
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// maxReferenceBytes は参照画像 1 枚あたりの上限サイズです。
const maxReferenceBytes = 20 << 20

// Loader はローカルパスまたは URL から参照画像を読み込みます。
type Loader struct {
	httpClient HTTPDoer
	readFile   func(name string) ([]byte, error)
}

// NewLoader は Loader を生成します。
func NewLoader(httpClient HTTPDoer, readFile func(name string) ([]byte, error)) (*Loader, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient は必須です")
	}
	if readFile == nil {
		return nil, fmt.Errorf("readFile は必須です")
	}
	return &Loader{httpClient: httpClient, readFile: readFile}, nil
}

// Load は source（ローカルパスか http(s) URL）から画像を読み込み、
// バイト列の先頭から MIME タイプを判定して ReferenceImage を返します。
func (l *Loader) Load(ctx context.Context, source string) (domain.ReferenceImage, error) {
	var (
		data []byte
		err  error
	)
	if isRemote(source) {
		data, err = l.fetch(ctx, source)
	} else {
		data, err = l.readFile(source)
	}
	if err != nil {
		return domain.ReferenceImage{}, fmt.Errorf("参照画像の読み込みに失敗しました (%s): %w", source, err)
	}
	if len(data) == 0 {
		return domain.ReferenceImage{}, fmt.Errorf("参照画像が空です (%s)", source)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return domain.ReferenceImage{}, fmt.Errorf("画像ではないデータです (%s): %s", source, mimeType)
	}

	return domain.ReferenceImage{Data: data, MimeType: mimeType}, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP ステータスが異常です: %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxReferenceBytes))
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
