package domain

// Role は参照画像スロットの種別を表します。
type Role string

const (
	// RolePrimary は必須の主要被写体スロットです。
	RolePrimary Role = "primary"
	// RoleSecondary は任意の第二被写体スロットです。
	RoleSecondary Role = "secondary"
	// RoleProp は任意の小道具スロットです。
	RoleProp Role = "prop"
	// RoleBackground は任意の背景スロットです。
	RoleBackground Role = "background"
)

// RoleOrder は生成リクエストに参照画像を並べる際の固定順序です。
// この順序がプロンプト中の "reference image #N" の番号と対応するのだ。
var RoleOrder = []Role{RolePrimary, RoleSecondary, RoleProp, RoleBackground}

// IsSubject は、そのロールが被写体（人物・キャラクター）かどうかを返します。
func (r Role) IsSubject() bool {
	return r == RolePrimary || r == RoleSecondary
}

// Valid は既知のロールかどうかを返します。
func (r Role) Valid() bool {
	switch r {
	case RolePrimary, RoleSecondary, RoleProp, RoleBackground:
		return true
	}
	return false
}

// ReferenceImage は参照画像の生データと MIME タイプを保持します。
type ReferenceImage struct {
	Data     []byte
	MimeType string
}

// IsEmpty は画像データが空かどうかを返します。
func (img ReferenceImage) IsEmpty() bool {
	return len(img.Data) == 0
}

// Clone はデータを複製した ReferenceImage を返します。
// スナップショットの独立性を保証するためにバイト列ごとコピーするのだ。
func (img ReferenceImage) Clone() ReferenceImage {
	if img.IsEmpty() {
		return ReferenceImage{MimeType: img.MimeType}
	}
	data := make([]byte, len(img.Data))
	copy(data, img.Data)
	return ReferenceImage{Data: data, MimeType: img.MimeType}
}

// ReferenceAsset は 1 スロット分の参照画像と抽出済み記述子の組です。
// 記述子は必ず画像に付随し、画像なしで記述子だけが存在することはありません。
type ReferenceAsset struct {
	Role       Role
	Image      ReferenceImage
	Descriptor string
}

// HasImage は画像が登録済みかどうかを返します。
func (a ReferenceAsset) HasImage() bool {
	return !a.Image.IsEmpty()
}

// Ready は画像と記述子が両方そろい、合成に投入できる状態かを返します。
func (a ReferenceAsset) Ready() bool {
	return a.HasImage() && a.Descriptor != ""
}

// AssetSet はストアからスナップショットされた参照スロットの集合です。
// 値として受け渡し、取得後のストア変更の影響を受けません。
type AssetSet map[Role]ReferenceAsset

// Get は指定ロールのアセットを返します。未登録の場合 ok は false です。
func (s AssetSet) Get(role Role) (ReferenceAsset, bool) {
	a, ok := s[role]
	return a, ok
}

// IsReady は指定ロールのスロットが合成可能な状態かを返します。
func (s AssetSet) IsReady(role Role) bool {
	a, ok := s[role]
	return ok && a.Ready()
}

// OrderedImages は合成可能なスロットの画像を RoleOrder の順で返します。
// 返り値の画像はすべて複製であり、呼び出し後の変更から独立しています。
func (s AssetSet) OrderedImages() []ReferenceImage {
	var images []ReferenceImage
	for _, role := range RoleOrder {
		if a, ok := s[role]; ok && a.Ready() {
			images = append(images, a.Image.Clone())
		}
	}
	return images
}

// Validate はバッチ投入前の事前検証を行います。
// 主要被写体が未準備なら ErrMissingPrimary、画像だけ登録されて記述子が
// 未抽出の任意スロットがあれば IncompleteAssetError を返します。
// 登録済みの参照を黙って無視することはありません。
func (s AssetSet) Validate() error {
	primary, ok := s[RolePrimary]
	if !ok || !primary.Ready() {
		return ErrMissingPrimary
	}
	for _, role := range RoleOrder {
		if role == RolePrimary {
			continue
		}
		if a, ok := s[role]; ok && a.HasImage() && a.Descriptor == "" {
			return &IncompleteAssetError{Role: role}
		}
	}
	return nil
}
