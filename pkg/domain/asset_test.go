package domain

import (
	"errors"
	"testing"
)

func readyAsset(role Role, descriptor string) ReferenceAsset {
	return ReferenceAsset{
		Role:       role,
		Image:      ReferenceImage{Data: []byte{0x89, 0x50, 0x4e, 0x47}, MimeType: "image/png"},
		Descriptor: descriptor,
	}
}

func TestAssetSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		set     AssetSet
		wantErr error
	}{
		{
			name:    "空のセットは主要被写体不足",
			set:     AssetSet{},
			wantErr: ErrMissingPrimary,
		},
		{
			name: "主要被写体の記述子が未抽出なら不足扱い",
			set: AssetSet{
				RolePrimary: {Role: RolePrimary, Image: ReferenceImage{Data: []byte{1}}},
			},
			wantErr: ErrMissingPrimary,
		},
		{
			name: "準備済みの主要被写体だけなら有効",
			set: AssetSet{
				RolePrimary: readyAsset(RolePrimary, "a hero"),
			},
			wantErr: nil,
		},
		{
			name: "画像だけの任意スロットは不完全",
			set: AssetSet{
				RolePrimary: readyAsset(RolePrimary, "a hero"),
				RoleProp:    {Role: RoleProp, Image: ReferenceImage{Data: []byte{2}}},
			},
			wantErr: &IncompleteAssetError{Role: RoleProp},
		},
		{
			name: "全スロット準備済みなら有効",
			set: AssetSet{
				RolePrimary:    readyAsset(RolePrimary, "a hero"),
				RoleSecondary:  readyAsset(RoleSecondary, "an ally"),
				RoleProp:       readyAsset(RoleProp, "a sword"),
				RoleBackground: readyAsset(RoleBackground, "a castle"),
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("エラーは発生しないはずなのに発生したのだ: %v", err)
				}
				return
			}

			var incomplete *IncompleteAssetError
			if errors.As(tt.wantErr, &incomplete) {
				var got *IncompleteAssetError
				if !errors.As(err, &got) {
					t.Fatalf("IncompleteAssetError を期待したが %v だったのだ", err)
				}
				if got.Role != incomplete.Role {
					t.Errorf("期待値 %v, 実際の値 %v", incomplete.Role, got.Role)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期待値 %v, 実際の値 %v", tt.wantErr, err)
			}
		})
	}
}

func TestAssetSet_OrderedImages(t *testing.T) {
	set := AssetSet{
		RoleBackground: readyAsset(RoleBackground, "a castle"),
		RolePrimary:    readyAsset(RolePrimary, "a hero"),
		// 記述子のないスロットは合成対象外
		RoleProp: {Role: RoleProp, Image: ReferenceImage{Data: []byte{7}}},
	}

	images := set.OrderedImages()
	if len(images) != 2 {
		t.Fatalf("合成対象は 2 枚のはずが %d 枚だったのだ", len(images))
	}

	// 先頭は必ず主要被写体（RoleOrder 順）
	if string(images[0].Data) != string(set[RolePrimary].Image.Data) {
		t.Errorf("先頭の参照画像が主要被写体ではないのだ")
	}
}

func TestReferenceImage_Clone(t *testing.T) {
	orig := ReferenceImage{Data: []byte{1, 2, 3}, MimeType: "image/png"}
	clone := orig.Clone()

	clone.Data[0] = 99
	if orig.Data[0] != 1 {
		t.Errorf("Clone が元データを共有しているのだ: %v", orig.Data)
	}
}
