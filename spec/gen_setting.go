package spec

import (
	"fmt"
	"strings"

	"github.com/zintix-labs/ldslab/errs"
)

// GID 生成器編號（Catalog 內唯一）。
type GID uint

// Kind 生成器種類，對應 sdk/lds 的五種實作。
type Kind string

const (
	KindVdc         Kind = "vdc"
	KindHalton      Kind = "halton"
	KindCircle      Kind = "circle"
	KindSphere      Kind = "sphere"
	KindSphere3Hopf Kind = "sphere3hopf"
)

// minBases 每種 Kind 要求的最小 base 數。
var minBases = map[Kind]int{
	KindVdc:         1,
	KindHalton:      1,
	KindCircle:      1,
	KindSphere:      2,
	KindSphere3Hopf: 3,
}

// outDim 每種 Kind 的輸出維度。
var outDim = map[Kind]int{
	KindVdc:         1,
	KindHalton:      0, // 維度 = len(bases)
	KindCircle:      2,
	KindSphere:      3,
	KindSphere3Hopf: 4,
}

// GenSetting 描述一個可被建構的序列生成器所需的所有設定。
//
// 這是設定檔（YAML/JSON）的直接對應；所有欄位在 decode 後經 init() 驗證，
// 不合法的設定在載入期就失敗，不會活到建構期之後。
type GenSetting struct {
	GenName string `yaml:"gen_name" json:"gen_name"`
	GenID   GID    `yaml:"gen_id"   json:"gen_id"`
	Kind    Kind   `yaml:"kind"     json:"kind"`
	Bases   []int  `yaml:"bases"    json:"bases"`
	Seed    uint64 `yaml:"seed"     json:"seed"` // 初始 index（0 = 從頭）
}

// init 正規化欄位並執行基本檢查。
func (gs *GenSetting) init() error {
	gs.GenName = strings.TrimSpace(gs.GenName)
	gs.Kind = Kind(strings.ToLower(strings.TrimSpace(string(gs.Kind))))
	return gs.valid()
}

// valid 執行最基本的設定檔檢查；和 sdk/lds 建構器的檢查故意重疊，
// 讓設定錯誤在載入期就以 KindConfig 暴露，而不是等到建機時。
func (gs *GenSetting) valid() error {
	if gs.GenName == "" {
		return errs.Configf("gen_name required (gen_id=%d)", gs.GenID)
	}

	need, ok := minBases[gs.Kind]
	if !ok {
		return errs.Configf("gen_name: %s err: unknown kind %q", gs.GenName, gs.Kind)
	}

	if len(gs.Bases) < need {
		return errs.Configf("gen_name: %s err: kind %q requires at least %d bases, got %d",
			gs.GenName, gs.Kind, need, len(gs.Bases))
	}

	seen := map[int]struct{}{}
	for _, b := range gs.Bases {
		if b < 2 {
			return errs.Configf("gen_name: %s err: base must be >= 2, got %d", gs.GenName, b)
		}
		if _, dup := seen[b]; dup {
			return errs.Configf("gen_name: %s err: duplicate base %d", gs.GenName, b)
		}
		seen[b] = struct{}{}
	}
	return nil
}

// Dim 回傳此設定建出的生成器每點輸出的維度。
func (gs *GenSetting) Dim() int {
	if gs.Kind == KindHalton {
		return len(gs.Bases)
	}
	return outDim[gs.Kind]
}

// String 供觀測/日誌使用。
func (gs *GenSetting) String() string {
	return fmt.Sprintf("%s(id=%d kind=%s bases=%v)", gs.GenName, gs.GenID, gs.Kind, gs.Bases)
}
