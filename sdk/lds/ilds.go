package lds

import (
	"github.com/zintix-labs/ldslab/errs"
)

// VdcInt 計算 index k 在指定 base、scale 下的整數 Van der Corput 值。
//
// 與 Vdc 相同的數位反轉，但定點輸出：結果是把反轉後的數字放大
// base^scale 倍的整數，落在 [0, base^scale)。適合需要避開浮點誤差的
// 場景（查表索引、整數格點取樣）。
func VdcInt(k, base uint64, scale uint32) uint64 {
	res := uint64(0)
	factor := powUint64(base, scale)
	for k != 0 {
		remainder := k % base
		factor /= base
		k /= base
		res += remainder * factor
	}
	return res
}

// VdCorputInt 是整數輸出的 Van der Corput 生成器。
//
// scale 決定輸出的定點位數：輸出落在 [0, base^scale)。
// index 超過 base^scale 之後數位反轉會丟失高位，因此 scale 也隱含了
// 可用序列長度的上限；建構時就把 base^scale 是否溢位 uint64 檢掉。
type VdCorputInt struct {
	count uint64
	base  uint64
	scale uint32
}

// NewVdCorputInt 建立整數生成器。
//
// KindConfig 失敗條件：base < 2 或 scale < 1。
// KindOverflow 失敗條件：base^scale 超出 uint64。
func NewVdCorputInt(base int, scale int) (*VdCorputInt, error) {
	if base < 2 {
		return nil, errs.Configf("vdc base must be >= 2, got %d", base)
	}
	if scale < 1 {
		return nil, errs.Configf("vdc scale must be >= 1, got %d", scale)
	}
	if !powFits(uint64(base), uint32(scale)) {
		return nil, errs.WrapWithExtra(errs.ErrOverflow, "vdc scale too large",
			"base^scale exceeds uint64")
	}
	return &VdCorputInt{base: uint64(base), scale: uint32(scale)}, nil
}

// Pop 推進計數器並回傳下一個 [0, base^scale) 的整數序列值。
func (v *VdCorputInt) Pop() uint64 {
	v.count++
	return VdcInt(v.count, v.base, v.scale)
}

// Reseed 把序列重設到指定 index。
func (v *VdCorputInt) Reseed(seed uint64) {
	v.count = seed
}

// HaltonInt 是 n 維整數 Halton 生成器：每維各自的 base 與 scale，
// lockstep 前進，分量 i 落在 [0, base_i^scale_i)。
type HaltonInt struct {
	vdcs []*VdCorputInt
}

// NewHaltonInt 以成對的 base 與 scale 建立 n 維整數生成器。
//
// KindConfig 失敗條件：列表為空、長度不一致、任一 base/scale 不合法、base 重複。
func NewHaltonInt(bases []int, scales []int) (*HaltonInt, error) {
	if len(bases) == 0 {
		return nil, errs.NewConfig("halton requires at least one base")
	}
	if len(bases) != len(scales) {
		return nil, errs.Configf("halton bases/scales length mismatch: %d vs %d", len(bases), len(scales))
	}
	seen := make(map[int]struct{}, len(bases))
	vdcs := make([]*VdCorputInt, len(bases))
	for i, b := range bases {
		v, err := NewVdCorputInt(b, scales[i])
		if err != nil {
			return nil, err
		}
		if _, dup := seen[b]; dup {
			return nil, errs.Configf("halton bases must be distinct, base %d repeated", b)
		}
		seen[b] = struct{}{}
		vdcs[i] = v
	}
	return &HaltonInt{vdcs: vdcs}, nil
}

// Pop 回傳下一組 n 維整數 tuple。
func (h *HaltonInt) Pop() []uint64 {
	out := make([]uint64, len(h.vdcs))
	for i, v := range h.vdcs {
		out[i] = v.Pop()
	}
	return out
}

// Reseed 把所有維度重設到同一個 index。
func (h *HaltonInt) Reseed(seed uint64) {
	for _, v := range h.vdcs {
		v.Reseed(seed)
	}
}

// powUint64 計算 base^exp；呼叫端需先以 powFits 確認不溢位。
func powUint64(base uint64, exp uint32) uint64 {
	res := uint64(1)
	for i := uint32(0); i < exp; i++ {
		res *= base
	}
	return res
}

// powFits 回報 base^exp 是否落在 uint64 內。
func powFits(base uint64, exp uint32) bool {
	res := uint64(1)
	for i := uint32(0); i < exp; i++ {
		if res > ^uint64(0)/base {
			return false
		}
		res *= base
	}
	return true
}
