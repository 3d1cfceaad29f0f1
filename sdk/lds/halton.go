// Copyright 2026 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lds

import (
	"strconv"

	"github.com/zintix-labs/ldslab/errs"
)

// Halton 是 n 維 Halton 序列生成器：每個維度一個獨立 base 的 VdCorput，
// 一次 Pop 讓所有維度 lockstep 前進一步，維度間的相關結構因此被保持。
//
// base 要求互異（重複 base 會讓兩個維度完全相同，直接拒絕）；
// 兩兩互質為慣例上的建議（用 Primes 取得前 n 個質數即可滿足），不在此強制。
type Halton struct {
	vdcs []*VdCorput
}

// NewHalton 以一組 base 建立 n 維生成器。
//
// KindConfig 失敗條件：base 列表為空、任一 base < 2、base 重複。
func NewHalton(bases []int) (*Halton, error) {
	if len(bases) == 0 {
		return nil, errs.NewConfig("halton requires at least one base")
	}
	seen := make(map[int]struct{}, len(bases))
	vdcs := make([]*VdCorput, len(bases))
	for i, b := range bases {
		v, err := NewVdCorput(b)
		if err != nil {
			return nil, errs.WrapWithExtra(err, "halton base invalid", "dim "+strconv.Itoa(i))
		}
		if _, dup := seen[b]; dup {
			return nil, errs.Configf("halton bases must be distinct, base %d repeated", b)
		}
		seen[b] = struct{}{}
		vdcs[i] = v
	}
	return &Halton{vdcs: vdcs}, nil
}

// Pop 回傳下一組 n 維 tuple；每個分量來自各自維度的 VdCorput。
// 回傳的 slice 為新配置，呼叫端可安全保留；熱路徑請改用 PopInto。
func (h *Halton) Pop() []float64 {
	out := make([]float64, len(h.vdcs))
	h.PopInto(out)
	return out
}

// PopInto 將下一組 tuple 寫入 dst 並回傳寫入的維度數。
// dst 短於維度數時只寫入前 len(dst) 維，但所有維度仍照樣前進，
// 以維持「一次 Pop、全維 lockstep 前進一步」的合約。
func (h *Halton) PopInto(dst []float64) int {
	n := 0
	for i, v := range h.vdcs {
		x := v.Pop()
		if i < len(dst) {
			dst[i] = x
			n++
		}
	}
	return n
}

// Dim 回傳維度數。
func (h *Halton) Dim() int {
	return len(h.vdcs)
}

// Bases 回傳建構時的 base 列表（copy，不暴露內部）。
func (h *Halton) Bases() []int {
	out := make([]int, len(h.vdcs))
	for i, v := range h.vdcs {
		out[i] = v.Base()
	}
	return out
}

// Reseed 把所有維度重設到同一個 index。
func (h *Halton) Reseed(seed uint64) {
	for _, v := range h.vdcs {
		v.Reseed(seed)
	}
}

// Snapshot 回傳所有維度計數器的串接（每維 8 bytes，依維度順序）。
func (h *Halton) Snapshot() ([]byte, error) {
	b := make([]byte, 0, 8*len(h.vdcs))
	for _, v := range h.vdcs {
		s, err := v.Snapshot()
		if err != nil {
			return nil, err
		}
		b = append(b, s...)
	}
	return b, nil
}

// Restore 依 Snapshot 輸出還原所有維度計數器。長度不符直接拒絕。
func (h *Halton) Restore(data []byte) error {
	if len(data) != 8*len(h.vdcs) {
		return errs.Fatalf("halton snapshot must be %d bytes, got %d", 8*len(h.vdcs), len(data))
	}
	for i, v := range h.vdcs {
		if err := v.Restore(data[i*8 : i*8+8]); err != nil {
			return err
		}
	}
	return nil
}
