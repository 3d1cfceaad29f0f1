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

// Package lds 實作低差異（low-discrepancy / quasi-random）序列生成核心。
//
// 這裡是整個 Ldslab 的地基，由下往上分三層：
//  1. VdCorput：單一 base 的 Van der Corput 數位反轉序列（標量流）。
//  2. Halton：多個互異 base 的 VdCorput 以 lockstep 組成的多維序列。
//  3. 幾何映射：Circle / Sphere / Sphere3Hopf 把標量流轉成圓、球面（S²）、
//     三維球面（S³）上量測均勻的點。
//
// 共同合約：
//   - 所有生成器都是 pull-based：只有 Pop() 一個推進操作，呼叫一次前進一步。
//   - 建構期驗證（base ≥ 2、維度、互異性）失敗回傳 errs.KindConfig；
//     建構成功後 Pop 是 total function，永不失敗。
//   - 每個實例獨佔自己的計數器狀態：單一實例不可併發 Pop，
//     不同實例完全獨立、可分散到多個 goroutine。
//   - 可重現性合約對齊 problab 的 PRNG 介面：同樣設定必然產生同樣序列，
//     並支援 Reseed 與 Snapshot/Restore 以便審計與回放。
//
// base 互異是 Halton 構造的基本要求；教科書上慣用「前 n 個質數」
// （見 Primes），兩兩互質是建議而非強制——本包只拒絕重複的 base。
package lds

import (
	"encoding/binary"
	"math"

	"github.com/zintix-labs/ldslab/errs"
)

const twoPi = 2 * math.Pi

// Generator 是唯一的序列能力抽象：Pop 回傳下一個值並前進內部計數器。
//
// T 依生成器種類而定：float64（VdCorput）、[]float64（Halton）、
// [2]float64（Circle）、[3]float64（Sphere）、[4]float64（Sphere3Hopf）。
type Generator[T any] interface {
	// Pop 回傳序列的下一個值。永不失敗、永不阻塞。
	Pop() T
	// Reseed 把序列重設到指定 index（0 代表從頭開始，下一次 Pop 取 index 1）。
	Reseed(seed uint64)
}

// Restorable 定義可快照與還原的狀態介面，對齊 problab core 的審計合約。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原內部計數器。
	Restore([]byte) error
}

// errsConfigDim 統一幾何生成器「維度不足」的錯誤格式。
func errsConfigDim(kind string, need, got int) error {
	return errs.Configf("%s requires at least %d bases, got %d", kind, need, got)
}

// Vdc 計算 index k 在指定 base 下的 Van der Corput 值（無狀態版本）。
//
// 演算法：反覆除以 base 取餘數，第一個取出的餘數放在小數點後最高位，
// 等價於把 k 的 base 進位表示做數位反轉後當成小數：
//
//	value = Σ d_i · base^-(i+1)，d_i 為 k 由低到高的第 i 位數字。
//
// 對所有 k ≥ 1 結果落在 [0, 1)；Vdc(0, b) == 0。
func Vdc(k, base uint64) float64 {
	res := 0.0
	denom := 1.0
	for k != 0 {
		remainder := k % base
		denom *= float64(base)
		k /= base
		res += float64(remainder) / denom
	}
	return res
}

// VdCorput 是 Van der Corput 序列生成器，所有高維生成器的基礎原語。
//
// 內部只有兩個欄位：不可變的 base 與會被每次 Pop 推進的計數器。
// 計數器從 0 起算、Pop 先加後取，因此第一個輸出對應 index 1：
// base 2 的前四個輸出為 0.5, 0.25, 0.75, 0.125。
// 序列無限且不重複（index 單調遞增時值不會重複出現）。
type VdCorput struct {
	count uint64
	base  uint64
}

// NewVdCorput 以指定 base 建立生成器；base < 2 回傳 KindConfig 錯誤。
func NewVdCorput(base int) (*VdCorput, error) {
	if base < 2 {
		return nil, errs.Configf("vdc base must be >= 2, got %d", base)
	}
	return &VdCorput{base: uint64(base)}, nil
}

// Pop 推進計數器並回傳下一個 [0, 1) 的序列值。
func (v *VdCorput) Pop() float64 {
	v.count++
	return Vdc(v.count, v.base)
}

// Reseed 把序列重設到指定 index，下一次 Pop 回傳 index seed+1 的值。
func (v *VdCorput) Reseed(seed uint64) {
	v.count = seed
}

// Base 回傳建構時的 base（只讀；計數器本身永不對外暴露）。
func (v *VdCorput) Base() int {
	return int(v.base)
}

// Snapshot 回傳當下內部狀態（8-byte big-endian 計數器）。
func (v *VdCorput) Snapshot() ([]byte, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v.count)
	return b, nil
}

// Restore 依 Snapshot 輸出還原計數器。
func (v *VdCorput) Restore(data []byte) error {
	if len(data) != 8 {
		return errs.Fatalf("vdc snapshot must be 8 bytes, got %d", len(data))
	}
	v.count = binary.BigEndian.Uint64(data)
	return nil
}
