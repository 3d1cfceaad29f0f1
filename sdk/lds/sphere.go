package lds

import (
	"math"
)

// Sphere 把一條 2 維 Halton 流映射到單位球面（S²）上，採標準保面積構造。
//
// 關鍵在第一個分量：u1 線性映射到 z = 2u1−1（極角的餘弦），而不是映射到
// 極角本身。球面的立體角元素 dΩ = dz·dφ，對 z 均勻取樣才會對球面面積均勻；
// 天真的「對極角均勻」會把點堆向兩極。
//
// 建構時允許超過 2 個 base：只有前兩維被消費，多出的維度照樣 lockstep
// 前進但被忽略（不是錯誤），方便多個幾何生成器共用同一組 base 設定。
type Sphere struct {
	halton *Halton
	buf    []float64
}

// NewSphere 以一組 base 建立生成器；少於 2 個 base 回傳 KindConfig 錯誤。
func NewSphere(bases []int) (*Sphere, error) {
	if len(bases) < 2 {
		return nil, errsConfigDim("sphere", 2, len(bases))
	}
	h, err := NewHalton(bases)
	if err != nil {
		return nil, err
	}
	return &Sphere{halton: h, buf: make([]float64, 2)}, nil
}

// SphereMap 把 (u1, u2) ∈ [0,1)² 保面積地映射到單位球面上。
func SphereMap(u1, u2 float64) [3]float64 {
	z := 2*u1 - 1           // cos(極角)，均勻分佈於 [-1, 1]
	r := math.Sqrt(1 - z*z) // 該緯度圈半徑
	sin, cos := math.Sincos(twoPi * u2)
	return [3]float64{r * cos, r * sin, z}
}

// Pop 回傳單位球面上的下一個點 (x, y, z)，‖v‖ = 1（浮點容差內）。
func (s *Sphere) Pop() [3]float64 {
	s.halton.PopInto(s.buf)
	return SphereMap(s.buf[0], s.buf[1])
}

// Reseed 把所有底層維度重設到指定 index。
func (s *Sphere) Reseed(seed uint64) {
	s.halton.Reseed(seed)
}

// Snapshot 回傳底層 Halton 的狀態。
func (s *Sphere) Snapshot() ([]byte, error) {
	return s.halton.Snapshot()
}

// Restore 依 Snapshot 輸出還原。
func (s *Sphere) Restore(data []byte) error {
	return s.halton.Restore(data)
}
