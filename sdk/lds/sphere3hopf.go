package lds

import (
	"math"
)

// Sphere3Hopf 把一條 3 維 Halton 流經 Hopf fibration 參數化映射到
// 單位三維球面（S³ ⊂ R⁴）上。
//
// 參數化：
//
//	θ  = acos(1 − 2u1)   底空間（S²）方向的極角項，對 1−2u1 均勻即保測度
//	φ1 = 2π·u2           第一相位角
//	φ2 = 2π·u3           第二相位角（fiber 方向）
//	v  = (cos(θ/2)cosφ1, cos(θ/2)sinφ1, sin(θ/2)cosφ2, sin(θ/2)sinφ2)
//
// cos²(θ/2) + sin²(θ/2) = 1 保證 ‖v‖ = 1。選 Hopf 參數化而不是天真的
// 四維球座標，是因為 S³ 的體積元素在這組座標下恰好分離成三個獨立均勻
// 因子，三條均勻標量流直接餵進來就是 S³ 上的均勻測度；球座標版本則會
// 把密度偏向兩極。
type Sphere3Hopf struct {
	halton *Halton
	buf    []float64
}

// NewSphere3Hopf 以一組 base 建立生成器；少於 3 個 base 回傳 KindConfig 錯誤。
// 超出 3 維的 base 照樣 lockstep 前進但被忽略。
func NewSphere3Hopf(bases []int) (*Sphere3Hopf, error) {
	if len(bases) < 3 {
		return nil, errsConfigDim("sphere3hopf", 3, len(bases))
	}
	h, err := NewHalton(bases)
	if err != nil {
		return nil, err
	}
	return &Sphere3Hopf{halton: h, buf: make([]float64, 3)}, nil
}

// Sphere3HopfMap 把 (u1, u2, u3) ∈ [0,1)³ 經 Hopf 參數化映射到 S³ 上。
func Sphere3HopfMap(u1, u2, u3 float64) [4]float64 {
	theta := math.Acos(1 - 2*u1)
	sinHalf, cosHalf := math.Sincos(theta / 2)
	sin1, cos1 := math.Sincos(twoPi * u2)
	sin2, cos2 := math.Sincos(twoPi * u3)
	return [4]float64{
		cosHalf * cos1,
		cosHalf * sin1,
		sinHalf * cos2,
		sinHalf * sin2,
	}
}

// Pop 回傳 S³ 上的下一個點 (a, b, c, d)，‖v‖ = 1（浮點容差內）。
func (s *Sphere3Hopf) Pop() [4]float64 {
	s.halton.PopInto(s.buf)
	return Sphere3HopfMap(s.buf[0], s.buf[1], s.buf[2])
}

// Reseed 把所有底層維度重設到指定 index。
func (s *Sphere3Hopf) Reseed(seed uint64) {
	s.halton.Reseed(seed)
}

// Snapshot 回傳底層 Halton 的狀態。
func (s *Sphere3Hopf) Snapshot() ([]byte, error) {
	return s.halton.Snapshot()
}

// Restore 依 Snapshot 輸出還原。
func (s *Sphere3Hopf) Restore(data []byte) error {
	return s.halton.Restore(data)
}
