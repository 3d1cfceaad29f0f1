package lds

import (
	"math"
)

// Circle 把一條 VdCorput 標量流映射到單位圓上。
//
// 映射為純角度構造：t ∈ [0,1) → (cos 2πt, sin 2πt)。
// 圓沒有曲率造成的密度扭曲，角度均勻即面（弧長）均勻，
// 所以不需要 Sphere 那種保測度修正。
type Circle struct {
	vdc *VdCorput
}

// NewCircle 以指定 base 建立生成器；驗證規則同 NewVdCorput。
func NewCircle(base int) (*Circle, error) {
	v, err := NewVdCorput(base)
	if err != nil {
		return nil, err
	}
	return &Circle{vdc: v}, nil
}

// CircleMap 把 t ∈ [0,1) 映射到單位圓上。
// 獨立輸出，讓任何 [0,1) 來源（LDS 或 PRNG 基準）走同一條映射。
func CircleMap(t float64) [2]float64 {
	sin, cos := math.Sincos(twoPi * t)
	return [2]float64{cos, sin}
}

// Pop 回傳單位圓上的下一個點 (x, y)，x²+y² = 1（浮點容差內）。
func (c *Circle) Pop() [2]float64 {
	return CircleMap(c.vdc.Pop())
}

// Reseed 把底層標量流重設到指定 index。
func (c *Circle) Reseed(seed uint64) {
	c.vdc.Reseed(seed)
}

// Snapshot 回傳底層 VdCorput 的狀態。
func (c *Circle) Snapshot() ([]byte, error) {
	return c.vdc.Snapshot()
}

// Restore 依 Snapshot 輸出還原。
func (c *Circle) Restore(data []byte) error {
	return c.vdc.Restore(data)
}
