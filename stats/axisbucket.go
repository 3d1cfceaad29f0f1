package stats

import (
	"fmt"
)

// AxisBuckets
//
// 用來快速定位座標值 -> 直方圖桶位 O(1)
//
// 低差異序列的賣點就是分桶後每桶計數幾乎相等；這個結構負責把
// 任一軸的值切進固定的等寬桶，供 DistReport 與卡方檢定使用。
type AxisBuckets struct {
	lo, hi float64
	k      int
	labels []string
}

// NewAxisBuckets 建立 [lo, hi) 上的 k 個等寬桶。
// k < 2 或 lo >= hi 屬於程式設計錯誤，直接 panic（與 sampler 建表同策略）。
func NewAxisBuckets(k int, lo, hi float64) *AxisBuckets {
	if k < 2 {
		panic("AxisBuckets: k must be >= 2")
	}
	if lo >= hi {
		panic("AxisBuckets: lo must be < hi")
	}
	labels := make([]string, k)
	width := (hi - lo) / float64(k)
	for i := 0; i < k; i++ {
		labels[i] = fmt.Sprintf("[%.3f,%.3f)", lo+float64(i)*width, lo+float64(i+1)*width)
	}
	return &AxisBuckets{lo: lo, hi: hi, k: k, labels: labels}
}

// UnitBuckets 是 [0,1) 標量流的預設分桶。
func UnitBuckets(k int) *AxisBuckets { return NewAxisBuckets(k, 0, 1) }

// SymmetricBuckets 是 [-1,1) 座標軸（球面/圓投影）的預設分桶。
func SymmetricBuckets(k int) *AxisBuckets { return NewAxisBuckets(k, -1, 1) }

// K 回傳桶數。
func (b *AxisBuckets) K() int { return b.k }

// Labels 回傳各桶的區間標籤（與 Locate 的索引對齊）。
func (b *AxisBuckets) Labels() []string {
	return append([]string(nil), b.labels...)
}

// Locate 回傳 x 所屬桶位；範圍外的值夾到邊界桶（幾何生成器的
// 浮點誤差可能讓座標以 1e-16 等級越界，不值得為此回報錯誤）。
func (b *AxisBuckets) Locate(x float64) int {
	idx := int(float64(b.k) * (x - b.lo) / (b.hi - b.lo))
	if idx < 0 {
		return 0
	}
	if idx >= b.k {
		return b.k - 1
	}
	return idx
}
