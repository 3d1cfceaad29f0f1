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
	"math"
	"testing"

	"github.com/zintix-labs/ldslab/errs"
)

const normTol = 1e-9

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

// assertApprox 驗證兩個 float64 在容差內相等
func assertApprox(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("[%s] got %v, want %v (tol %v)", name, got, want, tol)
	}
}

// assertConfigErr 驗證建構錯誤存在且為 KindConfig
func assertConfigErr(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected config error for %s, got nil", msg)
	}
	if !errs.IsConfig(err) {
		t.Errorf("expected KindConfig for %s, got %v", msg, err)
	}
}

// -----------------------------------------------------------------------------
// Tests for Vdc / VdCorput
// -----------------------------------------------------------------------------

// TestVdc_KnownValues 驗證 base 2 的已知序列值
func TestVdc_KnownValues(t *testing.T) {
	cases := []struct {
		k    uint64
		want float64
	}{
		{1, 0.5}, {2, 0.25}, {3, 0.75}, {4, 0.125}, {5, 0.625}, {11, 0.8125},
	}
	for _, c := range cases {
		if got := Vdc(c.k, 2); got != c.want {
			t.Errorf("Vdc(%d, 2) = %v, want %v", c.k, got, c.want)
		}
	}
	if got := Vdc(0, 2); got != 0 {
		t.Errorf("Vdc(0, 2) = %v, want 0", got)
	}
}

// TestVdCorput_FirstFour 驗證新生成器前四個輸出（counter 由 1 起算）
func TestVdCorput_FirstFour(t *testing.T) {
	v, err := NewVdCorput(2)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.5, 0.25, 0.75, 0.125}
	for i, w := range want {
		if got := v.Pop(); got != w {
			t.Errorf("pop #%d = %v, want %v", i+1, got, w)
		}
	}
}

// TestVdCorput_Range 驗證多個 base 下輸出恆落在 [0, 1)
func TestVdCorput_Range(t *testing.T) {
	for _, base := range []int{2, 3, 5, 7, 10, 13} {
		v, err := NewVdCorput(base)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 1000; i++ {
			x := v.Pop()
			if x < 0 || x >= 1 {
				t.Fatalf("base %d pop #%d = %v out of [0,1)", base, i+1, x)
			}
		}
	}
}

// TestVdCorput_InvalidBase 驗證 base < 2 的建構失敗
func TestVdCorput_InvalidBase(t *testing.T) {
	for _, base := range []int{1, 0, -3} {
		_, err := NewVdCorput(base)
		assertConfigErr(t, err, "vdc base")
	}
	_, err := NewCircle(1)
	assertConfigErr(t, err, "circle base")
}

// TestVdCorput_Reseed 驗證 Reseed 後由指定 index 繼續
func TestVdCorput_Reseed(t *testing.T) {
	v, _ := NewVdCorput(2)
	v.Reseed(10)
	if got := v.Pop(); got != 0.8125 {
		t.Errorf("pop after reseed(10) = %v, want 0.8125", got)
	}
}

// TestVdCorput_SnapshotRestore 驗證快照還原後序列接續一致
func TestVdCorput_SnapshotRestore(t *testing.T) {
	v, _ := NewVdCorput(3)
	for i := 0; i < 7; i++ {
		v.Pop()
	}
	snap, err := v.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	next := v.Pop()
	if err := v.Restore(snap); err != nil {
		t.Fatal(err)
	}
	if got := v.Pop(); got != next {
		t.Errorf("pop after restore = %v, want %v", got, next)
	}
	if err := v.Restore([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for short snapshot")
	}
}

// TestVdCorput_Determinism 驗證同設定的兩個生成器逐項相等
func TestVdCorput_Determinism(t *testing.T) {
	a, _ := NewVdCorput(5)
	b, _ := NewVdCorput(5)
	for i := 0; i < 500; i++ {
		if av, bv := a.Pop(), b.Pop(); av != bv {
			t.Fatalf("pop #%d diverged: %v vs %v", i+1, av, bv)
		}
	}
}

// -----------------------------------------------------------------------------
// Tests for Halton
// -----------------------------------------------------------------------------

// TestHalton_KnownTuples 驗證 [2,3] 前三組 tuple
func TestHalton_KnownTuples(t *testing.T) {
	h, err := NewHalton([]int{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]float64{
		{0.5, 1.0 / 3.0},
		{0.25, 2.0 / 3.0},
		{0.75, 1.0 / 9.0},
	}
	for i, w := range want {
		got := h.Pop()
		if len(got) != 2 {
			t.Fatalf("tuple #%d has %d dims, want 2", i+1, len(got))
		}
		assertApprox(t, "halton dim0", got[0], w[0], 1e-15)
		assertApprox(t, "halton dim1", got[1], w[1], 1e-15)
	}
}

// TestHalton_Lockstep 驗證 PopInto 的 dst 較短時所有維度仍前進
func TestHalton_Lockstep(t *testing.T) {
	h, _ := NewHalton([]int{2, 3, 5})
	dst := make([]float64, 2)
	h.PopInto(dst) // 消費前兩維，第三維也應前進

	ref, _ := NewVdCorput(5)
	ref.Pop() // 對齊第三維已走一步

	full := h.Pop()
	if full[2] != ref.Pop() {
		t.Error("dim 2 did not advance in lockstep")
	}
}

// TestHalton_InvalidConfig 驗證空列表、壞 base、重複 base 的建構失敗
func TestHalton_InvalidConfig(t *testing.T) {
	_, err := NewHalton(nil)
	assertConfigErr(t, err, "empty bases")
	_, err = NewHalton([]int{})
	assertConfigErr(t, err, "empty bases")
	_, err = NewHalton([]int{2, 1})
	assertConfigErr(t, err, "base < 2")
	_, err = NewHalton([]int{2, 3, 2})
	assertConfigErr(t, err, "duplicate base")
}

// TestHalton_ReseedAll 驗證 Reseed 同步重設所有維度
func TestHalton_ReseedAll(t *testing.T) {
	h, _ := NewHalton([]int{2, 3})
	for i := 0; i < 5; i++ {
		h.Pop()
	}
	h.Reseed(0)
	got := h.Pop()
	assertApprox(t, "reseed dim0", got[0], 0.5, 1e-15)
	assertApprox(t, "reseed dim1", got[1], 1.0/3.0, 1e-15)
}

// TestHaltonPrime 驗證質數 base 輔助建構
func TestHaltonPrime(t *testing.T) {
	h, err := NewHaltonPrime(5)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{2, 3, 5, 7, 11}
	for i, b := range h.Bases() {
		if b != want[i] {
			t.Errorf("base #%d = %d, want %d", i, b, want[i])
		}
	}
	if _, err := Primes(0); err == nil {
		t.Error("expected error for n = 0")
	}
	if _, err := Primes(1000); err == nil {
		t.Error("expected error for n beyond table")
	}
}

// -----------------------------------------------------------------------------
// Tests for Circle / Sphere / Sphere3Hopf
// -----------------------------------------------------------------------------

// TestCircle_UnitNorm 驗證輸出恆在單位圓上
func TestCircle_UnitNorm(t *testing.T) {
	c, err := NewCircle(2)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2000; i++ {
		p := c.Pop()
		assertApprox(t, "circle norm", p[0]*p[0]+p[1]*p[1], 1, normTol)
	}
}

// TestCircle_FirstPoint 驗證第一個點：t=0.5 → 角度 π → (-1, 0)
func TestCircle_FirstPoint(t *testing.T) {
	c, _ := NewCircle(2)
	p := c.Pop()
	assertApprox(t, "circle x", p[0], -1, 1e-12)
	assertApprox(t, "circle y", p[1], 0, 1e-12)
}

// TestSphere_UnitNorm 驗證輸出恆在單位球面上
func TestSphere_UnitNorm(t *testing.T) {
	s, err := NewSphere([]int{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2000; i++ {
		p := s.Pop()
		assertApprox(t, "sphere norm", p[0]*p[0]+p[1]*p[1]+p[2]*p[2], 1, normTol)
	}
}

// TestSphere_FirstPoint 驗證第一個點：u=(0.5, 1/3) → z=0, φ=2π/3
func TestSphere_FirstPoint(t *testing.T) {
	s, _ := NewSphere([]int{2, 3})
	p := s.Pop()
	assertApprox(t, "sphere x", p[0], -0.5, 1e-12)
	assertApprox(t, "sphere y", p[1], math.Sqrt(3)/2, 1e-12)
	assertApprox(t, "sphere z", p[2], 0, 1e-12)
}

// TestSphere_UniformLatitude 驗證大樣本下 z 平均趨近 0（緯度均勻）
func TestSphere_UniformLatitude(t *testing.T) {
	s, _ := NewSphere([]int{2, 3})
	sum := 0.0
	const n = 4096
	for i := 0; i < n; i++ {
		sum += s.Pop()[2]
	}
	assertApprox(t, "sphere z mean", sum/n, 0, 0.01)
}

// TestSphere_ExtraDimsIgnored 驗證多餘維度被忽略且不影響前兩維
func TestSphere_ExtraDimsIgnored(t *testing.T) {
	a, _ := NewSphere([]int{2, 3})
	b, _ := NewSphere([]int{2, 3, 5})
	for i := 0; i < 100; i++ {
		pa, pb := a.Pop(), b.Pop()
		if pa != pb {
			t.Fatalf("point #%d diverged with extra base: %v vs %v", i+1, pa, pb)
		}
	}
}

// TestSphere_InsufficientBases 驗證維度不足的建構失敗
func TestSphere_InsufficientBases(t *testing.T) {
	_, err := NewSphere([]int{2})
	assertConfigErr(t, err, "sphere with 1 base")
	_, err = NewSphere3Hopf([]int{2, 3})
	assertConfigErr(t, err, "sphere3hopf with 2 bases")
}

// TestSphere3Hopf_UnitNorm 驗證輸出恆在 S³ 上
func TestSphere3Hopf_UnitNorm(t *testing.T) {
	s, err := NewSphere3Hopf([]int{2, 3, 5})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2000; i++ {
		p := s.Pop()
		n := p[0]*p[0] + p[1]*p[1] + p[2]*p[2] + p[3]*p[3]
		assertApprox(t, "hopf norm", n, 1, normTol)
	}
}

// TestSphere3Hopf_FirstPoint 驗證第一個點：u=(0.5, 1/3, 0.2) → θ=π/2
func TestSphere3Hopf_FirstPoint(t *testing.T) {
	s, _ := NewSphere3Hopf([]int{2, 3, 5})
	p := s.Pop()
	half := math.Sqrt2 / 2 // cos(π/4) = sin(π/4)
	assertApprox(t, "hopf a", p[0], half*math.Cos(2*math.Pi/3), 1e-12)
	assertApprox(t, "hopf b", p[1], half*math.Sin(2*math.Pi/3), 1e-12)
	assertApprox(t, "hopf c", p[2], half*math.Cos(2*math.Pi/5), 1e-12)
	assertApprox(t, "hopf d", p[3], half*math.Sin(2*math.Pi/5), 1e-12)
}

// TestGeometry_SnapshotRestore 驗證幾何生成器的快照還原
func TestGeometry_SnapshotRestore(t *testing.T) {
	s, _ := NewSphere3Hopf([]int{2, 3, 5})
	for i := 0; i < 9; i++ {
		s.Pop()
	}
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap) != 24 {
		t.Fatalf("snapshot length = %d, want 24", len(snap))
	}
	next := s.Pop()
	if err := s.Restore(snap); err != nil {
		t.Fatal(err)
	}
	if got := s.Pop(); got != next {
		t.Errorf("pop after restore = %v, want %v", got, next)
	}
}

// -----------------------------------------------------------------------------
// Tests for integer variant
// -----------------------------------------------------------------------------

// TestVdcInt_KnownValues 驗證整數版已知值
func TestVdcInt_KnownValues(t *testing.T) {
	// index 1、base 2、scale 11：反轉後為最高位 → 2^10
	if got := VdcInt(1, 2, 11); got != 1024 {
		t.Errorf("VdcInt(1, 2, 11) = %d, want 1024", got)
	}
	// 13/16 = 0.8125 的定點對應
	if got := VdcInt(11, 2, 4); got != 13 {
		t.Errorf("VdcInt(11, 2, 4) = %d, want 13", got)
	}
}

// TestVdCorputInt_PopAndReseed 驗證整數生成器推進與重設
func TestVdCorputInt_PopAndReseed(t *testing.T) {
	v, err := NewVdCorputInt(2, 11)
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Pop(); got != 1024 {
		t.Errorf("first pop = %d, want 1024", got)
	}
	v.Reseed(10)
	if got := v.Pop(); got != VdcInt(11, 2, 11) {
		t.Errorf("pop after reseed(10) = %d, want %d", got, VdcInt(11, 2, 11))
	}
}

// TestVdCorputInt_InvalidConfig 驗證整數版建構失敗條件
func TestVdCorputInt_InvalidConfig(t *testing.T) {
	_, err := NewVdCorputInt(1, 4)
	assertConfigErr(t, err, "int base < 2")
	_, err = NewVdCorputInt(2, 0)
	assertConfigErr(t, err, "scale < 1")

	// base^scale 溢位 uint64 → KindOverflow
	_, err = NewVdCorputInt(2, 64)
	if err == nil {
		t.Fatal("expected overflow error for 2^64")
	}
	if e, ok := errs.AsErr(err); !ok || e.Kind != errs.KindOverflow {
		t.Errorf("expected KindOverflow, got %v", err)
	}
}

// TestHaltonInt_Pop 驗證整數 Halton 的 lockstep 與輸出範圍
func TestHaltonInt_Pop(t *testing.T) {
	h, err := NewHaltonInt([]int{2, 3}, []int{11, 7})
	if err != nil {
		t.Fatal(err)
	}
	got := h.Pop()
	if got[0] != 1024 {
		t.Errorf("dim0 first pop = %d, want 1024", got[0])
	}
	if got[1] != VdcInt(1, 3, 7) {
		t.Errorf("dim1 first pop = %d, want %d", got[1], VdcInt(1, 3, 7))
	}

	_, err = NewHaltonInt([]int{2, 3}, []int{11})
	assertConfigErr(t, err, "length mismatch")
}
