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

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/ldslab/spec"
	"github.com/zintix-labs/ldslab/stats"
)

// buildReport constructs a 1-D UniformReport over [0,1) from raw values.
func buildReport(values []float64, k int) *stats.UniformReport {
	r := stats.NewUniformReport("TestGen", spec.GID(0), spec.KindVdc, 1, stats.UnitBuckets(k), false)
	buf := make([]float64, 1)
	for _, v := range values {
		buf[0] = v
		r.Observe(buf)
	}
	r.Done()
	return r
}

func TestAxisBuckets_Locate(t *testing.T) {
	b := stats.UnitBuckets(4)
	cases := []struct {
		x    float64
		want int
	}{
		{0, 0}, {0.249, 0}, {0.25, 1}, {0.5, 2}, {0.999, 3},
		{-0.1, 0}, {1.0, 3}, {1.5, 3},
	}
	for _, c := range cases {
		if got := b.Locate(c.x); got != c.want {
			t.Errorf("Locate(%v) = %d, want %d", c.x, got, c.want)
		}
	}

	s := stats.SymmetricBuckets(4)
	if got := s.Locate(-1); got != 0 {
		t.Errorf("SymmetricBuckets Locate(-1) = %d, want 0", got)
	}
	if got := s.Locate(0.99); got != 3 {
		t.Errorf("SymmetricBuckets Locate(0.99) = %d, want 3", got)
	}
	if s.K() != 4 || len(s.Labels()) != 4 {
		t.Fatalf("SymmetricBuckets shape mismatch: K=%d labels=%d", s.K(), len(s.Labels()))
	}
}

func TestUniformReport_ObserveDone(t *testing.T) {
	// 前四個 base-2 van der Corput 值
	r := buildReport([]float64{0.5, 0.25, 0.75, 0.125}, 4)

	if r.Summary.Points != 4 {
		t.Fatalf("Points = %d, want 4", r.Summary.Points)
	}
	if got := r.Axis.Mean[0]; math.Abs(got-0.40625) > 1e-12 {
		t.Errorf("Mean[0] = %v, want 0.40625", got)
	}
	if r.Axis.Min[0] != 0.125 || r.Axis.Max[0] != 0.75 {
		t.Errorf("Min/Max = %v/%v, want 0.125/0.75", r.Axis.Min[0], r.Axis.Max[0])
	}
	for bi, c := range r.Dist.Collect[0] {
		if c != 1 {
			t.Errorf("bucket %d count = %d, want 1", bi, c)
		}
		if got := r.Dist.Dist[0][bi]; math.Abs(got-0.25) > 1e-12 {
			t.Errorf("bucket %d share = %v, want 0.25", bi, got)
		}
	}
	// 每桶計數相同 => 卡方為零，右尾 p 值為 1
	if math.Abs(r.Summary.Chi2P-1) > 1e-12 {
		t.Errorf("Chi2P = %v, want 1", r.Summary.Chi2P)
	}
	if got := r.Summary.StarDisc; math.Abs(got-0.25) > 1e-12 {
		t.Errorf("StarDisc = %v, want 0.25", got)
	}
	ci := r.Axis.MeanCI[0]
	if !(ci.Lo < r.Axis.Mean[0] && r.Axis.Mean[0] < ci.Hi) {
		t.Errorf("MeanCI %v does not bracket mean %v", ci, r.Axis.Mean[0])
	}
}

func TestUniformReport_Merge(t *testing.T) {
	a := stats.NewUniformReport("A", spec.GID(1), spec.KindVdc, 1, stats.UnitBuckets(4), false)
	b := stats.NewUniformReport("A", spec.GID(1), spec.KindVdc, 1, stats.UnitBuckets(4), false)
	a.Observe([]float64{0.1})
	a.Observe([]float64{0.9})
	b.Observe([]float64{0.3})

	a.Merge(b)
	a.Done()

	if a.Summary.Points != 3 {
		t.Fatalf("merged Points = %d, want 3", a.Summary.Points)
	}
	if got := a.Axis.Mean[0]; math.Abs(got-(1.3/3)) > 1e-12 {
		t.Errorf("merged Mean = %v, want %v", got, 1.3/3)
	}
	if a.Axis.Min[0] != 0.1 || a.Axis.Max[0] != 0.9 {
		t.Errorf("merged Min/Max = %v/%v", a.Axis.Min[0], a.Axis.Max[0])
	}
	wantCollect := []int{1, 1, 0, 1}
	for bi, c := range a.Dist.Collect[0] {
		if c != wantCollect[bi] {
			t.Errorf("merged bucket %d = %d, want %d", bi, c, wantCollect[bi])
		}
	}
}

func TestUniformReport_NormErr(t *testing.T) {
	r := stats.NewUniformReport("C", spec.GID(2), spec.KindCircle, 2, stats.SymmetricBuckets(8), true)
	r.Observe([]float64{1, 0})
	r.Observe([]float64{0.6, 0.8})
	if r.Summary.NormErr > 1e-12 {
		t.Fatalf("NormErr = %v after unit vectors, want ~0", r.Summary.NormErr)
	}
	r.Observe([]float64{0.5, 0.5})
	if got := r.Summary.NormErr; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("NormErr = %v, want 0.5", got)
	}
}

func TestStarDiscrepancy1D(t *testing.T) {
	if got := stats.StarDiscrepancy1D(nil); got != 0 {
		t.Errorf("empty sample D* = %v, want 0", got)
	}
	if got := stats.StarDiscrepancy1D([]float64{0.5}); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("single point D* = %v, want 0.5", got)
	}
}

func TestBucketChi2P(t *testing.T) {
	if got := stats.BucketChi2P([]int{5, 5, 5, 5}); math.Abs(got-1) > 1e-12 {
		t.Errorf("uniform counts p = %v, want 1", got)
	}
	if got := stats.BucketChi2P([]int{100, 0, 0, 0}); got > 1e-3 {
		t.Errorf("skewed counts p = %v, want << 1", got)
	}
	if got := stats.BucketChi2P(nil); got != 1 {
		t.Errorf("degenerate input p = %v, want 1", got)
	}
}

func TestEstimatorUniformStreams(t *testing.T) {
	sts := []*stats.UniformReport{
		buildReport([]float64{0.5, 0.25, 0.75, 0.125}, 4),
		buildReport([]float64{0.625, 0.375, 0.875, 0.0625}, 4),
		buildReport([]float64{0.1, 0.2, 0.6, 0.9}, 4),
	}
	est := stats.EstimatorUniformStreams(sts)

	med := est.DiscStat.Median
	if med.Hat <= 0 || med.Hat > 1 {
		t.Fatalf("median D* = %v out of range", med.Hat)
	}
	if est.DiscStat.Worst < med.Hat {
		t.Errorf("worst D* %v < median %v", est.DiscStat.Worst, med.Hat)
	}

	sum := 0.0
	for _, ps := range est.BucketStat.Share {
		if !(ps.CI.Lo <= ps.Hat && ps.Hat <= ps.CI.Hi) {
			t.Errorf("bucket CI %v does not bracket %v", ps.CI, ps.Hat)
		}
		sum += ps.Hat
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("bucket shares sum = %v, want 1", sum)
	}

	if out := stats.EstimatorUniformStreams(nil); out == nil {
		t.Error("empty input should still return a report")
	}
}

func TestRender_JSONRoundTrip(t *testing.T) {
	r := buildReport([]float64{0.5, 0.25, 0.75}, 4)
	var buf bytes.Buffer
	if err := r.WriteWith(&buf, &stats.JsonUniformReportRender{}); err != nil {
		t.Fatalf("json render: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode rendered json: %v", err)
	}
	if _, ok := decoded["Summary"]; !ok {
		t.Error("rendered json misses Summary")
	}
}

func TestRender_YAMLFlowStyle(t *testing.T) {
	r := buildReport([]float64{0.5, 0.25, 0.75}, 4)
	var buf bytes.Buffer
	if err := r.WriteWith(&buf, &stats.YAMLUniformReportRender{}); err != nil {
		t.Fatalf("yaml render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Summary:") {
		t.Error("rendered yaml misses Summary")
	}
	// 一維陣列應該使用 flow style 輸出
	if !strings.Contains(out, "[") {
		t.Error("rendered yaml has no flow-style sequences")
	}
}
