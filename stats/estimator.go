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

package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ============================================================
// ** 結構宣告 **
// ============================================================

// 多流均勻度評估
//
// 輸入通常是多工模擬的各 worker 報告，或 LDS 與 PRNG 基準的配對
type EstimatorStreams struct {
	DiscStat   DiscStat
	BucketStat BucketStat
}

// 星差異敘事
type DiscStat struct {
	Median PointStat // 各流星差異的中位數
	Worst  float64   // 最差的那一流
}

// 對應分桶的統計
type BucketStat struct {
	BucketLable []string    // 分桶標籤
	Share       []PointStat // 合併後每桶占比 + CP 信賴區間
}

// PointStat 點估計 回傳 估計值 以及信賴區間
type PointStat struct {
	Hat float64
	CI  CI
}

// ============================================================
// ** 對外 : 多流均勻度評估 **
// ============================================================

// EstimatorUniformStreams 多流均勻度評估
//
// 1. Disc 敘事 : 各流一維星差異的中位數與最差值
//
// 2. Bucket 敘事 : 合併第一軸分桶後，每桶占比的點估計與 Clopper–Pearson 區間。
// 低差異序列的占比區間應該緊貼 1/k；PRNG 基準在相同點數下會明顯更散
func EstimatorUniformStreams(sts []*UniformReport) *EstimatorStreams {
	n := len(sts)
	out := &EstimatorStreams{}
	if n == 0 {
		return out
	}

	// ------------------------------------------------------------
	// 1) Disc 敘事：收集每流星差異並做分位
	// ------------------------------------------------------------
	disc := make([]float64, n)
	for i, s := range sts {
		s.Done()
		disc[i] = s.Summary.StarDisc
		if disc[i] > out.DiscStat.Worst {
			out.DiscStat.Worst = disc[i]
		}
	}
	medHat := quantilePoint(disc, 0.5)
	medLo, medHi := quantileCI(disc, 0.5, 0.95)
	out.DiscStat.Median = PointStat{Hat: medHat, CI: CI{Lo: medLo, Hi: medHi}}

	// ------------------------------------------------------------
	// 2) Bucket 敘事：合併第一軸桶計數，逐桶 CP 區間
	// ------------------------------------------------------------
	labels := sts[0].Dist.Bucket
	k := len(labels)
	merged := make([]int, k)
	total := 0
	for _, s := range sts {
		for bi := 0; bi < k && bi < len(s.Dist.Collect[0]); bi++ {
			merged[bi] += s.Dist.Collect[0][bi]
			total += s.Dist.Collect[0][bi]
		}
	}
	out.BucketStat = BucketStat{BucketLable: labels, Share: make([]PointStat, k)}
	for bi := 0; bi < k; bi++ {
		hat, ci := proportionCICP(merged[bi], total, 0.95)
		out.BucketStat.Share[bi] = PointStat{Hat: hat, CI: ci}
	}

	return out
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// meanStd 由和與平方和回推樣本均值與（n-1）標準差
func meanStd(sum, sqSum float64, n int) (mean, std float64) {
	if n == 0 {
		return 0, 0
	}
	mean = sum / float64(n)
	if n < 2 {
		return mean, 0
	}
	variance := (sqSum - sum*sum/float64(n)) / (float64(n) - 1)
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// meanCINormal 均值的常態近似信賴區間
func meanCINormal(mean, std float64, n int, confidence float64) CI {
	if n < 2 {
		return CI{Lo: mean, Hi: mean}
	}
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - (1-confidence)/2)
	se := std / math.Sqrt(float64(n))
	return CI{Lo: mean - z*se, Hi: mean + z*se}
}

// StarDiscrepancy1D 一維星差異 D*
//
// D* = max_i max( i/N - x_(i), x_(i) - (i-1)/N )，x_(i) 為排序後樣本。
// 低差異序列應為 O(log N / N)，獨立均勻抽樣約為 O(1/√N)
func StarDiscrepancy1D(sample []float64) float64 {
	n := len(sample)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, sample)
	sort.Float64s(cp)

	d := 0.0
	for i, x := range cp {
		up := float64(i+1)/float64(n) - x
		dn := x - float64(i)/float64(n)
		if up > d {
			d = up
		}
		if dn > d {
			d = dn
		}
	}
	return d
}

// BucketChi2P 等寬分桶的卡方均勻度 p 值（右尾）
func BucketChi2P(counts []int) float64 {
	k := len(counts)
	if k < 2 {
		return 1
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 1
	}
	exp := float64(total) / float64(k)
	chi2 := 0.0
	for _, c := range counts {
		d := float64(c) - exp
		chi2 += d * d / exp
	}
	return distuv.ChiSquared{K: float64(k - 1)}.Survival(chi2)
}

// 想估「第 q 分位」的上下界。做法：把 order statistic 的秩視為二項→Beta 反推 p 範圍，再把 p 轉回樣本索引。
// 回傳 (loValue, hiValue)
func quantileCI(data []float64, q, confidence float64) (float64, float64) {
	n := len(data)
	if n == 0 {
		return 0, 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)

	alpha := 1 - confidence
	k := int(q * float64(n))
	if k < 1 {
		k = 1
	} else if k > n-1 {
		k = n - 1
	}

	bLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
	bHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
	pLo := bLo.Quantile(alpha / 2)
	pHi := bHi.Quantile(1 - alpha/2)

	li := int(pLo * float64(n))
	ui := int(pHi * float64(n))
	if ui > 0 {
		ui -= 1
	}
	if li < 0 {
		li = 0
	}
	if li > n-1 {
		li = n - 1
	}
	if ui < 0 {
		ui = 0
	}
	if ui > n-1 {
		ui = n - 1
	}
	return cp[li], cp[ui]
}

// quantilePoint returns the empirical quantile point estimate at q.
func quantilePoint(data []float64, q float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)
	// 最近秩法
	idx := int(q * float64(n))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return cp[idx]
}

// ============================================================
// ** 輸出函數 **
// ============================================================

func (est *EstimatorStreams) Out() {
	// 1) Star discrepancy across streams
	fmt.Println("=== Star Discrepancy (per stream) ===")
	discKeys := []string{"Median D*", "Worst D*"}
	discMsg := map[string]string{
		"Median D*": fmtHatCI(est.DiscStat.Median.Hat, est.DiscStat.Median.CI),
		"Worst D*":  fmt.Sprintf("%.6f", est.DiscStat.Worst),
	}
	printTable("Star Discrepancy (per stream)", discKeys, discMsg)

	// 2) Bucket shares (axis 0, merged)
	fmt.Println("\n=== Bucket Shares (axis 0, merged) ===")
	for i, label := range est.BucketStat.BucketLable {
		ps := est.BucketStat.Share[i]
		fmt.Printf("%-16s : %s\n", label, fmtHatCIpct01(ps.Hat, ps.CI))
	}
}

func printTable(title string, keys []string, msg map[string]string) {
	fmt.Println(title)
	maxKeyLen := 0
	for _, k := range keys {
		if len(k) > maxKeyLen {
			maxKeyLen = len(k)
		}
	}
	for _, k := range keys {
		fmt.Printf("  %-*s : %s\n", maxKeyLen, k, msg[k])
	}
}

func fmtPct01(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}

func fmtHatCIpct01(hat float64, ci CI) string {
	return fmt.Sprintf("%s [%s, %s]", fmtPct01(hat), fmtPct01(ci.Lo), fmtPct01(ci.Hi))
}

func fmtHatCI(hat float64, ci CI) string {
	return fmt.Sprintf("%.6f [%.6f, %.6f]", hat, ci.Lo, ci.Hi)
}
