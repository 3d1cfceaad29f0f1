package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/ldslab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 第一軸保留樣本上限（估計星差異用）
const maxDiscSample = 1 << 16

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// UniformReport 序列均勻度報告
type UniformReport struct {
	Summary *SummaryReport `json:"Summary"`
	Axis    *AxisReport    `json:"Axis"`
	Dist    *DistReport    `json:"Dist"`

	buckets  *AxisBuckets
	unitNorm bool
	sample   []float64
	isDone   bool
}

type SummaryReport struct {
	GenName  string    `json:"GenName"`
	GenId    spec.GID  `json:"GenId"`
	Kind     spec.Kind `json:"Kind"`
	Dim      int      `json:"Dim"`
	Points   int      `json:"Points"`
	StarDisc float64  `json:"StarDisc"`
	Chi2P    float64  `json:"Chi2P"`
	NormErr  float64  `json:"NormErr,omitzero"`
}

// AxisReport 逐軸矩統計
//
// 紀錄時只累積和與平方和，避免每點重算。紀錄完成後Done()會將結果整理填入
type AxisReport struct {
	Sum    []float64 `json:"Sum"`
	SqSum  []float64 `json:"SqSum"` // 平方和
	Min    []float64 `json:"Min"`
	Max    []float64 `json:"Max"`
	Mean   []float64 `json:"Mean"`
	MeanCI []CI      `json:"MeanCI"`
	Std    []float64 `json:"Std"`
}

// DistReport 逐軸分桶落點統計
type DistReport struct {
	Bucket  []string    `json:"Bucket"`
	Collect [][]int     `json:"Collect"`
	Dist    [][]float64 `json:"Dist"`
}

// NewUniformReport 建立空白報告。
//
// buckets 決定分桶範圍（標量流用 UnitBuckets、球面座標用 SymmetricBuckets）；
// unitNorm 開啟時會額外追蹤 | ‖v‖² - 1 | 的最大偏差。
func NewUniformReport(name string, gid spec.GID, kind spec.Kind, dim int, buckets *AxisBuckets, unitNorm bool) *UniformReport {
	r := &UniformReport{
		Summary: &SummaryReport{
			GenName: name,
			GenId:   gid,
			Kind:    kind,
			Dim:     dim,
		},
		Axis: &AxisReport{
			Sum:   make([]float64, dim),
			SqSum: make([]float64, dim),
			Min:   make([]float64, dim),
			Max:   make([]float64, dim),
		},
		Dist: &DistReport{
			Bucket:  buckets.Labels(),
			Collect: make([][]int, dim),
		},
		buckets:  buckets,
		unitNorm: unitNorm,
	}
	for d := 0; d < dim; d++ {
		r.Axis.Min[d] = math.Inf(1)
		r.Axis.Max[d] = math.Inf(-1)
		r.Dist.Collect[d] = make([]int, buckets.K())
	}
	return r
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Observe 累積一個輸出點。p 的長度必須等於報告維度。
func (r *UniformReport) Observe(p []float64) {
	r.Summary.Points++
	normSq := 0.0
	for d, v := range p {
		r.Axis.Sum[d] += v
		r.Axis.SqSum[d] += v * v
		if v < r.Axis.Min[d] {
			r.Axis.Min[d] = v
		}
		if v > r.Axis.Max[d] {
			r.Axis.Max[d] = v
		}
		r.Dist.Collect[d][r.buckets.Locate(v)]++
		normSq += v * v
	}
	if r.unitNorm {
		if e := math.Abs(normSq - 1); e > r.Summary.NormErr {
			r.Summary.NormErr = e
		}
	}
	if len(r.sample) < maxDiscSample {
		r.sample = append(r.sample, p[0])
	}
}

// Merge 把另一份（同構的）報告併入本報告；多工模擬收尾用。
func (r *UniformReport) Merge(o *UniformReport) {
	r.Summary.Points += o.Summary.Points
	if o.Summary.NormErr > r.Summary.NormErr {
		r.Summary.NormErr = o.Summary.NormErr
	}
	for d := range r.Axis.Sum {
		r.Axis.Sum[d] += o.Axis.Sum[d]
		r.Axis.SqSum[d] += o.Axis.SqSum[d]
		if o.Axis.Min[d] < r.Axis.Min[d] {
			r.Axis.Min[d] = o.Axis.Min[d]
		}
		if o.Axis.Max[d] > r.Axis.Max[d] {
			r.Axis.Max[d] = o.Axis.Max[d]
		}
		for b := range r.Dist.Collect[d] {
			r.Dist.Collect[d][b] += o.Dist.Collect[d][b]
		}
	}
	if room := maxDiscSample - len(r.sample); room > 0 {
		take := o.sample
		if len(take) > room {
			take = take[:room]
		}
		r.sample = append(r.sample, take...)
	}
}

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 紀錄過程只累積和、平方和與桶計數，所以統計完成後
//
// 請使用 Done 來一次性計算均值、信賴區間、星差異與卡方 p 值
func (r *UniformReport) Done() {
	if r.isDone {
		return
	}
	n := r.Summary.Points
	dim := r.Summary.Dim

	r.Axis.Mean = make([]float64, dim)
	r.Axis.MeanCI = make([]CI, dim)
	r.Axis.Std = make([]float64, dim)
	r.Dist.Dist = make([][]float64, dim)
	for d := 0; d < dim; d++ {
		mean, std := meanStd(r.Axis.Sum[d], r.Axis.SqSum[d], n)
		r.Axis.Mean[d] = mean
		r.Axis.Std[d] = std
		r.Axis.MeanCI[d] = meanCINormal(mean, std, n, 0.95)

		r.Dist.Dist[d] = make([]float64, len(r.Dist.Collect[d]))
		if n > 0 {
			for b, c := range r.Dist.Collect[d] {
				r.Dist.Dist[d][b] = float64(c) / float64(n)
			}
		}
	}

	r.Summary.StarDisc = StarDiscrepancy1D(r.sample)
	r.Summary.Chi2P = BucketChi2P(r.Dist.Collect[0])

	r.isDone = true
}

func (r *UniformReport) WriteWith(w io.Writer, rep UniformReportRender) error {
	r.Done()
	return rep.Write(w, r)
}

func (r *UniformReport) StdOut(ut time.Duration) {
	r.Done()
	formatDuration(ut, r.Summary.Points)
	sk, sm := r.fmtBasic()
	str := fmtTable(r.Summary.GenName, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, points int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	pps := int(float64(points) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\npps : %d points/sec\n", sec, pps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		s = s % 60
		p.Printf("used: %dm %ds\npps : %d points/sec\n", m, s, pps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\npps : %d points/sec\n", h, m, s, pps)
}

// StdOut

func (r *UniformReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Generator":    p.Sprintf("%s", r.Summary.GenName),
		"Gen ID":       fmt.Sprintf("%d", r.Summary.GenId),
		"Kind":         string(r.Summary.Kind),
		"Dim":          p.Sprintf("%d", r.Summary.Dim),
		"Total Points": p.Sprintf("%d", r.Summary.Points),
		"Axis0 Mean":   p.Sprintf("%.6f", r.Axis.Mean[0]),
		"Mean 95% CI":  p.Sprintf("[%.6f,%.6f]", r.Axis.MeanCI[0].Lo, r.Axis.MeanCI[0].Hi),
		"Axis0 Std":    p.Sprintf("%.6f", r.Axis.Std[0]),
		"Star Disc":    p.Sprintf("%.6f", r.Summary.StarDisc),
		"Chi2 p":       p.Sprintf("%.4f", r.Summary.Chi2P),
	}
	keys := []string{"Generator", "Gen ID", "Kind", "Dim", "Total Points", "Axis0 Mean", "Mean 95% CI", "Axis0 Std", "Star Disc", "Chi2 p"}
	if r.unitNorm {
		basic["Norm Err"] = p.Sprintf("%.3e", r.Summary.NormErr)
		keys = append(keys, "Norm Err")
	}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
