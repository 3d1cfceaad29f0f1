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

package recorder

import (
	"bufio"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/ldslab/corefmt"
	"github.com/zintix-labs/ldslab/errs"
	"github.com/zintix-labs/ldslab/spec"
	"github.com/zintix-labs/ldslab/stats"
)

// 留存原始點數上限；超過後只累積統計，不再留原始點
const maxRetain = 1 << 16

// 單一點 frame 的上限（維度不會大到哪去，這裡抓很寬）
const maxFrameBytes = 1 << 12

// PointRecorder 序列紀錄員
//
// PointRecorder 負責紀錄生成器輸出點，並透過Done輸出均勻度報表。
// 前 maxRetain 個原始點會額外留存，供 Dump 落地與事後重放
type PointRecorder struct {
	GenName string
	GenId   spec.GID
	Kind    spec.Kind
	Dim     int

	report *stats.UniformReport
	retain []float64 // 扁平留存：retain[i*Dim : (i+1)*Dim]
	points int
}

func NewPointRecorder(gs *spec.GenSetting) (*PointRecorder, error) {
	s := new(PointRecorder)

	dim := gs.Dim()
	if dim < 1 {
		return s, errs.Configf("recorder: bad dim %d for kind %q", dim, gs.Kind)
	}

	// 標量流落在 [0,1)；幾何生成器的座標落在 [-1,1] 且應為單位向量
	unitNorm := gs.Kind == spec.KindCircle || gs.Kind == spec.KindSphere || gs.Kind == spec.KindSphere3Hopf
	buckets := stats.UnitBuckets(16)
	if unitNorm {
		buckets = stats.SymmetricBuckets(16)
	}

	s.GenName = gs.GenName
	s.GenId = gs.GenID
	s.Kind = gs.Kind
	s.Dim = dim
	s.report = stats.NewUniformReport(gs.GenName, gs.GenID, gs.Kind, dim, buckets, unitNorm)
	return s, nil
}

func MergePointRecorder(r []*PointRecorder) (*PointRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge point record err : empty input")
	}
	r0 := r[0]
	s := &PointRecorder{
		GenName: r0.GenName,
		GenId:   r0.GenId,
		Kind:    r0.Kind,
		Dim:     r0.Dim,
		report:  r0.report,
		retain:  r0.retain,
		points:  r0.points,
	}
	for _, v := range r[1:] {
		if v.GenName != r0.GenName {
			return s, errs.NewFatal("merge point record err : different gen name")
		}
		if v.Dim != r0.Dim {
			return s, errs.NewFatal("merge point record err : different dim")
		}
		s.report.Merge(v.report)
		if room := maxRetain*s.Dim - len(s.retain); room > 0 {
			take := v.retain
			if len(take) > room {
				take = take[:room]
			}
			s.retain = append(s.retain, take...)
		}
		s.points += v.points
	}
	return s, nil
}

// Record 紀錄一個輸出點。p 的長度必須等於 Dim。
func (s *PointRecorder) Record(p []float64) {
	s.report.Observe(p)
	s.points++
	if s.points <= maxRetain {
		s.retain = append(s.retain, p...)
	}
}

// Points 回傳已紀錄的點數。
func (s *PointRecorder) Points() int { return s.points }

// Retained 回傳留存的原始點（拷貝，逐點切好）。
func (s *PointRecorder) Retained() [][]float64 {
	n := len(s.retain) / s.Dim
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = append([]float64(nil), s.retain[i*s.Dim:(i+1)*s.Dim]...)
	}
	return out
}

func (s *PointRecorder) Done() *stats.UniformReport {
	s.report.Done()
	return s.report
}

// ============================================================
// ** 落地 / 重放 **
// ============================================================

// Dump 把留存的原始點串流寫出：zstd 包一層，內層逐點 frame
// （uvarint 長度 + big-endian float64 平鋪）。
func (s *PointRecorder) Dump(w io.Writer) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return errs.Wrap(err, "recorder: zstd writer")
	}

	// 首 frame 是維度，之後每 frame 一個點
	head := corefmt.EncodeFloat64s([]float64{float64(s.Dim)})
	if err := corefmt.WriteBlobFrame(enc, head); err != nil {
		enc.Close()
		return errs.Wrap(err, "recorder: dump head")
	}
	n := len(s.retain) / s.Dim
	for i := 0; i < n; i++ {
		payload := corefmt.EncodeFloat64s(s.retain[i*s.Dim : (i+1)*s.Dim])
		if err := corefmt.WriteBlobFrame(enc, payload); err != nil {
			enc.Close()
			return errs.Wrap(err, fmt.Sprintf("recorder: dump point %d", i))
		}
	}
	if err := enc.Close(); err != nil {
		return errs.Wrap(err, "recorder: zstd close")
	}
	return nil
}

// LoadPoints 讀回 Dump 寫出的點串流。
func LoadPoints(r io.Reader) ([][]float64, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, errs.Wrap(err, "recorder: zstd reader")
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	head, err := corefmt.ReadBlobFrame(br, maxFrameBytes)
	if err != nil {
		return nil, errs.Wrap(err, "recorder: load head")
	}
	hv, err := corefmt.DecodeFloat64s(head)
	if err != nil || len(hv) != 1 {
		return nil, errs.NewFatal("recorder: bad dump head")
	}
	dim := int(hv[0])
	if dim < 1 {
		return nil, errs.NewFatal(fmt.Sprintf("recorder: bad dump dim %d", dim))
	}

	var out [][]float64
	for {
		payload, err := corefmt.ReadBlobFrame(br, maxFrameBytes)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errs.Wrap(err, fmt.Sprintf("recorder: load point %d", len(out)))
		}
		p, err := corefmt.DecodeFloat64s(payload)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Sprintf("recorder: decode point %d", len(out)))
		}
		if len(p) != dim {
			return nil, errs.NewFatal(fmt.Sprintf("recorder: point %d dim %d, head says %d", len(out), len(p), dim))
		}
		out = append(out, p)
	}
}
