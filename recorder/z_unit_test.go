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

package recorder_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/zintix-labs/ldslab/recorder"
	"github.com/zintix-labs/ldslab/spec"
)

func vdcSetting(name string, id spec.GID) *spec.GenSetting {
	return &spec.GenSetting{GenName: name, GenID: id, Kind: spec.KindVdc, Bases: []int{2}}
}

func TestPointRecorder_RecordDone(t *testing.T) {
	r, err := recorder.NewPointRecorder(vdcSetting("vdc2", 1))
	if err != nil {
		t.Fatalf("NewPointRecorder: %v", err)
	}
	if r.Dim != 1 {
		t.Fatalf("Dim = %d, want 1", r.Dim)
	}

	for _, v := range []float64{0.5, 0.25, 0.75, 0.125} {
		r.Record([]float64{v})
	}
	rep := r.Done()

	if rep.Summary.Points != 4 {
		t.Errorf("Points = %d, want 4", rep.Summary.Points)
	}
	if got := rep.Axis.Mean[0]; math.Abs(got-0.40625) > 1e-12 {
		t.Errorf("Mean = %v, want 0.40625", got)
	}
	if got := rep.Summary.StarDisc; math.Abs(got-0.25) > 1e-12 {
		t.Errorf("StarDisc = %v, want 0.25", got)
	}
	if r.Points() != 4 {
		t.Errorf("Points() = %d, want 4", r.Points())
	}
}

func TestPointRecorder_GeometryBuckets(t *testing.T) {
	gs := &spec.GenSetting{GenName: "sp", GenID: 2, Kind: spec.KindSphere, Bases: []int{2, 3}}
	r, err := recorder.NewPointRecorder(gs)
	if err != nil {
		t.Fatalf("NewPointRecorder: %v", err)
	}
	if r.Dim != 3 {
		t.Fatalf("Dim = %d, want 3", r.Dim)
	}
	// 球面上的單位向量：NormErr 應該維持 ~0
	r.Record([]float64{0, 0, 1})
	r.Record([]float64{0.6, 0.8, 0})
	rep := r.Done()
	if rep.Summary.NormErr > 1e-12 {
		t.Errorf("NormErr = %v, want ~0", rep.Summary.NormErr)
	}
}

func TestMergePointRecorder(t *testing.T) {
	a, _ := recorder.NewPointRecorder(vdcSetting("vdc2", 1))
	b, _ := recorder.NewPointRecorder(vdcSetting("vdc2", 1))
	a.Record([]float64{0.5})
	a.Record([]float64{0.25})
	b.Record([]float64{0.75})

	m, err := recorder.MergePointRecorder([]*recorder.PointRecorder{a, b})
	if err != nil {
		t.Fatalf("MergePointRecorder: %v", err)
	}
	if m.Points() != 3 {
		t.Errorf("merged Points = %d, want 3", m.Points())
	}
	rep := m.Done()
	if rep.Summary.Points != 3 {
		t.Errorf("merged report Points = %d, want 3", rep.Summary.Points)
	}

	c, _ := recorder.NewPointRecorder(vdcSetting("other", 9))
	if _, err := recorder.MergePointRecorder([]*recorder.PointRecorder{a, c}); err == nil {
		t.Error("merging different gen names should fail")
	}
	if _, err := recorder.MergePointRecorder(nil); err == nil {
		t.Error("merging empty input should fail")
	}
}

func TestPointRecorder_DumpLoad(t *testing.T) {
	gs := &spec.GenSetting{GenName: "circle", GenID: 3, Kind: spec.KindCircle, Bases: []int{2}}
	r, err := recorder.NewPointRecorder(gs)
	if err != nil {
		t.Fatalf("NewPointRecorder: %v", err)
	}
	want := [][]float64{{-1, 0}, {0, 1}, {0, -1}, {0.5, math.Sqrt(3) / 2}}
	for _, p := range want {
		r.Record(p)
	}

	var buf bytes.Buffer
	if err := r.Dump(&buf); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	got, err := recorder.LoadPoints(&buf)
	if err != nil {
		t.Fatalf("LoadPoints: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("loaded %d points, want %d", len(got), len(want))
	}
	for i := range want {
		for d := range want[i] {
			if got[i][d] != want[i][d] {
				t.Errorf("point %d axis %d = %v, want %v", i, d, got[i][d], want[i][d])
			}
		}
	}

	ret := r.Retained()
	if len(ret) != len(want) || len(ret[0]) != 2 {
		t.Errorf("Retained shape = %dx%d, want %dx2", len(ret), len(ret[0]), len(want))
	}
}

func TestLoadPoints_Garbage(t *testing.T) {
	if _, err := recorder.LoadPoints(bytes.NewReader([]byte("not zstd at all"))); err == nil {
		t.Error("garbage input should fail")
	}
}
