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

package ldslab_test

import (
	"context"
	"math"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/ldslab"
	"github.com/zintix-labs/ldslab/dto"
	"github.com/zintix-labs/ldslab/sdk/core"
	"github.com/zintix-labs/ldslab/spec"
)

func testConfigFS() fstest.MapFS {
	return fstest.MapFS{
		"vdc2.yaml": &fstest.MapFile{Data: []byte(
			"gen_name: vdc-base2\ngen_id: 1\nkind: vdc\nbases: [2]\nseed: 0\n",
		)},
		"halton23.yaml": &fstest.MapFile{Data: []byte(
			"gen_name: halton-2d\ngen_id: 2\nkind: halton\nbases: [2, 3]\nseed: 0\n",
		)},
		"circle.yaml": &fstest.MapFile{Data: []byte(
			"gen_name: circle-base2\ngen_id: 3\nkind: circle\nbases: [2]\nseed: 0\n",
		)},
		"sphere.json": &fstest.MapFile{Data: []byte(
			`{"gen_name": "sphere-23", "gen_id": 4, "kind": "sphere", "bases": [2, 3], "seed": 0}`,
		)},
	}
}

func newTestLab(t *testing.T) *ldslab.Ldslab {
	t.Helper()
	lab, err := ldslab.NewAuto(core.Default(), ldslab.Configs(testConfigFS()))
	if err != nil {
		t.Fatalf("NewAuto: %v", err)
	}
	return lab
}

func TestNewAuto_RegistersAllConfigs(t *testing.T) {
	lab := newTestLab(t)

	ids := lab.IDs()
	if len(ids) != 4 {
		t.Fatalf("IDs len = %d, want 4", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("IDs not sorted: %v", ids)
		}
	}

	ent, ok := lab.EntryByName("halton-2d")
	if !ok {
		t.Fatal("EntryByName(halton-2d) not found")
	}
	if ent.GID != 2 {
		t.Fatalf("halton-2d GID = %d, want 2", ent.GID)
	}

	sum, err := lab.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(sum) != 4 {
		t.Fatalf("Summary len = %d, want 4", len(sum))
	}
	if sum[1].Kind != spec.KindHalton || sum[1].Dim != 2 {
		t.Fatalf("summary[1] = %+v, want halton dim 2", sum[1])
	}
}

func TestNewAuto_DuplicateGenID(t *testing.T) {
	cfg := testConfigFS()
	cfg["dup.yaml"] = &fstest.MapFile{Data: []byte(
		"gen_name: another\ngen_id: 1\nkind: vdc\nbases: [3]\nseed: 0\n",
	)}
	if _, err := ldslab.NewAuto(core.Default(), ldslab.Configs(cfg)); err == nil {
		t.Fatal("NewAuto with duplicate gen_id should fail")
	}
}

func TestNewAuto_NilFactory(t *testing.T) {
	if _, err := ldslab.NewAuto(nil, ldslab.Configs(testConfigFS())); err == nil {
		t.Fatal("NewAuto with nil factory should fail")
	}
}

func TestNewMachine_Deterministic(t *testing.T) {
	lab := newTestLab(t)

	m1, err := lab.NewMachine(1)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	m2, err := lab.NewMachineWithSeed(1, 0)
	if err != nil {
		t.Fatalf("NewMachineWithSeed: %v", err)
	}

	// 同一份設定 + 同一個起始 index，兩台機台必定同步。
	for i := 0; i < 16; i++ {
		p1 := m1.Pop()
		p2 := m2.Pop()
		if p1[0] != p2[0] {
			t.Fatalf("point %d mismatch: %v vs %v", i, p1, p2)
		}
	}
}

func TestMachine_PointsReplayAndReposition(t *testing.T) {
	lab := newTestLab(t)
	m, err := lab.NewMachine(1)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}

	q := &dto.PointsQuery{GenId: 1, Count: 4}
	first, err := m.Points(q)
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if first.Count != 4 || len(first.Points) != 4 {
		t.Fatalf("first batch count = %d/%d, want 4", first.Count, len(first.Points))
	}

	// 快照重播：帶 start_b64u 回放同一批，且不影響機台的現行位置。
	replayQ := &dto.PointsQuery{GenId: 1, Count: 4}
	replayQ.StartSnap = mustDecodeSnap(t, first.State.StartSnapB64U)
	replay, err := m.Points(replayQ)
	if err != nil {
		t.Fatalf("replay Points: %v", err)
	}
	for i := range first.Points {
		if first.Points[i][0] != replay.Points[i][0] {
			t.Fatalf("replay point %d mismatch", i)
		}
	}

	// 重播後機台應接續原位置：下一批從第 5 點開始，即 seed=4 的序列。
	next, err := m.Points(&dto.PointsQuery{GenId: 1, Count: 1})
	if err != nil {
		t.Fatalf("next Points: %v", err)
	}
	ref, err := lab.NewMachineWithSeed(1, 4)
	if err != nil {
		t.Fatalf("NewMachineWithSeed: %v", err)
	}
	if want := ref.Pop()[0]; next.Points[0][0] != want {
		t.Fatalf("after replay next point = %v, want %v", next.Points[0][0], want)
	}

	// 持久跳位：帶 seed 重新定位，之後的序列從該 index 繼續。
	seekQ := &dto.PointsQuery{GenId: 1, Count: 2, Seed: 0, HasSeed: true}
	seek, err := m.Points(seekQ)
	if err != nil {
		t.Fatalf("seek Points: %v", err)
	}
	if seek.Points[0][0] != first.Points[0][0] {
		t.Fatal("reposition to seed 0 should restart the sequence")
	}
}

func TestMachine_PointsValidation(t *testing.T) {
	lab := newTestLab(t)
	m, err := lab.NewMachine(1)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}

	if _, err := m.Points(&dto.PointsQuery{GenId: 99, Count: 1}); err == nil {
		t.Fatal("mismatched gen id should fail")
	}
	if _, err := m.Points(&dto.PointsQuery{GenId: 1, Count: 0}); err == nil {
		t.Fatal("zero count should fail")
	}
	if _, err := m.Points(&dto.PointsQuery{GenId: 1, GenName: "not-this-one", Count: 1}); err == nil {
		t.Fatal("mismatched gen name should fail")
	}
}

func TestSimulator_SimMatchesSimMP(t *testing.T) {
	lab := newTestLab(t)

	s1, err := lab.NewSimulator(2)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	r1, _, err := s1.Sim(4096, false)
	if err != nil {
		t.Fatalf("Sim: %v", err)
	}

	s2, err := lab.NewSimulator(2)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	r2, _, err := s2.SimMP(1024, 4, false)
	if err != nil {
		t.Fatalf("SimMP: %v", err)
	}

	// 分段平行與單機逐點跑的是同一段序列，統計必須完全一致。
	if r1.Summary.Points != 4096 || r2.Summary.Points != 4096 {
		t.Fatalf("points = %d / %d, want 4096", r1.Summary.Points, r2.Summary.Points)
	}
	for d := 0; d < 2; d++ {
		if math.Abs(r1.Axis.Mean[d]-r2.Axis.Mean[d]) > 1e-12 {
			t.Fatalf("axis %d mean mismatch: %v vs %v", d, r1.Axis.Mean[d], r2.Axis.Mean[d])
		}
	}
	if r1.Summary.StarDisc != r2.Summary.StarDisc {
		t.Fatalf("star disc mismatch: %v vs %v", r1.Summary.StarDisc, r2.Summary.StarDisc)
	}
}

func TestSimulator_LowDiscrepancyBeatsBaseline(t *testing.T) {
	lab := newTestLab(t)

	s, err := lab.NewSimulatorWithSeed(1, 0)
	if err != nil {
		t.Fatalf("NewSimulatorWithSeed: %v", err)
	}
	lds, _, err := s.Sim(8192, false)
	if err != nil {
		t.Fatalf("Sim: %v", err)
	}
	base, _, err := s.SimBaseline(8192, false)
	if err != nil {
		t.Fatalf("SimBaseline: %v", err)
	}

	// 低差異序列的 star discrepancy 應明顯優於 PRNG 基線（N=8192 時約差一個量級）。
	if lds.Summary.StarDisc >= base.Summary.StarDisc {
		t.Fatalf("lds star disc %v should beat baseline %v",
			lds.Summary.StarDisc, base.Summary.StarDisc)
	}
	if lds.Summary.StarDisc > 0.01 {
		t.Fatalf("vdc base-2 star disc = %v, want < 0.01 at N=8192", lds.Summary.StarDisc)
	}
}

func TestSimulator_GeometryBaseline(t *testing.T) {
	lab := newTestLab(t)

	s, err := lab.NewSimulator(4)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	base, _, err := s.SimBaseline(2048, false)
	if err != nil {
		t.Fatalf("SimBaseline: %v", err)
	}

	// 基線走同一組幾何映射：球面點的範數誤差也應為 0。
	if base.Summary.NormErr > 1e-9 {
		t.Fatalf("baseline sphere norm err = %v, want ~0", base.Summary.NormErr)
	}
}

func TestBuildRuntime_PointsAndClose(t *testing.T) {
	lab := newTestLab(t)
	rt, err := lab.BuildRuntime(2)
	if err != nil {
		t.Fatalf("BuildRuntime: %v", err)
	}

	ctx := context.Background()
	res, err := rt.Points(ctx, &dto.PointsQuery{GenId: 3, Count: 8})
	if err != nil {
		t.Fatalf("runtime Points: %v", err)
	}
	if res.Kind != spec.KindCircle || res.Dim != 2 || len(res.Points) != 8 {
		t.Fatalf("res = kind %s dim %d n %d, want circle/2/8", res.Kind, res.Dim, len(res.Points))
	}
	for _, p := range res.Points {
		if r := p[0]*p[0] + p[1]*p[1]; math.Abs(r-1) > 1e-9 {
			t.Fatalf("circle point off unit circle: %v", p)
		}
	}

	if _, err := rt.Points(ctx, &dto.PointsQuery{GenId: 42, Count: 1}); err == nil {
		t.Fatal("unknown gen id should fail")
	}

	ms := rt.Metrics()
	if len(ms) != 4 {
		t.Fatalf("metrics len = %d, want 4", len(ms))
	}
	for _, m := range ms {
		if m.PoolSize != 2 {
			t.Fatalf("pool size = %d, want 2", m.PoolSize)
		}
	}

	rt.Close()
	if !rt.Closed() {
		t.Fatal("runtime should be closed")
	}
	if _, err := rt.Points(ctx, &dto.PointsQuery{GenId: 3, Count: 1}); err == nil {
		t.Fatal("closed runtime should reject points")
	}
	rt.Close() // 重複關閉必須安全
}

func TestGenPool_CanceledContext(t *testing.T) {
	lab := newTestLab(t)
	rt, err := lab.BuildRuntime(1)
	if err != nil {
		t.Fatalf("BuildRuntime: %v", err)
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := rt.Points(ctx, &dto.PointsQuery{GenId: 1, Count: 1}); err == nil {
		t.Fatal("canceled context should fail")
	}
}

func TestNewMachineByYAML_ValidatesAgainstCatalog(t *testing.T) {
	lab := newTestLab(t)

	raw := []byte("gen_name: vdc-base2\ngen_id: 1\nkind: vdc\nbases: [2]\nseed: 7\n")
	m, err := lab.NewMachineByYAML(raw, 7)
	if err != nil {
		t.Fatalf("NewMachineByYAML: %v", err)
	}
	ref, err := lab.NewMachineWithSeed(1, 7)
	if err != nil {
		t.Fatalf("NewMachineWithSeed: %v", err)
	}
	if m.Pop()[0] != ref.Pop()[0] {
		t.Fatal("yaml machine should match catalog machine at same seed")
	}

	unknown := []byte("gen_name: ghost\ngen_id: 77\nkind: vdc\nbases: [2]\nseed: 0\n")
	if _, err := lab.NewMachineByYAML(unknown, 0); err == nil {
		t.Fatal("yaml config not in catalog should fail")
	}
}

func mustDecodeSnap(t *testing.T, b64u string) []byte {
	t.Helper()
	q := &dto.PointsRequest{
		GenId: 1, Count: 1,
		StartState: &dto.StartState{StartSnapB64U: b64u},
	}
	pq, err := q.Parse()
	if err != nil {
		t.Fatalf("parse snapshot: %v", err)
	}
	return pq.StartSnap
}
