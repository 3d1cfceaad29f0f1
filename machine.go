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

package ldslab

import (
	"fmt"
	"sync"

	"github.com/zintix-labs/ldslab/dto"
	"github.com/zintix-labs/ldslab/errs"
	"github.com/zintix-labs/ldslab/sdk/lds"
	"github.com/zintix-labs/ldslab/spec"
)

// 單一請求可取的點數上限（對外服務）；模擬器走 PopInternal 不受此限
const maxBatch = 1 << 14

// genCore 統一五種生成器的內部介面。
//
// sdk/lds 的五種型別輸出型別各異（float64 / []float64 / [N]float64），
// 對機台而言只需要「把下一個點填進 dst」這一件事，所以用薄 adapter 抹平。
type genCore interface {
	PopInto(dst []float64)
	Reseed(seed uint64)
	Snapshot() ([]byte, error)
	Restore([]byte) error
}

// Machine 封裝一台「可對外供點」的序列機台。
//
// 你可以把 Machine 視為生成器的「外殼（shell）」：
//   - 對外：提供 Points 入口（HTTP/模擬器通常只操作 Machine）。
//   - 對內：持有依 GenSetting 組裝好的生成器核心。
//
// 並發語意：
//   - Machine 不是 lock-free 結構；它內含可重用的輸出 buffer（熱路徑），
//     同一台 Machine 不應被多 goroutine 同時取點。
//   - 若要併發模擬，由更高層建立多台 Machine 分散到不同 worker 並管理其生命週期。
//
// Buffer 語意：
//   - PopInternal 回傳的 slice 會被下一次呼叫覆寫；需要保留請自行 copy
//     或改用 Pop / PopN（每次配置新 slice）。
type Machine struct {
	genName  string     // 生成器名稱（來自 GenSetting.GenName，主要用於觀測/日誌）
	genId    spec.GID   // 生成器 ID（Catalog 內唯一；用於路由與查表）
	gs       *spec.GenSetting
	gen      genCore    // 生成器核心（由 Kind + Bases 組裝）
	buf      []float64  // 可重用的輸出 buffer（熱路徑；每次 PopInternal 覆寫）
	mu       sync.Mutex // 防併發鎖：保護可重用 buffer 與核心狀態一致性
	initSeed uint64     // 出生 seed（counter 起點；完整重現請用 Snapshot/Restore）
}

// buildGenCore 依 Kind 組出生成器核心。
// GenSetting 在載入期已驗證過，這裡的錯誤只會來自 sdk/lds 的最終把關。
func buildGenCore(gs *spec.GenSetting) (genCore, error) {
	switch gs.Kind {
	case spec.KindVdc:
		v, err := lds.NewVdCorput(gs.Bases[0])
		if err != nil {
			return nil, err
		}
		return &vdcGen{v: v}, nil
	case spec.KindHalton:
		h, err := lds.NewHalton(gs.Bases)
		if err != nil {
			return nil, err
		}
		return &haltonGen{h: h}, nil
	case spec.KindCircle:
		c, err := lds.NewCircle(gs.Bases[0])
		if err != nil {
			return nil, err
		}
		return &circleGen{c: c}, nil
	case spec.KindSphere:
		s, err := lds.NewSphere(gs.Bases)
		if err != nil {
			return nil, err
		}
		return &sphereGen{s: s}, nil
	case spec.KindSphere3Hopf:
		s, err := lds.NewSphere3Hopf(gs.Bases)
		if err != nil {
			return nil, err
		}
		return &hopfGen{s: s}, nil
	default:
		return nil, errs.Configf("unknown kind %q", gs.Kind)
	}
}

type vdcGen struct{ v *lds.VdCorput }

func (g *vdcGen) PopInto(dst []float64)     { dst[0] = g.v.Pop() }
func (g *vdcGen) Reseed(seed uint64)        { g.v.Reseed(seed) }
func (g *vdcGen) Snapshot() ([]byte, error) { return g.v.Snapshot() }
func (g *vdcGen) Restore(data []byte) error { return g.v.Restore(data) }

type haltonGen struct{ h *lds.Halton }

func (g *haltonGen) PopInto(dst []float64)     { g.h.PopInto(dst) }
func (g *haltonGen) Reseed(seed uint64)        { g.h.Reseed(seed) }
func (g *haltonGen) Snapshot() ([]byte, error) { return g.h.Snapshot() }
func (g *haltonGen) Restore(data []byte) error { return g.h.Restore(data) }

type circleGen struct{ c *lds.Circle }

func (g *circleGen) PopInto(dst []float64) {
	p := g.c.Pop()
	copy(dst, p[:])
}
func (g *circleGen) Reseed(seed uint64)        { g.c.Reseed(seed) }
func (g *circleGen) Snapshot() ([]byte, error) { return g.c.Snapshot() }
func (g *circleGen) Restore(data []byte) error { return g.c.Restore(data) }

type sphereGen struct{ s *lds.Sphere }

func (g *sphereGen) PopInto(dst []float64) {
	p := g.s.Pop()
	copy(dst, p[:])
}
func (g *sphereGen) Reseed(seed uint64)        { g.s.Reseed(seed) }
func (g *sphereGen) Snapshot() ([]byte, error) { return g.s.Snapshot() }
func (g *sphereGen) Restore(data []byte) error { return g.s.Restore(data) }

type hopfGen struct{ s *lds.Sphere3Hopf }

func (g *hopfGen) PopInto(dst []float64) {
	p := g.s.Pop()
	copy(dst, p[:])
}
func (g *hopfGen) Reseed(seed uint64)        { g.s.Reseed(seed) }
func (g *hopfGen) Snapshot() ([]byte, error) { return g.s.Snapshot() }
func (g *hopfGen) Restore(data []byte) error { return g.s.Restore(data) }

// newMachine 以設定檔內宣告的 seed 建立 Machine。
//
// 序列生成器的 seed 是「counter 起點」而不是熵：同一份 GenSetting
// 永遠產生同一條流。這是合約，不是缺陷。
func newMachine(gs *spec.GenSetting) (*Machine, error) {
	return newMachineWithSeed(gs, gs.Seed)
}

// newMachineWithSeed 以指定 seed 建立 Machine。
//
// seed 只保證了新建的 Machine 起點，如果需要在任意批後將機台"重設"
// 到任意節點，請利用 Snapshot Restore 來操作。
func newMachineWithSeed(gs *spec.GenSetting, seed uint64) (*Machine, error) {
	gen, err := buildGenCore(gs)
	if err != nil {
		return nil, err
	}
	gen.Reseed(seed)
	m := &Machine{
		genName:  gs.GenName,
		genId:    gs.GenID,
		gs:       gs,
		gen:      gen,
		buf:      make([]float64, gs.Dim()),
		initSeed: seed,
	}
	return m, nil
}

// Dim 回傳輸出維度。
func (m *Machine) Dim() int { return len(m.buf) }

// Points 為主要公開入口，會驗證取點請求，執行生成器並回傳一批點。
//
// 狀態語意：
//   - q.StartSnap 有值：回放模式——先 restore 到該快照取點，結束後把機台
//     還原到進入前的狀態（對外流水不受回放影響）。
//   - q.HasSeed：重定位模式——Reseed 到指定 counter 後取點，之後的流
//     從新位置繼續（持久生效）。
//   - 兩者都沒有：接著目前的流取點。
//
// 回應一律附上 Start/After 快照；把 After 帶回來當 start_b64u 即可無縫續流。
func (m *Machine) Points(q *dto.PointsQuery) (dto.PointsResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 1. 校驗請求合法性
	if err := m.valid(q); err != nil {
		return dto.PointsResult{}, err
	}

	// 2. 記住進入前的狀態（回放模式要還原用）
	rem, err := m.SnapshotCore()
	if err != nil {
		return dto.PointsResult{}, errs.NewFatal("before snapshot error " + err.Error())
	}

	replay := len(q.StartSnap) != 0
	if replay {
		if err := m.RestoreCore(q.StartSnap); err != nil {
			return dto.PointsResult{}, errs.NewWarn("restore core err " + err.Error())
		}
	}
	if q.HasSeed {
		m.gen.Reseed(q.Seed)
	}

	// 3. get start snapshot
	startsnap, err := m.SnapshotCore()
	if err != nil {
		return dto.PointsResult{}, errs.NewFatal("start snapshot error " + err.Error())
	}

	// 4. 取點
	points := make([][]float64, q.Count)
	for i := range points {
		p := make([]float64, len(m.buf))
		m.gen.PopInto(p)
		points[i] = p
	}

	// 5. get after snapshot
	aftersnap, err := m.SnapshotCore()
	if err != nil {
		if e := m.RestoreCore(rem); e != nil {
			return dto.PointsResult{}, errs.NewFatal("fall back err " + e.Error())
		}
		return dto.PointsResult{}, errs.NewWarn("after snapshot error " + err.Error())
	}

	// 6. restore if needed
	if replay {
		if err := m.RestoreCore(rem); err != nil {
			return dto.PointsResult{}, errs.NewFatal("restore core back err " + err.Error())
		}
	}

	// 7. dto
	return dto.NewPointsResultDTO(m.gs, points, startsnap, aftersnap)
}

// PopInternal 直接取得下一個點；常用於模擬器或測試
//
// 請勿在正式環境使用
//
// 此行為跳過鎖與所有檢查，回傳的 slice 會被下一次呼叫覆寫。
func (m *Machine) PopInternal() []float64 {
	m.gen.PopInto(m.buf)
	return m.buf
}

// Pop 回傳下一個點（每次配置新 slice，可安全保留）。
func (m *Machine) Pop() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := make([]float64, len(m.buf))
	m.gen.PopInto(p)
	return p
}

// PopN 回傳接下來的 n 個點。
func (m *Machine) PopN(n int) ([][]float64, error) {
	if n < 1 {
		return nil, errs.NewWarn("n must > 0")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]float64, n)
	for i := range out {
		p := make([]float64, len(m.buf))
		m.gen.PopInto(p)
		out[i] = p
	}
	return out, nil
}

// Reseed 把機台重設到指定 counter。
func (m *Machine) Reseed(seed uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen.Reseed(seed)
}

func (m *Machine) valid(q *dto.PointsQuery) error {
	if m.genId != q.GenId {
		return errs.NewWarn("gen id is not matched")
	}
	if q.GenName != "" && m.genName != q.GenName {
		return errs.NewWarn("gen name is not matched")
	}
	if q.Count < 1 {
		return errs.NewWarn("count must > 0")
	}
	if q.Count > maxBatch {
		return errs.NewWarn(fmt.Sprintf("count %d exceeds max batch %d", q.Count, maxBatch))
	}
	return nil
}

// SnapshotCore 取得生成器狀態暫存。
func (m *Machine) SnapshotCore() ([]byte, error) {
	return m.gen.Snapshot()
}

// RestoreCore 恢復生成器狀態暫存。
func (m *Machine) RestoreCore(src []byte) error {
	return m.gen.Restore(src)
}
