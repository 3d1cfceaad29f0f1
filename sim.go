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
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/ldslab/errs"
	"github.com/zintix-labs/ldslab/recorder"
	"github.com/zintix-labs/ldslab/sdk/core"
	"github.com/zintix-labs/ldslab/sdk/lds"
	"github.com/zintix-labs/ldslab/spec"
	"github.com/zintix-labs/ldslab/stats"
)

const capPrepare int = 100

// Simulator 用於大批量取點並統計均勻度，可建立多台機台平行紀錄。
//
// 兩種流水：
//   - LDS 流：由 Machine（sdk/lds）供點。多工時以「分段」切流——worker i
//     從 counter = initSeed + i*points 起跑，合併結果等同單機連跑 mp*points 點。
//   - 基準流：由 sdk/core 的 PCG64 供點，走同一條統計管線，給差異數值一個對照組。
type Simulator struct {
	GenName   string                    // 生成器名稱
	GenId     spec.GID                  // 生成器編號
	gs        *spec.GenSetting          // 方便重用建立機台與紀錄員
	cf        core.PRNGFactory          // 基準亂數工廠
	initSeed  uint64                    // 初始 counter 起點
	seedmaker *seedMaker                // 基準 PRNG 種子生成器
	mBuf      []*Machine                // 併發執行機台實例
	rBuf      []*recorder.PointRecorder // 併發序列紀錄員
}

func newSimulator(gs *spec.GenSetting, cf core.PRNGFactory) (*Simulator, error) {
	return newSimulatorWithSeed(gs, cf, gs.Seed)
}

func newSimulatorWithSeed(gs *spec.GenSetting, cf core.PRNGFactory, seed uint64) (*Simulator, error) {
	s := &Simulator{
		GenName:   gs.GenName,
		GenId:     gs.GenID,
		gs:        gs,
		cf:        cf,
		initSeed:  seed,
		seedmaker: newSeedMaker(int64(seed & mask63)),
		mBuf:      make([]*Machine, 1, capPrepare),
		rBuf:      make([]*recorder.PointRecorder, 0, capPrepare),
	}
	m, err := newMachineWithSeed(gs, seed)
	if err != nil {
		return nil, err
	}
	s.mBuf[0] = m
	return s, nil
}

// Sim 單線模擬器：以一台機台連續取指定點數並回傳統計結果與用時
func (s *Simulator) Sim(points int, showpb bool) (*stats.UniformReport, time.Duration, error) {
	defer s.reset()
	if points < 1 {
		return nil, 0, errs.NewWarn("points must > 0")
	}
	if len(s.rBuf) == 0 {
		r, err := recorder.NewPointRecorder(s.gs)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}
	r := s.rBuf[0]
	m := s.mBuf[0]
	m.Reseed(s.initSeed)

	bar := pb.StartNew(points)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < points; i++ {
		r.Record(m.PopInternal())
		bar.Increment()
	}
	used := time.Since(bar.StartTime())
	bar.Finish()
	result := r.Done()
	result.Done()

	return result, used, nil
}

// SimMP 平行執行多個機台，總計 points*mp 個點，合併統計結果後回傳統計結果與用時
//
// 分段切流讓結果與單機連跑完全一致：worker i 的 counter 區段是
// [initSeed + i*points, initSeed + (i+1)*points)，彼此不重疊、無縫相接。
func (s *Simulator) SimMP(points int, mp int, showpb bool) (*stats.UniformReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if points < 1 {
		return nil, 0, errs.NewWarn("points must > 0")
	}
	for len(s.mBuf) < mp {
		m, err := newMachineWithSeed(s.gs, s.initSeed)
		if err != nil {
			return nil, 0, err
		}
		s.mBuf = append(s.mBuf, m)
	}

	for len(s.rBuf) < mp {
		r, err := recorder.NewPointRecorder(s.gs)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(points * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			m := s.mBuf[i]
			st := s.rBuf[i]
			m.Reseed(s.initSeed + uint64(i)*uint64(points))
			for p := 0; p < points; p++ {
				st.Record(m.PopInternal())
				bar.Increment()
			}
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	st, err := recorder.MergePointRecorder(s.rBuf)
	if err != nil {
		return nil, 0, err
	}
	result := st.Done()
	result.Done()

	return result, used, nil
}

// SimBaseline 以 PCG64 基準流取相同點數並統計，供與 LDS 報告對照。
//
// 幾何生成器走同一組保測度映射（CircleMap/SphereMap/Sphere3HopfMap），
// 只是把輸入的 [0,1) 標量換成 PRNG 取樣：兩份報告的差別純粹來自序列本身。
func (s *Simulator) SimBaseline(points int, showpb bool) (*stats.UniformReport, time.Duration, error) {
	defer s.reset()
	if points < 1 {
		return nil, 0, errs.NewWarn("points must > 0")
	}
	r, err := recorder.NewPointRecorder(s.gs)
	if err != nil {
		return nil, 0, err
	}
	c := core.New(s.cf.New(s.seedmaker.next()))

	dim := s.gs.Dim()
	p := make([]float64, dim)

	bar := pb.StartNew(points)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < points; i++ {
		s.fillBaseline(c, p)
		r.Record(p)
		bar.Increment()
	}
	used := time.Since(bar.StartTime())
	bar.Finish()
	result := r.Done()
	result.Done()

	return result, used, nil
}

func (s *Simulator) fillBaseline(c *core.Core, p []float64) {
	switch s.gs.Kind {
	case spec.KindCircle:
		v := lds.CircleMap(c.Float64())
		copy(p, v[:])
	case spec.KindSphere:
		v := lds.SphereMap(c.Float64(), c.Float64())
		copy(p, v[:])
	case spec.KindSphere3Hopf:
		v := lds.Sphere3HopfMap(c.Float64(), c.Float64(), c.Float64())
		copy(p, v[:])
	default:
		c.Fill(p)
	}
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// state 走全週期（不重複），再用可逆 mix63 打散
//
// 注意：此方法可能在併發環境下被多 goroutines 同時呼叫。
// 因此 state 的推進必須是原子的：
//   - 使用 CAS（Compare-And-Swap）迴圈確保每次呼叫都會取得唯一的下一個 state。
//   - 回傳值使用推進後的 state 經 mix63 打散後的結果。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()                                            // always masked
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63 // 乘奇數 ⇒ mod 2^63 可逆
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
