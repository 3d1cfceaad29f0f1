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
	"context"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/ldslab/dto"
	"github.com/zintix-labs/ldslab/errs"
	"github.com/zintix-labs/ldslab/spec"
)

type LdsRuntime struct {
	// build-time 來源（只讀引用）
	lab *Ldslab // 方便取 catalog 與共用一些 helper

	// data-plane：關鍵主池（每個生成器一個 pool）
	pools map[spec.GID]*GenPool
	ids   []spec.GID // 固定順序，用於觀測/列舉（來自 cat.IDs()）

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	// runtime 行為設定（一期先簡單，之後可擴展）
	poolSize int // 每個生成器的池大小（BuildRuntime(n) 的 n）
}

func (rt *LdsRuntime) Points(ctx context.Context, q *dto.PointsQuery) (dto.PointsResult, error) {
	select {
	case <-ctx.Done():
		// 如果通知取消
		return dto.PointsResult{}, errs.NewWarn("points canceled/timeout: " + ctx.Err().Error())
	case <-rt.done:
		// done is the source of truth; keep a fast boolean for cheap reads/telemetry.
		rt.closed.Store(true)
		return dto.PointsResult{}, errs.NewFatal("lds runtime closed: " + rt.ClosedReason())
	default:
	}

	p, ok := rt.pools[q.GenId]
	if !ok {
		return dto.PointsResult{}, errs.NewWarn("gen id not found")
	}

	// pool 自己會處理 done / close / rebuild / metrics
	return p.Points(ctx, q)
}

// Metrics 回傳所有 pool 的觀測快照，順序固定（依 GID 排序）。
func (rt *LdsRuntime) Metrics() []GenPoolMetrics {
	ms := make([]GenPoolMetrics, 0, len(rt.ids))
	for _, id := range rt.ids {
		if p, ok := rt.pools[id]; ok {
			ms = append(ms, p.Metrics())
		}
	}
	return ms
}

// Close transitions the runtime into a closed state. It is safe to call multiple times.
func (rt *LdsRuntime) Close() {
	rt.closeWithReason("closed")
}

// closeWithReason closes the runtime and records the reason (written once).
func (rt *LdsRuntime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
		for _, p := range rt.pools {
			p.Close()
		}
	})
}

// Closed reports whether the runtime has been closed.
func (rt *LdsRuntime) Closed() bool {
	return rt.closed.Load()
}

func (rt *LdsRuntime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
