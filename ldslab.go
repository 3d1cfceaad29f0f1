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

// Package ldslab 提供 Ldslab 引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// 你可以把 Ldslab 視為一個「可被後端/模擬器使用的 runtime」，它負責把下列兩個必需的地基組裝在一起，並提供建立 Machine 的入口：
//  1. Catalog：生成器目錄（Single Source of Truth / SSOT），定義有哪些生成器、各自對應的設定檔名稱（ConfigName）。
//  2. PRNGFactory：偽隨機核心工廠，供模擬器建立 PRNG 基線（與低差異序列對照用）。
//
// 設計重點：
//   - Ldslab 本身不綁定任何「檔案路徑」概念：設定檔來源一律以 fs.FS 的形式注入。
//   - 低差異序列本身是確定性的：同一份設定 + 同一個 seed（起始 index）永遠產生同一串點。
//     PRNGFactory 只服務基線對照，不參與序列本身。
//   - Machine 是對外提供 Points 的最小單位。
//
// 典型使用情境：
//   - 後端服務（HTTP）：由 Ldslab 建立 runtime，對外提供批次取點。
//   - 模擬器（sim）：由 Ldslab 建立 Simulator 進行大量取點與均勻度統計。
//
// 注意：此套引擎以低差異序列領域為中心（Points -> Result），不是泛用數值框架。
package ldslab

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/ldslab/catalog"
	"github.com/zintix-labs/ldslab/errs"
	"github.com/zintix-labs/ldslab/sdk/core"
	"github.com/zintix-labs/ldslab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 為什麼是 fs.FS：
//   - 你可以用 go:embed 把 configs 直接編進 binary（部署最穩定，不依賴工作目錄）。
//   - 也可以用 os.DirFS 在本機開發時讀取目錄。
//   - 甚至可以用自製的 MultiFS 來合併多個來源。
//
// Ldslab 不解析「路徑」：它只依賴 fs.FS + ConfigName（檔名）來取得設定內容。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Ldslab 是「組裝器（assembler）」與「運行入口（runtime entry）」：
//
// 它把兩個必需的地基組合起來：
//  1. Catalog：生成器目錄（SSOT），定義有哪些生成器、各自對應的設定檔名稱。
//  2. PRNGFactory：偽隨機核心工廠，保證基線對照可重現（reproducible）。
//
// 使用流程通常分成兩階段：
//   - 註冊/組裝階段（registration/build）：建立 catalog、檢查重複與缺漏。
//   - 執行階段（runtime）：依據生成器 ID 產生 Machine / Simulator / Runtime。
//
// 重要設計原則：
//   - Catalog 的 ID 唯一性只保證在「同一個 Ldslab instance」內（不同 Ldslab 之間不做全域保證）。
//   - 你要跑哪一批生成器、哪一套設定檔，必須由 New() 的參數明確決定。
//   - runtime 一旦開始（例如已建立 Machine 並對外服務），不建議再變更 Catalog（避免非預期行為）。
type Ldslab struct {
	cat *catalog.Catalog
	cf  core.PRNGFactory
	sum []catalog.Summary
}

// New 建立一個 Ldslab instance。
//
// 這是「組裝階段（registration/build）」的入口：
//   - 會建立 Catalog（通常同時做檔名存在性/重複性檢查，避免 runtime 才爆）。
//   - 會保存 PRNGFactory，確保由這個 Ldslab 建出來的基線核心在行為上具有一致性。
//
// 參數要求（是合約的一部分）：
//   - cf 不能為 nil：沒有 PRNG 工廠就無法建立可重現的基線對照。
//   - cfgs 至少一個：沒有設定檔來源，Catalog 無法解析 GenSetting。
func New(cf core.PRNGFactory, cfgs []fs.FS) (*Ldslab, error) {
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	lab := &Ldslab{
		cat: cata,
		cf:  cf,
	}
	return lab, nil
}

// NewAuto 建立一個直接進入執行階段的 Ldslab instance。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS) (*Ldslab, error) {
	lab, err := New(cf, cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (p *Ldslab) Register(ents ...catalog.Entry) error {
	return p.cat.Register(ents...)
}

// RegisterAll
//
// 會掃描 catalog 持有的設定檔來源（fs.FS），把所有可辨識的設定檔（.yaml/.yml/.json）嘗試解析成
// *spec.GenSetting，並用設定檔內宣告的 GenID/GenName 產生對應的 catalog.Entry 來批次註冊。
//
// 行為特性（重要）：
//  1. Fail-fast：任何一個檔案讀取/解析/基本檢查失敗，都會立刻回傳 error（不會忽略、也不會繼續掃完）。
//  2. 原子性：只有當「全部檔案」都成功解析並通過基本檢查時，才會呼叫 Register(...) 一次性寫入。
//     因此不會出現只註冊了一半、導致 catalog 處於半完成狀態的情況。
//  3. 穩定性：會依檔名排序後再處理，確保行為 determinism（方便重現與除錯）。
//
// 注意：
//   - RegisterAll 只負責「把設定檔宣告的生成器資訊放進 Catalog」。
//     生成器種類（Kind）是否能建出機台，屬於後續建機台時的責任；
//     不過 GenSetting 解析時已做過 Kind/bases 的基本檢查，runtime 才爆的空間很小。
func (p *Ldslab) RegisterAll() error {
	cfgs := p.cat.Cfg()
	sources := cfgs.Sources()
	if len(sources) == 0 {
		return errs.NewFatal("configs required")
	}

	entries := make([]catalog.Entry, 0, 64)
	seenID := map[spec.GID]string{}
	seenName := map[string]string{}

	for _, src := range sources {
		walkErr := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("configs must be flat (no subdir): %q", path))
			}

			base := filepath.Base(path)
			if strings.Contains(path, "/") && path != base {
				return errs.NewFatal(fmt.Sprintf("configs must be flat (nested path): %q", path))
			}
			if strings.HasPrefix(base, ".") {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(base))
			if ext != ".yaml" && ext != ".yml" && ext != ".json" {
				return nil
			}

			raw, rerr := fs.ReadFile(src, path)
			if rerr != nil {
				return errs.NewFatal(fmt.Sprintf("read config failed: %s", base))
			}

			var (
				gs   *spec.GenSetting
				gerr error
			)
			switch ext {
			case ".yaml", ".yml":
				gs, gerr = spec.GetGenSettingByYAML(raw)
			case ".json":
				gs, gerr = spec.GetGenSettingByJSON(raw)
			default:
				return errs.NewFatal(fmt.Sprintf("unsupported config format: %q", base))
			}
			if gerr != nil {
				return errs.NewFatal(fmt.Sprintf("parse gensetting failed: %s", base))
			}

			name := strings.TrimSpace(gs.GenName)
			if name == "" {
				return errs.NewFatal(fmt.Sprintf("gen name required: %s", base))
			}

			id := gs.GenID
			if prev, ok := seenID[id]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate gen id: %d (config=%s and %s)", id, prev, base))
			}
			if _, ok := p.cat.GetByID(id); ok {
				return errs.NewFatal(fmt.Sprintf("gen id already registered: %d (config=%s)", id, base))
			}
			seenID[id] = base

			nameKey := strings.ToLower(name)
			if prev, ok := seenName[nameKey]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate gen name: %s (config=%s and %s)", nameKey, prev, base))
			}
			if _, ok := p.cat.GetByName(name); ok {
				return errs.NewFatal(fmt.Sprintf("gen name already registered: %s (config=%s)", name, base))
			}
			seenName[nameKey] = base

			entries = append(entries, catalog.Entry{
				GID:        id,
				Name:       name,
				ConfigName: base,
			})
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
	}

	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}

	return p.cat.Register(entries...)
}

func (p *Ldslab) Freeze() {
	p.cat.Freeze()
}

func (p *Ldslab) EntryById(id spec.GID) (catalog.Entry, bool) {
	return p.cat.GetByID(id)
}

func (p *Ldslab) EntryByName(name string) (catalog.Entry, bool) {
	return p.cat.GetByName(name)
}

func (p *Ldslab) IDs() []spec.GID {
	return p.cat.IDs()
}

func (p *Ldslab) All() []catalog.Entry {
	return p.cat.All()
}

func (p *Ldslab) Summary() ([]catalog.Summary, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if p.sum != nil {
		return p.sum, nil
	}
	ids := p.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		gs, err := p.cat.GenSettingById(id)
		if err != nil {
			return nil, errs.NewFatal("parse gen setting failed")
		}
		s := catalog.Summary{
			GID:   id,
			Name:  gs.GenName,
			Kind:  gs.Kind,
			Bases: append([]int(nil), gs.Bases...),
			Dim:   gs.Dim(),
		}
		cs = append(cs, s)
	}
	p.sum = cs
	return p.sum, nil
}

// NewMachine 依據 Catalog 內的生成器 ID 建立一台 Machine。
//
// 行為：
//  1. 由 Catalog 取得對應的 GenSetting（通常來自 fs.FS 內的 YAML/JSON）。
//  2. 以設定檔內的 seed（起始 index）建立序列生成器。
//
// 注意：seed 是序列上的「出生位置」。若要在任意時間點完整重現，
// 請使用 Machine 的 SnapshotCore/RestoreCore（以 []byte 交換狀態）。
func (p *Ldslab) NewMachine(id spec.GID) (*Machine, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := p.cat.GenSettingById(id)
	if err != nil {
		return nil, err
	}
	return newMachine(gs)
}

// NewMachineWithSeed 與 NewMachine 相同，但由呼叫端指定起始 index。
//
// 使用情境：
//   - 可重現的測試：同一份設定 + 同一個 seed，必定產生一致的點序列。
//   - 平行分段：多台機台各自從不重疊的區段起跑。
func (p *Ldslab) NewMachineWithSeed(id spec.GID, seed uint64) (*Machine, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := p.cat.GenSettingById(id)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(gs, seed)
}

func (p *Ldslab) NewMachineByJSON(raw []byte, seed uint64) (*Machine, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGenSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newMachineWithSeed(cfg, seed)
}

func (p *Ldslab) NewMachineByYAML(raw []byte, seed uint64) (*Machine, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGenSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newMachineWithSeed(cfg, seed)
}

func (p *Ldslab) validCfg(cfg *spec.GenSetting) error {
	ent, ok := p.cat.GetByID(cfg.GenID)
	if !ok {
		return errs.NewWarn("gid not exist")
	}
	ent2, ok := p.cat.GetByName(cfg.GenName)
	if !ok {
		return errs.NewWarn("gen name not exist")
	}
	if ent.GID != ent2.GID {
		return errs.NewWarn("gen id is not matched gen name")
	}
	return nil
}

func (p *Ldslab) NewSimulator(id spec.GID) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := p.cat.GenSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSimulator(gs, p.cf)
}

func (p *Ldslab) NewSimulatorWithSeed(id spec.GID, seed uint64) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := p.cat.GenSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, p.cf, seed)
}

func (p *Ldslab) NewSimulatorByJSON(raw []byte, seed uint64) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGenSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(cfg, p.cf, seed)
}

func (p *Ldslab) NewSimulatorByYAML(raw []byte, seed uint64) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGenSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(cfg, p.cf, seed)
}

func (p *Ldslab) BuildRuntime(poolSize int) (*LdsRuntime, error) {
	// 1. 進入 runtime 前，catalog 必須 Freeze
	p.Freeze()

	ids := p.cat.IDs()
	if len(ids) == 0 {
		return nil, errs.NewFatal("no generators registered")
	}

	rt := &LdsRuntime{
		lab:      p,
		pools:    make(map[spec.GID]*GenPool, len(ids)),
		ids:      ids,
		done:     make(chan struct{}),
		poolSize: max(1, poolSize),
	}
	rt.reason.Store("")

	// 2. 先全建好（fail-fast）
	for _, id := range ids {
		gs, err := p.cat.GenSettingById(id)
		if err != nil {
			return nil, err
		}

		gp, err := newGenPool(rt.poolSize, gs)
		if err != nil {
			return nil, err
		}
		rt.pools[id] = gp
	}
	return rt, nil
}
