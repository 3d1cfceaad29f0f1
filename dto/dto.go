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

package dto

import (
	"github.com/zintix-labs/ldslab/corefmt"
	"github.com/zintix-labs/ldslab/errs"
	"github.com/zintix-labs/ldslab/spec"
)

// PointsResult 對外輸出的一批序列點。
type PointsResult struct {
	GenName string      `json:"gen"`              // 生成器名稱
	GenID   spec.GID    `json:"genid"`            // 生成器編號
	Kind    spec.Kind   `json:"kind"`             // 生成器種類
	Dim     int         `json:"dim"`              // 輸出維度
	Count   int         `json:"count"`            // 本批點數
	Points  [][]float64 `json:"points,omitempty"` // 逐點輸出
	State   PointState  `json:"point_state"`      // 序列狀態
}

// PointState 承載序列的可恢復狀態。
//
// Start 是本批起點的計數器快照，After 是吐完本批之後的快照；
// 把 After 當作下一批的 start_b64u 就能無縫續流，把 Start 原樣
// 回送則可以重放同一批。
type PointState struct {
	StartSnapB64U string `json:"start_b64u,omitempty"`
	AfterSnapB64U string `json:"after_b64u,omitempty"`
}

// NewPointsResultDTO 組裝輸出批次。
//
// startSnap / afterSnap 是 sdk/lds Restorable 介面給出的原始快照，
// 這裡一律走 Base64URL，方便塞進 JSON 與 query string。
func NewPointsResultDTO(gs *spec.GenSetting, points [][]float64, startSnap, afterSnap []byte) (PointsResult, error) {
	if gs == nil {
		return PointsResult{}, errs.NewWarn("gen setting is nil")
	}
	dto := PointsResult{
		GenName: gs.GenName,
		GenID:   gs.GenID,
		Kind:    gs.Kind,
		Dim:     gs.Dim(),
		Count:   len(points),
		Points:  points,
		State: PointState{
			StartSnapB64U: corefmt.EncodeBase64URL(startSnap),
			AfterSnapB64U: corefmt.EncodeBase64URL(afterSnap),
		},
	}
	return dto, nil
}

// CatalogSummary 對外輸出的生成器目錄條目。
type CatalogSummary struct {
	GenID   spec.GID  `json:"genid"`
	GenName string    `json:"gen"`
	Kind    spec.Kind `json:"kind"`
	Bases   []int     `json:"bases"`
	Dim     int       `json:"dim"`
}

// NewCatalogSummaryDTO 由目錄設定組裝條目。
func NewCatalogSummaryDTO(gs *spec.GenSetting) CatalogSummary {
	if gs == nil {
		return CatalogSummary{}
	}
	return CatalogSummary{
		GenID:   gs.GenID,
		GenName: gs.GenName,
		Kind:    gs.Kind,
		Bases:   append([]int(nil), gs.Bases...),
		Dim:     gs.Dim(),
	}
}
