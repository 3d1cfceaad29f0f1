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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zintix-labs/ldslab/corefmt"
	"github.com/zintix-labs/ldslab/errs"
	"github.com/zintix-labs/ldslab/spec"
)

type PointsRequest struct {
	UID     string   `json:"uid"`            // 唯一識別碼
	GenName string   `json:"gen"`            // 要取點的生成器
	GenId   spec.GID `json:"gid"`            // 生成器編號
	Count   int      `json:"count"`          // 要取幾個點
	Seed    uint64   `json:"seed,omitempty"` // 可選：取點前先 Reseed 到此計數
	HasSeed bool     `json:"has_seed,omitempty"`
	// Contract（強硬約束，避免 seed=0 的雙重語意）：
	//   - 若 has_seed 為 false（或未提供），則 seed 必須省略；否則視為 request 格式錯誤。
	//   - 若 has_seed 為 true，則視為有 Reseed；seed 若省略則視為 0。
	StartState *StartState `json:"start_state,omitempty"` // 可選：帶 start_b64u=回放/續流（nil=接著目前流）。
}

// StartState 是由業務端帶入的「序列可恢復狀態」（可選）。
//
//   - start_state 缺省 / 為 null / 為空物件：接著機台目前的流繼續取點。
//   - start_state.start_b64u 有值：先 restore 到該快照再取點；
//     帶當初記錄的 start_b64u 是回放，帶上一批回傳的 after_b64u 是續流。
//   - Request 只接受 Start；After 只會出現在回應（PointState），請求端不得自行填寫。
type StartState struct {
	StartSnapB64U string `json:"start_b64u,omitempty"`
}

func (ss *StartState) HasPayload() bool {
	if ss == nil {
		return false
	}
	return ss.StartSnapB64U != ""
}

// DecodePointsRequest 會把 HTTP 請求解碼成 PointsRequest。
//
// 支援：
//   - GET：從 query string 讀取參數（uid/gen/gid/count/seed/has_seed/start_b64u）。
//   - POST：從 JSON body 反序列化（支援 start_state）。
//
// 注意：
//   - 這裡只負責「解碼（decode）」與基本型別轉換，不做任何目錄合法性校驗；
//     合法性（例如該 GID 是否存在、count 上限）應由上層（GenPool/Runtime）決定。
//   - 為避免過大 body 影響服務，POST 會對 body 做大小限制（預設 1MiB）。
//   - POST 會開啟 DisallowUnknownFields()，對未知欄位採用嚴格拒絕，以避免靜默丟資料。
func DecodePointsRequest(r *http.Request) (*PointsRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}

	req := new(PointsRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.UID = q.Get("uid")
		req.GenName = q.Get("gen")

		if s := q.Get("gid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid gid: %v", err))
			}
			req.GenId = spec.GID(u)
		}

		if s := q.Get("count"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid count: %v", err))
			}
			req.Count = v
		}

		if s := q.Get("seed"); s != "" {
			v, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid seed: %v", err))
			}
			req.Seed = v
		}

		if s := q.Get("has_seed"); s != "" {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return nil, errs.NewWarn("invalid has_seed value " + err.Error())
			}
			req.HasSeed = v
		}

		if s := q.Get("start_b64u"); s != "" {
			req.StartState = &StartState{StartSnapB64U: s}
		}

		return req, nil

	case http.MethodPost:
		// 防止 body 過大（預設 1MiB）
		const maxBody = 1 << 20
		body := io.LimitReader(r.Body, maxBody)
		dec := json.NewDecoder(body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(req); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
		return req, nil

	default:
		return nil, fmt.Errorf("method not allowed")
	}
}

// PointsQuery 是解碼完成、可直接交給機台的內部請求。
type PointsQuery struct {
	UID       string
	GenName   string
	GenId     spec.GID
	Count     int
	Seed      uint64
	HasSeed   bool
	StartSnap []byte // nil = 接著目前流
}

// Parse 做型別層的最終轉換：解開 Base64URL 快照並檢查 seed contract。
func (pr *PointsRequest) Parse() (*PointsQuery, error) {
	if !pr.HasSeed && pr.Seed != 0 {
		return nil, errs.NewWarn("has_seed is false but seed is not zero")
	}

	var snap []byte
	if pr.StartState.HasPayload() {
		b, err := corefmt.DecodeBase64URL(pr.StartState.StartSnapB64U)
		if err != nil {
			return nil, errs.NewWarn("start snap decode failed " + err.Error())
		}
		snap = b
	}

	q := &PointsQuery{
		UID:       pr.UID,
		GenName:   pr.GenName,
		GenId:     pr.GenId,
		Count:     pr.Count,
		Seed:      pr.Seed,
		HasSeed:   pr.HasSeed,
		StartSnap: snap,
	}
	return q, nil
}
