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

package dto_test

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/ldslab/corefmt"
	"github.com/zintix-labs/ldslab/dto"
	"github.com/zintix-labs/ldslab/spec"
)

func TestDecodePointsRequest_GET(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/points?uid=u1&gen=halton23&gid=7&count=100&seed=42&has_seed=true", nil)
	req, err := dto.DecodePointsRequest(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.UID != "u1" || req.GenName != "halton23" || req.GenId != 7 || req.Count != 100 {
		t.Errorf("decoded fields mismatch: %+v", req)
	}
	if !req.HasSeed || req.Seed != 42 {
		t.Errorf("seed fields mismatch: %+v", req)
	}

	q, err := req.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.StartSnap != nil {
		t.Error("no start_b64u given, StartSnap should be nil")
	}
}

func TestDecodePointsRequest_GETStartState(t *testing.T) {
	snap := []byte{0, 0, 0, 0, 0, 0, 0, 9}
	b64u := corefmt.EncodeBase64URL(snap)
	r := httptest.NewRequest("GET", "/v1/points?gen=vdc2&count=1&start_b64u="+b64u, nil)
	req, err := dto.DecodePointsRequest(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	q, err := req.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !bytes.Equal(q.StartSnap, snap) {
		t.Errorf("StartSnap = %v, want %v", q.StartSnap, snap)
	}
}

func TestDecodePointsRequest_POST(t *testing.T) {
	body := `{"uid":"u2","gen":"sphere23","gid":3,"count":8}`
	r := httptest.NewRequest("POST", "/v1/points", bytes.NewBufferString(body))
	req, err := dto.DecodePointsRequest(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.GenName != "sphere23" || req.Count != 8 {
		t.Errorf("decoded fields mismatch: %+v", req)
	}

	// 未知欄位要硬拒絕
	bad := `{"gen":"vdc2","count":1,"bogus":true}`
	r = httptest.NewRequest("POST", "/v1/points", bytes.NewBufferString(bad))
	if _, err := dto.DecodePointsRequest(r); err == nil {
		t.Error("unknown field should be rejected")
	}
}

func TestDecodePointsRequest_MethodNotAllowed(t *testing.T) {
	r := httptest.NewRequest("DELETE", "/v1/points", nil)
	if _, err := dto.DecodePointsRequest(r); err == nil {
		t.Error("DELETE should be rejected")
	}
}

func TestPointsRequest_SeedContract(t *testing.T) {
	req := &dto.PointsRequest{GenName: "vdc2", Count: 1, Seed: 5}
	if _, err := req.Parse(); err == nil {
		t.Error("seed without has_seed should be rejected")
	}
	req.HasSeed = true
	if _, err := req.Parse(); err != nil {
		t.Errorf("has_seed=true should pass: %v", err)
	}
}

func TestNewPointsResultDTO(t *testing.T) {
	gs := &spec.GenSetting{GenName: "circle2", GenID: 4, Kind: spec.KindCircle, Bases: []int{2}}
	start := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	after := []byte{0, 0, 0, 0, 0, 0, 0, 2}
	points := [][]float64{{-1, 0}, {0, 1}}

	res, err := dto.NewPointsResultDTO(gs, points, start, after)
	if err != nil {
		t.Fatalf("NewPointsResultDTO: %v", err)
	}
	if res.Dim != 2 || res.Count != 2 || res.Kind != spec.KindCircle {
		t.Errorf("result fields mismatch: %+v", res)
	}
	got, err := corefmt.DecodeBase64URL(res.State.AfterSnapB64U)
	if err != nil || !bytes.Equal(got, after) {
		t.Errorf("after snap round trip failed: %v %v", got, err)
	}

	if _, err := dto.NewPointsResultDTO(nil, nil, nil, nil); err == nil {
		t.Error("nil setting should fail")
	}
}

func TestNewCatalogSummaryDTO(t *testing.T) {
	gs := &spec.GenSetting{GenName: "halton23", GenID: 5, Kind: spec.KindHalton, Bases: []int{2, 3}}
	s := dto.NewCatalogSummaryDTO(gs)
	if s.Dim != 2 || s.GenName != "halton23" || len(s.Bases) != 2 {
		t.Errorf("summary mismatch: %+v", s)
	}
	// Bases 必須是拷貝
	s.Bases[0] = 99
	if gs.Bases[0] != 2 {
		t.Error("summary bases alias the setting")
	}
}
