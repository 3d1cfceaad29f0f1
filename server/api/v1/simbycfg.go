package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/ldslab/errs"
	"github.com/zintix-labs/ldslab/server/httperr"
)

// SetByJson 傳入 JSON設定格式 以及希望取樣的點數
func (sh *SimHandler) SetByJson(w http.ResponseWriter, r *http.Request) {
	type SimRequestByJson struct {
		Points     int             `json:"points"`
		GenSetting json.RawMessage `json:"cfg"`
		Seed       *uint64         `json:"seed,omitempty"`
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// 1. decode request
	req := new(SimRequestByJson)
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20) // 5MB
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		httperr.Errs(w, errs.Wrap(err, "json decode failed"))
		return
	}

	// 2. vaild points
	if req.Points < 1 || req.Points > 10000000 {
		httperr.Errs(w, errs.NewWarn("points must be between 1 to 10,000,000"))
		return
	}
	var seed uint64
	if req.Seed != nil {
		seed = *req.Seed
	}

	// 3. NewSimulator
	sim, err := sh.Ldslab.NewSimulatorByJSON(req.GenSetting, seed)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	result, _, err := sim.Sim(req.Points, false)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	// 4. 回傳Json
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
