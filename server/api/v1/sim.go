package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/zintix-labs/ldslab"
	"github.com/zintix-labs/ldslab/errs"
	"github.com/zintix-labs/ldslab/server/httperr"
	"github.com/zintix-labs/ldslab/spec"
	"github.com/zintix-labs/ldslab/stats"
)

type SimHandler struct {
	Ldslab *ldslab.Ldslab
}

func NewSimHandler(lab *ldslab.Ldslab) (*SimHandler, error) {
	return &SimHandler{Ldslab: lab}, nil
}

func (sh *SimHandler) Sim(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type SimRequestBody struct {
		GID      spec.GID `json:"gid"`
		Points   int      `json:"points"`
		MP       int      `json:"mp"`
		Baseline bool     `json:"baseline"`
		Seed     *uint64  `json:"seed,omitempty"`
	}
	// 內部結構 不影響外部 也不被外部使用
	type SimResponse struct {
		Stats    *stats.UniformReport `json:"stats"`
		Baseline *stats.UniformReport `json:"baseline,omitempty"`
		UsedTime int64                `json:"used_ms"`
	}
	// ---
	req := new(SimRequestBody)
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if q.Method == http.MethodGet {
		// gid
		if s := q.URL.Query().Get("gid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("gid must be non-negative integer"))
				return
			}
			req.GID = spec.GID(u)
		} else {
			// 直接空值
			httperr.Errs(w, errs.NewWarn("gid is required"))
			return
		}

		// points
		if r := q.URL.Query().Get("points"); r != "" {
			u, err := strconv.ParseInt(r, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("points must be integer"))
				return
			}
			req.Points = int(u)
		} else {
			httperr.Errs(w, errs.NewWarn("points is required"))
			return
		}

		// mp
		if m := q.URL.Query().Get("mp"); m != "" {
			u, err := strconv.ParseInt(m, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("mp must be integer"))
				return
			}
			req.MP = int(u)
		}

		// baseline
		if b := q.URL.Query().Get("baseline"); b != "" {
			v, err := strconv.ParseBool(b)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("baseline must be boolean"))
				return
			}
			req.Baseline = v
		}

		// seed
		if s := q.URL.Query().Get("seed"); s != "" {
			u, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("seed must be uint64"))
				return
			}
			v := u
			req.Seed = &v
		}
	}
	if q.Method == http.MethodPost {
		if err := json.NewDecoder(q.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
	}
	// 業務檢驗
	_, ok := sh.Ldslab.EntryById(req.GID)
	if !ok {
		httperr.Errs(w, errs.NewWarn("gid not found"))
		return
	}
	if req.Points < 1 || req.Points > 10000000 {
		httperr.Errs(w, errs.NewWarn("points must be between 1 to 10,000,000"))
		return
	}
	if req.MP < 0 || req.MP > 32 {
		httperr.Errs(w, errs.NewWarn("mp must be between 0 to 32"))
		return
	}
	if req.MP > 0 && req.Points%req.MP != 0 {
		httperr.Errs(w, errs.NewWarn("points must be divisible by mp"))
		return
	}

	// seed 未指定時沿用設定檔的起始 index（低差異序列本身是確定性的）
	var (
		sim *ldslab.Simulator
		err error
	)
	if req.Seed != nil {
		sim, err = sh.Ldslab.NewSimulatorWithSeed(req.GID, *req.Seed)
	} else {
		sim, err = sh.Ldslab.NewSimulator(req.GID)
	}
	if err != nil {
		// 這裡的錯誤是來自ldslab 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, fmt.Sprintf("build simulator err: %d", req.GID)))
		return
	}

	var st *stats.UniformReport
	var used int64
	if req.MP > 1 {
		r, d, serr := sim.SimMP(req.Points/req.MP, req.MP, false)
		if serr != nil {
			httperr.Errs(w, errs.Wrap(serr, "simulate err"))
			return
		}
		st, used = r, d.Milliseconds()
	} else {
		r, d, serr := sim.Sim(req.Points, false)
		if serr != nil {
			httperr.Errs(w, errs.Wrap(serr, "simulate err"))
			return
		}
		st, used = r, d.Milliseconds()
	}

	resp := SimResponse{
		Stats:    st,
		UsedTime: used,
	}
	if req.Baseline {
		base, d, berr := sim.SimBaseline(req.Points, false)
		if berr != nil {
			httperr.Errs(w, errs.Wrap(berr, "baseline err"))
			return
		}
		resp.Baseline = base
		resp.UsedTime += d.Milliseconds()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
