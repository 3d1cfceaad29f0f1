package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/zintix-labs/ldslab"
	"github.com/zintix-labs/ldslab/dto"
	"github.com/zintix-labs/ldslab/errs"
	"github.com/zintix-labs/ldslab/server/httperr"
	"github.com/zintix-labs/ldslab/server/svrcfg"
)

func (c *PointsHandler) Points(w http.ResponseWriter, q *http.Request) {
	// 請求方法、結構體校驗
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := dto.DecodePointsRequest(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pq, err := req.Parse()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	// 請求解析完成，設置超時 context
	ctx := q.Context()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// 開始取點
	result, err := c.rt.Points(ctx, pq)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// Metrics 回傳所有 GenPool 的拉取式觀測快照。
func (c *PointsHandler) Metrics(w http.ResponseWriter, q *http.Request) {
	if q.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(c.rt.Metrics()); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// ============================================================
// ** PointsHandler **
// ============================================================

type PointsHandler struct {
	rt *ldslab.LdsRuntime
}

func NewPointsHandler(sCfg *svrcfg.SvrCfg) (*PointsHandler, error) {
	rt, err := sCfg.Ldslab.BuildRuntime(sCfg.GenBufSize)
	if err != nil {
		return nil, errs.Wrap(err, "build points handler error")
	}
	return &PointsHandler{rt: rt}, nil
}
