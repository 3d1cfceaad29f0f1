package index

import (
	"encoding/json"
	"net/http"
)

// IndexHandlerFn 回傳服務簡介與可用路由，當作最小的存活探測頁。
func IndexHandlerFn(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"service": "ldslab",
		"routes": []string{
			"GET  /v1/catalog",
			"GET  /v1/metrics",
			"GET  /v1/points?gid=&count=&seed=&has_seed=&start_b64u=",
			"POST /v1/points",
			"GET  /v1/sim?gid=&points=&mp=&baseline=&seed=",
			"POST /v1/sim",
			"POST /v1/simbycfg",
		},
	})
}
