package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/ldslab/server/httperr"
)

// Catalog 列出目前已註冊的生成器摘要（ID、名稱、種類、bases、維度）。
func (sh *SimHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sum, err := sh.Ldslab.Summary()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sum); err != nil {
		httperr.Errs(w, err)
		return
	}
}
