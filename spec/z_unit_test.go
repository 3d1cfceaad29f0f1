package spec

import (
	"testing"

	"github.com/zintix-labs/ldslab/errs"
)

// TestGetGenSettingByYAML 驗證 YAML 解析與正規化
func TestGetGenSettingByYAML(t *testing.T) {
	raw := []byte(`
gen_name: "  Sphere Demo  "
gen_id: 3001
kind: "Sphere"
bases: [2, 3]
seed: 0
`)
	gs, err := GetGenSettingByYAML(raw)
	if err != nil {
		t.Fatal(err)
	}
	if gs.GenName != "Sphere Demo" {
		t.Errorf("gen_name = %q", gs.GenName)
	}
	if gs.Kind != KindSphere {
		t.Errorf("kind = %q, want sphere", gs.Kind)
	}
	if gs.Dim() != 3 {
		t.Errorf("dim = %d, want 3", gs.Dim())
	}
}

// TestGetGenSettingByJSON 驗證 JSON 解析
func TestGetGenSettingByJSON(t *testing.T) {
	raw := []byte(`{"gen_name":"h2","gen_id":1,"kind":"halton","bases":[2,3,5]}`)
	gs, err := GetGenSettingByJSON(raw)
	if err != nil {
		t.Fatal(err)
	}
	if gs.Dim() != 3 {
		t.Errorf("halton dim = %d, want len(bases)=3", gs.Dim())
	}
}

// TestGenSetting_Valid 驗證各種不合法設定於載入期就失敗
func TestGenSetting_Valid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"unknown kind", "gen_name: a\ngen_id: 1\nkind: cube\nbases: [2]"},
		{"empty name", "gen_name: ''\ngen_id: 1\nkind: vdc\nbases: [2]"},
		{"base < 2", "gen_name: a\ngen_id: 1\nkind: vdc\nbases: [1]"},
		{"no bases", "gen_name: a\ngen_id: 1\nkind: halton\nbases: []"},
		{"duplicate base", "gen_name: a\ngen_id: 1\nkind: halton\nbases: [2, 2]"},
		{"sphere 1 base", "gen_name: a\ngen_id: 1\nkind: sphere\nbases: [2]"},
		{"hopf 2 bases", "gen_name: a\ngen_id: 1\nkind: sphere3hopf\nbases: [2, 3]"},
	}
	for _, c := range cases {
		_, err := GetGenSettingByYAML([]byte(c.yaml))
		if err == nil {
			t.Errorf("[%s] expected error, got nil", c.name)
			continue
		}
		if !errs.IsConfig(err) {
			t.Errorf("[%s] expected KindConfig, got %v", c.name, err)
		}
	}
}
