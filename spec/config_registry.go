package spec

import (
	"encoding/json"

	"github.com/zintix-labs/ldslab/errs"
	"gopkg.in/yaml.v3"
)

// GetGenSettingByYAML
// 會讀取 YAML 設定、正規化欄位並執行基本檢查後回傳。
func GetGenSettingByYAML(data []byte) (*GenSetting, error) {
	gs := &GenSetting{}
	if err := yaml.Unmarshal(data, gs); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}

	if err := gs.init(); err != nil {
		return nil, errs.Wrap(err, "gen setting initialized err")
	}

	return gs, nil
}

// GetGenSettingByJSON
// 會讀取 JSON 設定、正規化欄位並執行基本檢查後回傳。
func GetGenSettingByJSON(data []byte) (*GenSetting, error) {
	gs := &GenSetting{}
	if err := json.Unmarshal(data, gs); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}

	if err := gs.init(); err != nil {
		return nil, errs.Wrap(err, "gen setting initialized err")
	}

	return gs, nil
}
