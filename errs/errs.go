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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// ErrKind : 錯誤類別。
//
// Ldslab 的錯誤面非常窄：序列生成器一旦建構成功，Pop 就是 total function，
// 不會再產生 runtime error。因此類別只需要描述「建構期」會發生什麼事：
//   - KindConfig：無效設定（base < 2、空 base 列表、維度不足、重複 base）。
//   - KindOverflow：計數器溢位保護（合約保留位；uint64 計數在實務序列長度內不會觸發）。
type ErrKind uint8

const (
	KindNone ErrKind = iota
	KindConfig
	KindOverflow
)

var errKindMap = map[ErrKind]string{
	KindNone:     "",
	KindConfig:   "invalid_config",
	KindOverflow: "arith_overflow",
}

func ErrKd(kind ErrKind) string {
	if str, ok := errKindMap[kind]; ok {
		return str
	}
	return ""
}

// E 是統一的錯誤型別。
// Message 為經過樣板格式化後的主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 表示嚴重度；Kind 表示錯誤類別。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Kind    ErrKind
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Kind != KindNone {
		base = fmt.Sprintf("errlv=%s kind=%s %s", ErrLv(e.ErrLv), ErrKd(e.Kind), e.Message)
	}
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// Is 讓同 Kind 的 *E 以 errors.Is 互相命中（搭配 sentinel 使用）。
// 比對規則：target 為 *E 且 Kind 非 None 時，只比 Kind；其餘走指標相等。
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	if t.Kind != KindNone {
		return e.Kind == t.Kind
	}
	return e == t
}

// ErrInvalidConfig 為 KindConfig 的 sentinel，供 errors.Is 使用。
var ErrInvalidConfig = &E{Message: "invalid configuration", ErrLv: Fatal, Kind: KindConfig}

// ErrOverflow 為 KindOverflow 的 sentinel（合約保留位）。
var ErrOverflow = &E{Message: "arithmetic overflow", ErrLv: Fatal, Kind: KindOverflow}

// New 依錯誤等級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

// NewConfig 建立一個「無效設定」錯誤。
//
// 序列生成器的所有建構期檢查（base、維度、重複）都走這個入口，
// 呼叫端可用 errs.IsConfig(err) 或 errors.Is(err, errs.ErrInvalidConfig) 判別。
func NewConfig(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal, Kind: KindConfig}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func Configf(format string, a ...any) *E {
	return NewConfig(fmt.Sprintf(format, a...))
}

// IsConfig 回報 err 是否為（或包裹了）無效設定錯誤。
func IsConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel / Kind 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Kind（保持原本嚴重度與類別）。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	kind := KindNone
	if errors.As(cause, &e) {
		errLv = e.ErrLv
		kind = e.Kind
	}
	r := New(errLv, msg)
	r.Kind = kind
	r.Cause = cause
	return r
}

// WrapWithExtra 與 Wrap 相同，但可附加額外上下文字串。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}
