package core

import (
	"encoding/json"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/xint-dev/xint/internal/common/errorx"
)

// arguments gives typed access to tools/call arguments. A field of the wrong
// JSON type reads as absent.
type arguments struct {
	raw gjson.Result
}

func newArguments(raw string) arguments {
	return arguments{raw: gjson.Parse(raw)}
}

func (a arguments) get(key string) gjson.Result {
	if !a.raw.IsObject() {
		return gjson.Result{}
	}
	return a.raw.Get(key)
}

func (a arguments) String(key string) (string, bool) {
	v := a.get(key)
	if v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

// StringOr returns the string at key, or def when it is absent
func (a arguments) StringOr(key, def string) string {
	if v, ok := a.String(key); ok {
		return v
	}
	return def
}

// Require returns the string at key or a ToolArgumentMissing error
func (a arguments) Require(key string) (string, error) {
	if v, ok := a.String(key); ok {
		return v, nil
	}
	return "", missing(key)
}

// Uint reads a non-negative JSON integer. Fractional and exponent forms
// do not count.
func (a arguments) Uint(key string) (uint64, bool) {
	v := a.get(key)
	if v.Type != gjson.Number {
		return 0, false
	}
	n, err := strconv.ParseUint(v.Raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (a arguments) UintOr(key string, def uint64) uint64 {
	if v, ok := a.Uint(key); ok {
		return v
	}
	return def
}

func (a arguments) BoolOr(key string, def bool) bool {
	switch a.get(key).Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	}
	return def
}

// Array decodes the array at key into generic values
func (a arguments) Array(key string) []any {
	v := a.get(key)
	if !v.IsArray() {
		return nil
	}
	var out []any
	if err := json.Unmarshal([]byte(v.Raw), &out); err != nil {
		return nil
	}
	return out
}

// Raw returns the JSON text at key when present, including null
func (a arguments) Raw(key string) (json.RawMessage, bool) {
	v := a.get(key)
	if !v.Exists() {
		return nil, false
	}
	return json.RawMessage(v.Raw), true
}

func missing(key string) error {
	return errorx.New(errorx.KindToolArgumentMissing, "Missing %s", key)
}
