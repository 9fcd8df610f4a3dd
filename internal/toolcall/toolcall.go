// Package toolcall finds and best-effort parses an embedded tool invocation
// in model output. Detection and parsing are two independently failable steps
// so callers can distinguish "no tool intent" from "broken tool intent";
// neither step ever returns a Go error.
package toolcall

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	// OpenMarker 与 CloseMarker 是模型输出中工具调用块的协议定界符。
	OpenMarker  = "<toolcall>"
	CloseMarker = "</toolcall>"
)

// callPattern 提取定界符之间的第一个 JSON 对象（跨行、非贪婪）。
var callPattern = regexp.MustCompile(`(?s)<toolcall>\s*(\{.*?\})\s*</toolcall>`)

// Status 标识检测结果的形态。
type Status int

const (
	// StatusNotFound 表示输出中没有可用的工具调用块。
	StatusNotFound Status = iota
	// StatusParsed 表示成功解析出工具名与参数。
	StatusParsed
	// StatusParseError 表示找到了调用块但内容无法解析。
	StatusParseError
)

// Call 是解析后的工具调用。
type Call struct {
	Name      string
	Arguments map[string]any
}

// Detection 汇总一次检测与解析的结果。Raw 在 Parsed/ParseError 时保存
// 定界符之间的原始文本，供调用方原样返回。
type Detection struct {
	Status   Status
	Raw      string
	Call     *Call
	ParseErr string
}

// Detect 在补全文本中查找工具调用块并尝试解析。
func Detect(completion string) Detection {
	if !strings.Contains(completion, OpenMarker) || !strings.Contains(completion, CloseMarker) {
		return Detection{Status: StatusNotFound}
	}
	match := callPattern.FindStringSubmatch(completion)
	if match == nil {
		// 定界符存在但中间没有 JSON 对象，视为没有工具意图。
		return Detection{Status: StatusNotFound}
	}

	raw := match[1]
	call, err := Parse(raw)
	if err != nil {
		return Detection{Status: StatusParseError, Raw: raw, ParseErr: err.Error()}
	}
	return Detection{Status: StatusParsed, Raw: raw, Call: call}
}

// Parse 对调用块内容做宽容解析：参数允许出现在 arguments 或 parameters 键下。
func Parse(raw string) (*Call, error) {
	var decoded struct {
		Name       string         `json:"name"`
		Arguments  map[string]any `json:"arguments"`
		Parameters map[string]any `json:"parameters"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, err
	}
	args := decoded.Arguments
	if args == nil {
		args = decoded.Parameters
	}
	return &Call{Name: decoded.Name, Arguments: args}, nil
}
