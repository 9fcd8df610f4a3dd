package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code 表示系统内的统一错误码。
type Code string

// Severity 描述错误的严重程度，用于日志与审计。
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

const (
	CodeUnknown               Code = "UNKNOWN"
	CodeInvalidArgument       Code = "INVALID_ARGUMENT"
	CodeNotFound              Code = "NOT_FOUND"
	CodeUpstreamFailure       Code = "UPSTREAM_FAILURE"
	CodeLLMFailure            Code = "LLM_FAILURE"
	CodeTimeout               Code = "TIMEOUT"
	CodeInitializationFailure Code = "INITIALIZATION_FAILURE"
)

// Attributes 为错误码提供默认行为。
type Attributes struct {
	Message    string
	Severity   Severity
	Retryable  bool
	HTTPStatus int
}

var registry = map[Code]Attributes{
	CodeUnknown: {
		Message:    "unknown error",
		Severity:   SeverityCritical,
		Retryable:  false,
		HTTPStatus: http.StatusInternalServerError,
	},
	CodeInvalidArgument: {
		Message:    "invalid argument",
		Severity:   SeverityInfo,
		Retryable:  false,
		HTTPStatus: http.StatusBadRequest,
	},
	CodeNotFound: {
		Message:    "resource not found",
		Severity:   SeverityInfo,
		Retryable:  false,
		HTTPStatus: http.StatusNotFound,
	},
	CodeUpstreamFailure: {
		Message:    "upstream chain-data failure",
		Severity:   SeverityWarning,
		Retryable:  true,
		HTTPStatus: http.StatusBadGateway,
	},
	CodeLLMFailure: {
		Message:    "model backend failure",
		Severity:   SeverityCritical,
		Retryable:  true,
		HTTPStatus: http.StatusInternalServerError,
	},
	CodeTimeout: {
		Message:    "operation timed out",
		Severity:   SeverityWarning,
		Retryable:  true,
		HTTPStatus: http.StatusGatewayTimeout,
	},
	CodeInitializationFailure: {
		Message:    "service not initialized",
		Severity:   SeverityWarning,
		Retryable:  true,
		HTTPStatus: http.StatusServiceUnavailable,
	},
}

// AttributesOf 返回错误码对应的属性。若未注册则返回 UNKNOWN 的属性。
func AttributesOf(code Code) Attributes {
	if attr, ok := registry[code]; ok {
		return attr
	}
	return registry[CodeUnknown]
}

// Error 是系统内统一的错误类型。
type Error struct {
	code    Code
	message string
	cause   error
}

// New 创建一个新的错误实例。
func New(code Code, message string) *Error {
	if message == "" {
		message = AttributesOf(code).Message
	}
	return &Error{code: code, message: message}
}

// Wrap 在已有错误外包裹统一错误类型。
func Wrap(code Code, cause error, message string) *Error {
	e := New(code, message)
	e.cause = cause
	return e
}

// Error 实现 error 接口。
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

// Unwrap 实现 errors.Unwrap。
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is 允许通过 errors.Is 判断是否相同错误码。
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.code == t.code
}

// Code 返回错误码。
func (e *Error) Code() Code {
	if e == nil {
		return CodeUnknown
	}
	return e.code
}

// Message 返回错误信息。
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Severity 返回错误严重程度。
func (e *Error) Severity() Severity {
	if e == nil {
		return SeverityInfo
	}
	return AttributesOf(e.code).Severity
}

// From 尝试从 error 中解析统一错误类型。
func From(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var target *Error
	if stdErrors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CodeOf 返回错误对应的错误码。
func CodeOf(err error) Code {
	if e, ok := From(err); ok {
		return e.Code()
	}
	return CodeUnknown
}

// HTTPStatusOf 返回错误对应的 HTTP 状态码，供 API 层统一映射。
func HTTPStatusOf(err error) int {
	return AttributesOf(CodeOf(err)).HTTPStatus
}

// RetryableError 判断任意 error 是否可重试。
func RetryableError(err error) bool {
	return AttributesOf(CodeOf(err)).Retryable
}
