package errors

import (
	"errors"
	"fmt"
)

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam  = 400
	CodeUnauthorized  = 401
	CodeForbidden     = 403
	CodeNotFound      = 404
	CodeConflict      = 409
	CodeQuotaExceeded = 429
	CodeServerError   = 500
)

// ========== 业务错误类型 ==========

// 错误种类哨兵，配合 errors.Is 判断错误类别
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrQuotaExceeded   = errors.New("quota exceeded")
	ErrValidation      = errors.New("validation failed")
	ErrInternal        = errors.New("internal error")
)

// AppError 业务错误 - 携带对外安全的提示信息和响应码
type AppError struct {
	Kind    error  // 错误种类哨兵
	Code    int    // 响应码
	Message string // 对外提示信息，不包含实现细节
}

func (e *AppError) Error() string {
	return e.Message
}

// Is 支持 errors.Is 按种类匹配
func (e *AppError) Is(target error) bool {
	return target == e.Kind
}

// ========== 构造方法 ==========

// Unauthenticated 未认证：凭证缺失、无效或过期
func Unauthenticated(message string) *AppError {
	return &AppError{Kind: ErrUnauthenticated, Code: CodeUnauthorized, Message: message}
}

// Forbidden 无权限：策略拒绝，包括跨租户访问
func Forbidden(message string) *AppError {
	return &AppError{Kind: ErrForbidden, Code: CodeForbidden, Message: message}
}

// NotFound 资源不存在或不在调用方可见范围内（两者不作区分，避免跨租户探测）
func NotFound(message string) *AppError {
	return &AppError{Kind: ErrNotFound, Code: CodeNotFound, Message: message}
}

// Conflict 唯一约束冲突：子域名、邮箱
func Conflict(message string) *AppError {
	return &AppError{Kind: ErrConflict, Code: CodeConflict, Message: message}
}

// QuotaExceeded 订阅配额已满
func QuotaExceeded(message string) *AppError {
	return &AppError{Kind: ErrQuotaExceeded, Code: CodeQuotaExceeded, Message: message}
}

// Validation 参数校验失败
func Validation(message string) *AppError {
	return &AppError{Kind: ErrValidation, Code: CodeInvalidParam, Message: message}
}

// Internal 内部错误 - 对外只返回通用提示，细节由调用方记录日志
func Internal() *AppError {
	return &AppError{Kind: ErrInternal, Code: CodeServerError, Message: "服务器内部错误"}
}

// CodeOf 取错误对应的响应码，非业务错误一律按内部错误处理
func CodeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeServerError
}

// MessageOf 取错误的对外提示信息
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "服务器内部错误"
}

// Wrapf 包装底层错误并附加上下文，仅用于日志，不对外暴露
func Wrapf(err error, format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, err)...)
}
