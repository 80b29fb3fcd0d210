package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat 表达式结构不合法（字段数量或语法）
	ErrInvalidFormat = errors.New("invalid cron format")
	// ErrOutOfDomain 字段取值越界或区间倒置
	ErrOutOfDomain = errors.New("cron value out of domain")
	// ErrEntryNotFound 目录中不存在该表达式
	ErrEntryNotFound = errors.New("catalog entry not found")
)

// FormatError 语法错误，在解析任何字段之前返回
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid cron expression %q", e.Input)
	}
	return fmt.Sprintf("invalid cron expression %q: %s", e.Input, e.Reason)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// DomainError 字段展开时发现的取值错误
type DomainError struct {
	Text   string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("cron field %q: %s", e.Text, e.Reason)
}

func (e *DomainError) Is(target error) bool {
	return target == ErrOutOfDomain
}
