package transport

import "errors"

var (
	// ErrNoProvider 地址类型没有对应的提供者
	ErrNoProvider = errors.New("transport: no provider for kind")

	// ErrDuplicateKind 地址类型重复注册
	ErrDuplicateKind = errors.New("transport: kind already registered")
)
