package route

import (
	"errors"
)

var (
	// ErrEmptyName 名称为空或包含分隔符
	ErrEmptyName = errors.New("route: invalid name")

	// ErrNilService 服务为空
	ErrNilService = errors.New("route: nil service")

	// ErrNilRoute 子路由为空
	ErrNilRoute = errors.New("route: nil route")
)
