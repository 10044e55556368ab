package dial

import "errors"

var (
	// ErrNilRegistry 提供者注册表为空
	ErrNilRegistry = errors.New("dial: nil provider registry")

	// ErrNilUpgrader 升级器为空
	ErrNilUpgrader = errors.New("dial: nil upgrader")
)
