package identity

import "errors"

var (
	// ErrInvalidKeySize 无效的密钥大小
	ErrInvalidKeySize = errors.New("identity: invalid key size")

	// ErrInvalidID 无效的身份标识
	ErrInvalidID = errors.New("identity: invalid id")

	// ErrInvalidPEM 无效的 PEM 数据
	ErrInvalidPEM = errors.New("identity: invalid PEM data")

	// ErrKeyNotFound 密钥文件不存在
	ErrKeyNotFound = errors.New("identity: key not found")
)
