package upgrader

import "errors"

var (
	// ErrNilTransports 未提供安全传输
	ErrNilTransports = errors.New("upgrader: nil security transports")

	// ErrMalformedHello hello 或 ack 无法解析
	ErrMalformedHello = errors.New("upgrader: malformed hello")
)
