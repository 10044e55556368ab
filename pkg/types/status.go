package types

// StatusCode 分发结果码
type StatusCode uint8

const (
	// StatusUnknown 未知
	StatusUnknown StatusCode = 0
	// StatusFound 路径已解析，服务接管通道
	StatusFound StatusCode = 1
	// StatusNotFound 路径不存在
	StatusNotFound StatusCode = 2
)

// String 返回结果码名称
func (c StatusCode) String() string {
	switch c {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Status 分发结果
//
// 由接受端在服务接管之前通过通道发送，使用与普通负载相同的编码。
type Status struct {
	Code StatusCode `json:"code" msgpack:"code" bson:"code" cbor:"1,keyasint"`
	// Message 附加说明，NotFound 时为未解析的路径
	Message string `json:"message,omitempty" msgpack:"message,omitempty" bson:"message,omitempty" cbor:"2,keyasint,omitempty"`
}

// Found 构造成功状态
func Found() Status {
	return Status{Code: StatusFound}
}

// NotFound 构造未找到状态
func NotFound(path string) Status {
	return Status{Code: StatusNotFound, Message: path}
}

// Err 将状态转换为错误，Found 返回 nil
func (s Status) Err() error {
	switch s.Code {
	case StatusFound:
		return nil
	case StatusNotFound:
		return Errorf(KindNotFound, "dispatch", "path %q not found", s.Message)
	default:
		return Errorf(KindDeserialize, "dispatch", "unexpected status %d", s.Code)
	}
}
