package codec

import (
	"bytes"
	"encoding/gob"

	"github.com/znx3p0/canary/pkg/types"
)

// bincodeCodec 默认二进制格式，基于 encoding/gob
//
// 每帧独立编码，类型描述随帧一起发送，接收端不需要保留跨帧状态。
type bincodeCodec struct{}

func (bincodeCodec) Format() types.Format { return types.FormatBincode }

func (bincodeCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (bincodeCodec) Decode(data []byte, v any) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return decodeError(types.FormatBincode, err)
	}
	return nil
}
