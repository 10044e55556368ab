package codec

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/znx3p0/canary/pkg/types"
)

// postcardCodec 紧凑二进制格式
//
// 线上标签沿用 postcard，编码使用 CBOR（RFC 8949）。
type postcardCodec struct{}

func (postcardCodec) Format() types.Format { return types.FormatPostcard }

func (postcardCodec) Encode(v any) ([]byte, error) {
	return cbor.Marshal(v)
}

func (postcardCodec) Decode(data []byte, v any) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	if err := cbor.Unmarshal(data, v); err != nil {
		return decodeError(types.FormatPostcard, err)
	}
	return nil
}
