package codec

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/znx3p0/canary/pkg/types"
)

type msgpackCodec struct{}

func (msgpackCodec) Format() types.Format { return types.FormatMessagePack }

func (msgpackCodec) Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Decode(data []byte, v any) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return decodeError(types.FormatMessagePack, err)
	}
	return nil
}
