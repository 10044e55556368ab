package codec

import (
	"encoding/json"

	"github.com/znx3p0/canary/pkg/types"
)

type jsonCodec struct{}

func (jsonCodec) Format() types.Format { return types.FormatJSON }

func (jsonCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Decode(data []byte, v any) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return decodeError(types.FormatJSON, err)
	}
	return nil
}
