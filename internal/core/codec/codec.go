// Package codec 提供按格式标签选择的值编解码
//
// 每种格式只承诺"能解码自己编码出的值"，上层不依赖任何格式的内部行为。
// 解码失败统一归类为 Deserialize 错误，编码失败不改变通道状态。
package codec

import (
	"fmt"
	"sort"

	"github.com/znx3p0/canary/pkg/interfaces"
	"github.com/znx3p0/canary/pkg/types"
)

// Codec 编解码器
type Codec = interfaces.FrameCodec

var registry = map[types.Format]Codec{
	types.FormatBincode:     bincodeCodec{},
	types.FormatJSON:        jsonCodec{},
	types.FormatBSON:        bsonCodec{},
	types.FormatPostcard:    postcardCodec{},
	types.FormatMessagePack: msgpackCodec{},
}

// For 返回格式对应的编解码器
func For(format types.Format) (Codec, error) {
	c, ok := registry[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return c, nil
}

// MustFor 返回格式对应的编解码器，格式未知时 panic
func MustFor(format types.Format) Codec {
	c, err := For(format)
	if err != nil {
		panic(err)
	}
	return c
}

// Default 返回默认编解码器
func Default() Codec {
	return registry[types.DefaultFormat]
}

// Supported 返回所有支持的格式，按标签升序
func Supported() []types.Format {
	out := make([]types.Format, 0, len(registry))
	for f := range registry {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsSupported 是否支持该格式
func IsSupported(format types.Format) bool {
	_, ok := registry[format]
	return ok
}

// decodeError 将底层解码错误包装为 Deserialize
func decodeError(format types.Format, err error) error {
	return types.NewError(types.KindDeserialize, "decode "+format.String(), err)
}

func checkTarget(v any) error {
	if v == nil {
		return ErrNilTarget
	}
	return nil
}
