package codec

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/znx3p0/canary/pkg/types"
)

// bsonCodec BSON 格式
//
// BSON 顶层必须是文档，值统一包装为 {"v": value}，
// 因此标量、切片和结构体都可以直接发送。
type bsonCodec struct{}

type bsonEnvelope struct {
	V bson.RawValue `bson:"v"`
}

func (bsonCodec) Format() types.Format { return types.FormatBSON }

func (bsonCodec) Encode(v any) ([]byte, error) {
	return bson.Marshal(bson.D{{Key: "v", Value: v}})
}

func (bsonCodec) Decode(data []byte, v any) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	var env bsonEnvelope
	if err := bson.Unmarshal(data, &env); err != nil {
		return decodeError(types.FormatBSON, err)
	}
	if err := env.V.Unmarshal(v); err != nil {
		return decodeError(types.FormatBSON, err)
	}
	return nil
}
