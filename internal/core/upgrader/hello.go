package upgrader

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/znx3p0/canary/pkg/types"
)

// hello 字段编号
const (
	helloFieldPath   protowire.Number = 1
	helloFieldFormat protowire.Number = 2

	ackFieldAccepted protowire.Number = 1
	ackFieldReason   protowire.Number = 2
)

// hello 连接方声明的目标路径与格式
type hello struct {
	Path   string
	Format types.Format
}

func (h hello) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, helloFieldPath, protowire.BytesType)
	b = protowire.AppendString(b, h.Path)
	b = protowire.AppendTag(b, helloFieldFormat, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(h.Format))
	return b
}

func unmarshalHello(b []byte) (hello, error) {
	var h hello
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool, error) {
		switch {
		case num == helloFieldPath && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			h.Path = v
			return n, true, nil
		case num == helloFieldFormat && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n >= 0 && v > 0xff {
				return 0, true, fmt.Errorf("%w: format %d out of range", ErrMalformedHello, v)
			}
			h.Format = types.Format(v)
			return n, true, nil
		}
		return 0, false, nil
	})
	return h, err
}

// ack 接受方对 hello 的回复
type ack struct {
	Accepted bool
	Reason   string
}

func (a ack) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, ackFieldAccepted, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeBool(a.Accepted))
	if a.Reason != "" {
		b = protowire.AppendTag(b, ackFieldReason, protowire.BytesType)
		b = protowire.AppendString(b, a.Reason)
	}
	return b
}

func unmarshalAck(b []byte) (ack, error) {
	var a ack
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool, error) {
		switch {
		case num == ackFieldAccepted && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			a.Accepted = protowire.DecodeBool(v)
			return n, true, nil
		case num == ackFieldReason && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			a.Reason = v
			return n, true, nil
		}
		return 0, false, nil
	})
	return a, err
}

// walkFields 依次处理每个字段，field 返回 false 表示跳过未知字段
func walkFields(b []byte, field func(protowire.Number, protowire.Type, []byte) (int, bool, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformedHello, protowire.ParseError(n))
		}
		b = b[n:]

		n, known, err := field(num, typ, b)
		if err != nil {
			return err
		}
		if !known {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformedHello, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}
