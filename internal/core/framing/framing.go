// Package framing 实现带长度前缀的帧
//
// 帧格式：
//
//	uvarint(len) || payload
//
// 读取端逐字节解析前缀、按长度精确读取负载，从不超读，
// 因此同一条流可以依次交给协议协商、握手和通道使用。
package framing

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/multiformats/go-varint"
)

// DefaultMaxFrameSize 默认最大帧长度（16 MiB）
const DefaultMaxFrameSize = 16 << 20

// ============================================================================
//                              Writer
// ============================================================================

// Writer 帧写入器
//
// 并发调用 WriteFrame 是安全的，两帧的字节不会交错。
type Writer struct {
	mu      sync.Mutex
	w       io.Writer
	maxSize int
}

// NewWriter 创建帧写入器，maxSize <= 0 时使用默认值
func NewWriter(w io.Writer, maxSize int) *Writer {
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}
	return &Writer{w: w, maxSize: maxSize}
}

// WriteFrame 写入一帧
func (fw *Writer) WriteFrame(payload []byte) error {
	if len(payload) > fw.maxSize {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(payload), fw.maxSize)
	}

	bufs := net.Buffers{varint.ToUvarint(uint64(len(payload))), payload}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	_, err := bufs.WriteTo(fw.w)
	return err
}

// ============================================================================
//                              Reader
// ============================================================================

// Reader 帧读取器
//
// 不支持并发读取；同一方向只应有一个读取者。
type Reader struct {
	r       io.Reader
	maxSize int
	one     [1]byte
}

// NewReader 创建帧读取器，maxSize <= 0 时使用默认值
func NewReader(r io.Reader, maxSize int) *Reader {
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}
	return &Reader{r: r, maxSize: maxSize}
}

// ReadByte 实现 io.ByteReader，供 varint 解析使用
func (fr *Reader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(fr.r, fr.one[:]); err != nil {
		return 0, err
	}
	return fr.one[0], nil
}

// ReadFrame 读取一帧
//
// 在帧边界上遇到流关闭返回 io.EOF，帧中途关闭返回 io.ErrUnexpectedEOF。
func (fr *Reader) ReadFrame() ([]byte, error) {
	n, err := varint.ReadUvarint(fr)
	if err != nil {
		return nil, err
	}
	if n > uint64(fr.maxSize) {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, fr.maxSize)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(fr.r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// ============================================================================
//                              便捷函数
// ============================================================================

// WriteFrame 向 w 写入一帧，用于握手等单写者场景
func WriteFrame(w io.Writer, payload []byte) error {
	return NewWriter(w, 0).WriteFrame(payload)
}

// ReadFrame 从 r 读取一帧
func ReadFrame(r io.Reader) ([]byte, error) {
	return NewReader(r, 0).ReadFrame()
}
