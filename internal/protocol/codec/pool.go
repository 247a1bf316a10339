package codec

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/palemoky/codenames-arena/internal/protocol"
)

// maxPooledBuffer 超过这个容量的缓冲不放回池里，避免一次大视图长期占住内存
const maxPooledBuffer = 64 << 10

var (
	// inboundPool 读循环每帧解码一条消息，处理完即归还
	inboundPool = sync.Pool{
		New: func() any { return new(protocol.Message) },
	}

	// encodePool 广播时每个连接都要编码一份视图
	encodePool = sync.Pool{
		New: func() any { return new(bytes.Buffer) },
	}
)

func acquireInbound() *protocol.Message {
	return inboundPool.Get().(*protocol.Message)
}

// Release 归还 Decode 得到的消息，之后不能再使用 msg。
// Payload 置空而不是截断，已经交给业务层的 Payload 切片不会被下一帧覆盖。
func Release(msg *protocol.Message) {
	if msg == nil {
		return
	}
	msg.Type = ""
	msg.Payload = nil
	inboundPool.Put(msg)
}

// marshal 借用池里的缓冲编码 JSON，返回不含换行的独立副本
func marshal(v any) ([]byte, error) {
	buf := encodePool.Get().(*bytes.Buffer)
	defer releaseBuffer(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	return bytes.Clone(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})), nil
}

func releaseBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	buf.Reset()
	encodePool.Put(buf)
}
