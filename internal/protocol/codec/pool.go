package codec

import (
	"bytes"
	"sync"

	"github.com/palemoky/impostor/internal/protocol"
)

// pool 带归还前清理的对象池
type pool[T any] struct {
	p     sync.Pool
	reset func(*T)
}

func newPool[T any](reset func(*T)) *pool[T] {
	return &pool[T]{
		p:     sync.Pool{New: func() any { return new(T) }},
		reset: reset,
	}
}

func (p *pool[T]) get() *T { return p.p.Get().(*T) }

func (p *pool[T]) put(v *T) {
	if v == nil {
		return
	}
	p.reset(v)
	p.p.Put(v)
}

var (
	messages = newPool(func(m *protocol.Message) { *m = protocol.Message{} })
	buffers  = newPool(func(b *bytes.Buffer) { b.Reset() })
)

// GetMessage 从池中取出一条空消息
func GetMessage() *protocol.Message { return messages.get() }

// PutMessage 清空消息并归还，nil 忽略
func PutMessage(msg *protocol.Message) { messages.put(msg) }

// GetBuffer 从池中取出一个空缓冲区
func GetBuffer() *bytes.Buffer { return buffers.get() }

// PutBuffer 清空缓冲区并归还，保留容量
func PutBuffer(buf *bytes.Buffer) { buffers.put(buf) }
