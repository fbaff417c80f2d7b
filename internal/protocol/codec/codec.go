package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/palemoky/impostor/internal/protocol"
)

// Framing 帧格式
type Framing int

const (
	FramingText   Framing = iota // JSON 文本帧
	FramingBinary                // protobuf wire 二进制帧
)

// 二进制信封字段号
//
//	message Envelope { string type = 1; string req_id = 2; bytes payload = 3; }
const (
	fieldType    protowire.Number = 1
	fieldReqID   protowire.Number = 2
	fieldPayload protowire.Number = 3
)

var ErrMalformedFrame = errors.New("codec: malformed binary frame")

// NewMessage payload 以 JSON 编码，返回的消息取自对象池
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	msg := GetMessage()
	msg.Type = msgType

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			PutMessage(msg)
			return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
		}
		msg.Payload = data
	}
	return msg, nil
}

// MustNewMessage 仅用于 payload 一定能编码的场景
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// NewReply 创建响应消息，带回请求的 req_id
func NewReply(reqID string, msgType protocol.MessageType, payload any) *protocol.Message {
	msg := MustNewMessage(msgType, payload)
	msg.ReqID = reqID
	return msg
}

// Encode 按帧格式编码消息
func Encode(m *protocol.Message, framing Framing) ([]byte, error) {
	if framing == FramingBinary {
		return EncodeBinary(m), nil
	}
	return EncodeJSON(m)
}

// Decode 返回的消息用完后交给 PutMessage
func Decode(data []byte, framing Framing) (*protocol.Message, error) {
	if framing == FramingBinary {
		return DecodeBinary(data)
	}
	return DecodeJSON(data)
}

// EncodeJSON 将消息编码为 JSON 文本
func EncodeJSON(m *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return nil, err
	}
	// Encoder 会追加换行；buf 归还池前复制
	out := buf.Bytes()
	return append([]byte(nil), out[:len(out)-1]...), nil
}

// DecodeJSON 从 JSON 文本解码消息
func DecodeJSON(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	return msg, nil
}

// EncodeBinary 将消息编码为 protobuf wire 格式
func EncodeBinary(m *protocol.Message) []byte {
	size := protowire.SizeTag(fieldType) + protowire.SizeBytes(len(m.Type)) +
		protowire.SizeTag(fieldReqID) + protowire.SizeBytes(len(m.ReqID)) +
		protowire.SizeTag(fieldPayload) + protowire.SizeBytes(len(m.Payload))

	b := make([]byte, 0, size)
	b = protowire.AppendTag(b, fieldType, protowire.BytesType)
	b = protowire.AppendString(b, string(m.Type))
	if m.ReqID != "" {
		b = protowire.AppendTag(b, fieldReqID, protowire.BytesType)
		b = protowire.AppendString(b, m.ReqID)
	}
	if len(m.Payload) > 0 {
		b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Payload)
	}
	return b
}

// DecodeBinary 从 protobuf wire 格式解码消息，未知字段跳过
func DecodeBinary(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	malformed := func() (*protocol.Message, error) {
		PutMessage(msg)
		return nil, ErrMalformedFrame
	}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return malformed()
		}
		data = data[n:]

		if typ != protowire.BytesType {
			if n = protowire.ConsumeFieldValue(num, typ, data); n < 0 {
				return malformed()
			}
			data = data[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return malformed()
		}
		data = data[n:]

		switch num {
		case fieldType:
			msg.Type = protocol.MessageType(v)
		case fieldReqID:
			msg.ReqID = string(v)
		case fieldPayload:
			msg.Payload = append([]byte(nil), v...) // data 可能被调用方复用
		}
	}

	if msg.Type == "" {
		return malformed()
	}
	return msg, nil
}

// ParsePayload 空 payload 得到 T 的零值
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	var payload T
	if len(msg.Payload) == 0 {
		return &payload, nil
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// NewErrorMessage 使用错误码的默认文案
func NewErrorMessage(code int) *protocol.Message {
	return NewErrorMessageWithText(code, protocol.ErrorMessages[code])
}

func NewErrorMessageWithText(code int, text string) *protocol.Message {
	return MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    code,
		Message: text,
	})
}
