package handler

import (
	"github.com/palemoky/codenames-arena/internal/protocol"
	"github.com/palemoky/codenames-arena/internal/protocol/codec"
	"github.com/palemoky/codenames-arena/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) error {
	payload, err := parse[protocol.PingPayload](msg)
	if err != nil {
		return err
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: h.now().UnixMilli(),
	}))
	return nil
}
