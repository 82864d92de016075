package dto

import "go-catan/entities"

type AuthResponse struct {
	Token string        `json:"token"`
	User  entities.User `json:"user"`
}

// WsAction 客户端通过 websocket 发送的动作，其余字段为动作参数
type WsAction struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
}

// WsReply answers one WsAction; events are pushed separately as entities.GameEvent.
type WsReply struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	OK        bool   `json:"ok"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
}
