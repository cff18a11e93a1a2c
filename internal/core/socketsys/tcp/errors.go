package tcp

import "errors"

var (
	// ErrBackendClosed 后端已关闭
	ErrBackendClosed = errors.New("tcp: backend closed")

	// ErrUnknownProtocol 未知的 TLS 协议名称
	ErrUnknownProtocol = errors.New("tcp: unknown TLS protocol")
)
