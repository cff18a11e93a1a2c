package socketsys

import "errors"

var (
	// ErrSystemClosed System 已关闭
	ErrSystemClosed = errors.New("socketsys: system closed")

	// ErrUnknownHost 主机名无法解析
	ErrUnknownHost = errors.New("socketsys: unknown host")
)
