// Package tcp 实现基于 Go net 包的标准 socket 后端
//
// 标准后端支持全部可选能力：
//   - TCP 监听与连接（net.ListenConfig / net.Dialer）
//   - TLS 客户端连接（crypto/tls，协议版本按名称限定）
//   - Unix 域 socket
//   - 流式连接构建器校验
//
// 该后端不提供原生传输，监听时忽略 native 偏好。
package tcp
