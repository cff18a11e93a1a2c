// Package native 实现基于原生系统调用的 socket 后端
//
// 监听 socket 直接通过 golang.org/x/sys/unix 创建，按请求的 backlog
// 调用 listen(2)，并设置 SO_REUSEADDR / SO_REUSEPORT，随后交给
// net.FileListener 接管。出站连接沿用标准拨号，只在拨号前设置端口复用。
//
// 命名子系统缓存在 LRU 中，每个子系统拥有独立的后端实例。
//
// 不支持的平台上 New 返回配置错误。
package native
