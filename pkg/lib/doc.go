// Package lib 包含基础设施工具库
//
// 本目录包含与 socket 系统组件无关的通用工具库：
//
//   - log: 基于 log/slog 的组件日志封装
//
// # 与 pkg/ 其他目录的关系
//
//   - interfaces/: 组件公共接口（socket 后端、句柄、能力）
//   - lib/: 基础设施工具库（本目录）
//
// # 使用示例
//
//	import "github.com/dep2p/go-socketsys/pkg/lib/log"
//
//	var logger = log.Logger("socketsys/mycomponent")
package lib
