// Package socket 定义 socket 系统的公共接口
//
// 本包只包含类型与接口，不包含实现：
//   - Backend: 后端（standard / native / test）必须实现的规范操作
//   - UnixBackend / BuilderBackend / SubSystemBackend / NativeProber: 可选能力
//   - Socket / ServerSocket: 由工厂层产出的句柄
//   - ConnectRequest: 所有 connect 便捷方法归一化后的规范参数
//
// 实现位于 internal/core/socketsys 及其子包。
package socket
