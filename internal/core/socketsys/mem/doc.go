// Package mem 实现进程内测试 socket 后端
//
// 连接通过 net.Pipe 建立，监听者按端口登记在内存中，不触及真实网络。
// 后端记录每一次规范调用（Call），测试据此断言便捷方法的归一化结果。
//
// 该后端不支持 Unix 域 socket；NewWithBuilder 返回支持连接构建器的变体。
package mem
