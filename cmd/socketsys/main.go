// Package main 提供 socketsys 命令行入口
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dep2p/go-socketsys"
	"github.com/dep2p/go-socketsys/config"
	"github.com/dep2p/go-socketsys/pkg/lib/log"
)

var logger = log.Logger("socketsys/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════

// cliFlags 命令行参数
type cliFlags struct {
	configFile string
	preset     string
	backend    string
	timeout    time.Duration
	tls        bool
	testMode   bool
	refresh    bool
	watch      time.Duration
	send       string
	verbose    bool
	version    bool
}

func newFlagSet(out io.Writer) (*flag.FlagSet, *cliFlags) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("socketsys", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&f.configFile, "config", "", "配置文件路径")
	fs.StringVar(&f.preset, "preset", "", "预设配置 (standard/server/test)")
	fs.StringVar(&f.backend, "backend", "", "socket 后端 (standard/native/test)")
	fs.DurationVar(&f.timeout, "timeout", 5*time.Second, "连接超时（0 = 不限制）")
	fs.BoolVar(&f.tls, "tls", false, "connect 使用 TLS")
	fs.BoolVar(&f.testMode, "test-mode", false, "测试模式：地址缓存永不过期，固定硬件标识")
	fs.BoolVar(&f.refresh, "refresh", false, "addresses 命令先清空地址缓存")
	fs.DurationVar(&f.watch, "watch", 0, "轮询网络变化的间隔（0 = 关闭）")
	fs.StringVar(&f.send, "send", "", "connect 成功后发送的内容，并打印一次响应")
	fs.BoolVar(&f.verbose, "verbose", false, "输出 Fx 事件日志")
	fs.BoolVar(&f.version, "version", false, "显示版本信息")

	fs.Usage = func() {
		fmt.Fprintf(out, `用法: socketsys [参数] <命令> [命令参数]

命令:
  info                    显示后端与能力
  addresses               列出排序后的本地地址
  host                    显示首选主机地址
  hwaddr                  显示硬件标识
  listen <port> [host]    打开监听 socket 并回显收到的数据
  connect <host> <port>   建立出站连接

参数:
`)
		fs.PrintDefaults()
	}
	return fs, f
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs, f := newFlagSet(out)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if f.version {
		fmt.Fprintln(out, socketsys.VersionInfo())
		return nil
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("缺少命令")
	}

	opts, err := buildOptions(f)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}
	app, err := socketsys.New(opts...)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := app.Stop(context.Background()); err != nil {
			logger.Warn("停止失败", "error", err)
		}
	}()

	sys := socketsys.Current(ctx)
	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case "info":
		return cmdInfo(out, sys)
	case "addresses":
		return cmdAddresses(out, sys, f.refresh)
	case "host":
		fmt.Fprintln(out, sys.HostAddress())
		return nil
	case "hwaddr":
		fmt.Fprintln(out, net.HardwareAddr(sys.HardwareAddress()).String())
		return nil
	case "listen":
		return cmdListen(ctx, out, sys, cmdArgs)
	case "connect":
		return cmdConnect(out, sys, cmdArgs, f)
	default:
		fs.Usage()
		return fmt.Errorf("未知命令: %s", cmd)
	}
}

// buildOptions 构建选项
//
// 配置优先级（从高到低）：
//  1. 命令行参数
//  2. 环境变量（SOCKETSYS_* 前缀）
//  3. 配置文件
//  4. 预设默认值
func buildOptions(f *cliFlags) ([]socketsys.Option, error) {
	cfg := config.NewConfig()
	if f.configFile != "" {
		loaded, err := config.LoadFile(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = loaded
	}
	if f.preset != "" {
		if err := config.ApplyPreset(cfg, f.preset); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if f.backend != "" {
		cfg.Socket = cfg.Socket.WithBackend(f.backend)
	}
	if f.testMode {
		cfg.Socket = cfg.Socket.WithTestMode(true)
	}
	if f.timeout > 0 {
		cfg.Socket.DialTimeout = config.Duration(f.timeout)
	}
	if f.watch > 0 {
		cfg.Socket.WatchInterval = config.Duration(f.watch)
	}

	opts := []socketsys.Option{
		socketsys.WithConfig(cfg),
		socketsys.WithEnv(false),
	}
	if f.verbose {
		zl, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		opts = append(opts, socketsys.WithFxLogger(zl))
	}
	return opts, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 命令实现
// ═══════════════════════════════════════════════════════════════════════════

func cmdInfo(out io.Writer, sys *socketsys.System) error {
	caps := sys.Capabilities()
	fmt.Fprintf(out, "系统:     %s\n", sys)
	fmt.Fprintf(out, "原生:     %v\n", caps.Native)
	fmt.Fprintf(out, "Unix:     %v\n", caps.Unix)
	fmt.Fprintf(out, "构建器:   %v\n", caps.Builder)
	fmt.Fprintf(out, "子系统:   %v\n", caps.SubSystems)
	fmt.Fprintf(out, "缓存 TTL: %v\n", sys.AddressCache().TTL())
	return nil
}

func cmdAddresses(out io.Writer, sys *socketsys.System, refresh bool) error {
	if refresh {
		sys.InvalidateAddresses()
	}
	for _, ip := range sys.LocalAddresses() {
		fmt.Fprintln(out, ip.String())
	}
	return nil
}

func cmdListen(ctx context.Context, out io.Writer, sys *socketsys.System, args []string) error {
	if len(args) < 1 {
		return errors.New("用法: listen <port> [host]")
	}
	port, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("无效端口 %q: %w", args[0], err)
	}
	host := ""
	if len(args) > 1 {
		host = args[1]
	}

	srv, err := sys.OpenServerSocketAddr(host, port)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "正在监听 %s（native=%v），按 Ctrl+C 退出\n", srv.Addr(), srv.IsNative())

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		_ = srv.Close()
	}()

	for {
		s, err := srv.Accept()
		if err != nil {
			if sigCtx.Err() != nil {
				return nil
			}
			return err
		}
		logger.Info("接受连接", "remote", s.RemoteAddr(), "id", s.ID())
		go echo(s)
	}
}

// echo 把收到的数据原样写回，直到对端关闭
func echo(s socketsys.Socket) {
	defer s.Close()
	if _, err := io.Copy(s.Conn(), s.Conn()); err != nil {
		logger.Debug("回显结束", "id", s.ID(), "error", err)
	}
}

func cmdConnect(out io.Writer, sys *socketsys.System, args []string, f *cliFlags) error {
	if len(args) < 2 {
		return errors.New("用法: connect <host> <port>")
	}
	port, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("无效端口 %q: %w", args[1], err)
	}

	b, err := sys.NewConnectBuilder()
	if err != nil {
		return err
	}
	ips, err := net.LookupIP(args[0])
	if err != nil || len(ips) == 0 {
		return fmt.Errorf("%w: %s", socketsys.ErrUnknownHost, args[0])
	}
	s, err := b.Address(&net.TCPAddr{IP: ips[0], Port: port}).Timeout(f.timeout).TLS(f.tls).Get()
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Fprintf(out, "已连接 %s -> %s（tls=%v）\n", s.LocalAddr(), s.RemoteAddr(), s.IsTLS())
	if f.send == "" {
		return nil
	}

	conn := s.Conn()
	if f.timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(f.timeout))
	}
	if _, err := io.WriteString(conn, f.send); err != nil {
		return err
	}
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	fmt.Fprintf(out, "%s\n", buf[:n])
	return nil
}
