// Package main 提供 canary 命令行入口
//
//	canary serve -listen tcp@127.0.0.1:7000
//	canary call  -addr tcp@127.0.0.1:7000://echo -format json -msg hello
//	canary call  -addr tcp@127.0.0.1:7000://Math/Add -ints 2,3
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/znx3p0/canary"
	"github.com/znx3p0/canary/config"
	"github.com/znx3p0/canary/pkg/lib/log"
)

var logger = log.Logger("canary/cmd")

// 环境变量覆盖，优先级低于命令行参数
const (
	envConfig   = "CANARY_CONFIG"
	envLogLevel = "CANARY_LOG_LEVEL"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		printHelp(out)
		return errors.New("missing command")
	}

	switch args[0] {
	case "serve":
		return serve(args[1:], out)
	case "call":
		return call(args[1:], out)
	case "help", "-h", "--help":
		printHelp(out)
		return nil
	default:
		printHelp(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `用法: canary <command> [flags]

命令:
  serve   绑定地址并提供 echo 与 Math/Add 服务
  call    连接服务地址并发送一条消息

使用 canary <command> -h 查看参数`)
}

// ═══════════════════════════════════════════════════════════════════════════
// 公共参数
// ═══════════════════════════════════════════════════════════════════════════

type commonFlags struct {
	configFile   string
	identityFile string
	logLevel     string
	format       string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configFile, "config", "", "配置文件路径（JSON）")
	fs.StringVar(&c.identityFile, "identity", "", "身份密钥文件路径")
	fs.StringVar(&c.logLevel, "log-level", "", "日志级别 (debug/info/warn/error)")
	fs.StringVar(&c.format, "format", "", "编码格式 (bincode/json/bson/postcard/msgpack)")
}

// options 按 命令行 > 环境变量 > 配置文件 的优先级构建节点选项
func (c *commonFlags) options() ([]canary.Option, error) {
	path := c.configFile
	if path == "" {
		path = os.Getenv(envConfig)
	}

	cfg := config.NewConfig()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = loaded
	}

	level := c.logLevel
	if level == "" {
		level = os.Getenv(envLogLevel)
	}
	if level == "" {
		level = cfg.Log.Level
	}
	lv, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log.SetLevel(lv)

	opts := []canary.Option{canary.WithConfig(cfg)}
	if c.identityFile != "" {
		opts = append(opts, canary.WithIdentityKeyFile(c.identityFile))
	}
	if c.format != "" {
		f, err := canary.ParseFormat(c.format)
		if err != nil {
			return nil, err
		}
		opts = append(opts, canary.WithFormat(f))
	}
	return opts, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// serve
// ═══════════════════════════════════════════════════════════════════════════

func serve(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	listen := fs.String("listen", "tcp@127.0.0.1:7000", "监听地址，多个用逗号分隔")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts, err := common.options()
	if err != nil {
		return err
	}

	r := canary.NewRoute("root")
	if err := registerDemo(r); err != nil {
		return err
	}
	opts = append(opts, canary.WithRoute(r))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	node, err := canary.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = node.Close() }()

	for _, s := range strings.Split(*listen, ",") {
		addr, err := canary.ParseAddress(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		bound, err := node.Bind(ctx, addr)
		if err != nil {
			return fmt.Errorf("绑定 %s 失败: %w", addr, err)
		}
		fmt.Fprintf(out, "listening %s\n", bound)
	}
	fmt.Fprintf(out, "id %s\n", node.ID())
	logger.Info("服务已启动，按 Ctrl+C 退出", "services", r.Names())

	<-ctx.Done()
	fmt.Fprintln(out, "正在关闭节点...")
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// call
// ═══════════════════════════════════════════════════════════════════════════

func call(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("call", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	addr := fs.String("addr", "", "服务地址，例如 tcp@127.0.0.1:7000://echo")
	msg := fs.String("msg", "hello", "发送给 echo 的字符串")
	ints := fs.String("ints", "", "发送给 Math/Add 的整数，逗号分隔")
	peer := fs.String("peer", "", "要求的对端身份")
	timeout := fs.Duration("timeout", 30*time.Second, "总超时")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *addr == "" {
		return errors.New("-addr is required")
	}

	opts, err := common.options()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	node, err := canary.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = node.Close() }()

	var copts []canary.ConnectOption
	if *peer != "" {
		copts = append(copts, canary.WithPeer(*peer))
	}
	ch, err := node.ConnectString(ctx, *addr, copts...)
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if *ints != "" {
		nums, err := parseInts(*ints)
		if err != nil {
			return err
		}
		if err := ch.Send(nums); err != nil {
			return err
		}
		sum, err := canary.Receive[int](ch)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, sum)
		return nil
	}

	if err := ch.Send(*msg); err != nil {
		return err
	}
	reply, err := canary.Receive[string](ch)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, reply)
	return nil
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
