package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type FileRotate struct {
	Enable     bool   // 是否同时写入切割文件
	Filename   string // 如 logs/app.log
	MaxSizeMB  int    // 单个文件最大 MB
	MaxBackups int    // 保留旧文件个数
	MaxAgeDays int    // 保留天数
	Compress   bool   // 是否压缩旧日志
}

// Sampling 每秒同一条消息先全量记录 Initial 条，之后每 Thereafter 条记 1 条；Initial 为 0 关闭采样
type Sampling struct {
	Initial    int
	Thereafter int
}

type Options struct {
	Level    string     // debug / info / warn / error
	JSON     bool       // JSON 输出；否则为带颜色的控制台格式
	Service  string     // 写入每条日志的 service 字段
	Env      string     // 写入每条日志的 env 字段
	Sampling Sampling   // 重试风暴时防止日志刷屏
	File     FileRotate // 可选
	Output   io.Writer  // 默认 os.Stdout
}

// New 组装 logger；返回的 cleanup 负责 Sync 并关闭切割文件
func New(opt Options) (*zap.Logger, func(), error) {
	lvl, err := zapcore.ParseLevel(opt.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", opt.Level, err)
	}
	if opt.File.Enable && opt.File.Filename == "" {
		return nil, nil, fmt.Errorf("log file enabled without filename")
	}

	enc := encoder(opt.JSON)
	out := opt.Output
	if out == nil {
		out = os.Stdout
	}
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(out), lvl)}

	var rotator *lumberjack.Logger
	if opt.File.Enable {
		rotator = newRotator(opt.File)
		// 文件里始终用 JSON，便于采集
		cores = append(cores, zapcore.NewCore(encoder(true), zapcore.AddSync(rotator), lvl))
	}

	core := zapcore.NewTee(cores...)
	if opt.Sampling.Initial > 0 {
		core = zapcore.NewSamplerWithOptions(core, time.Second, opt.Sampling.Initial, max(1, opt.Sampling.Thereafter))
	}

	zopts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if !opt.JSON {
		zopts = append(zopts, zap.Development())
	}
	var fields []zap.Field
	if opt.Service != "" {
		fields = append(fields, zap.String("service", opt.Service))
	}
	if opt.Env != "" {
		fields = append(fields, zap.String("env", opt.Env))
	}
	if len(fields) > 0 {
		zopts = append(zopts, zap.Fields(fields...))
	}

	l := zap.New(core, zopts...)
	cleanup := func() {
		_ = l.Sync()
		if rotator != nil {
			_ = rotator.Close()
		}
	}
	return l, cleanup, nil
}

func encoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeDuration = zapcore.MillisDurationEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func newRotator(f FileRotate) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   f.Filename,
		MaxSize:    max(1, f.MaxSizeMB),
		MaxBackups: max(0, f.MaxBackups),
		MaxAge:     max(0, f.MaxAgeDays),
		Compress:   f.Compress,
	}
}

// zapIOWriter 把 gin 等写 io.Writer 的库接到 zap 上，每次 Write 记一条
type zapIOWriter struct {
	l     *zap.Logger
	level zapcore.Level
}

func (w *zapIOWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\r\n")
	if msg == "" {
		return len(p), nil
	}
	if ce := w.l.Check(w.level, msg); ce != nil {
		ce.Write()
	}
	return len(p), nil
}

func ToWriter(l *zap.Logger, level zapcore.Level) io.Writer {
	return &zapIOWriter{l: l, level: level}
}

func ToStdLogger(l *zap.Logger, level zapcore.Level) (*log.Logger, error) {
	return zap.NewStdLogAt(l, level)
}

func RedirectStdLog(l *zap.Logger, level zapcore.Level) func() {
	undo, err := zap.RedirectStdLogAt(l, level)
	if err != nil {
		return func() {}
	}
	return undo
}
