package logger

import (
	"io"
	"os"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

// Logger 对zap.SugaredLogger的简单包装，持有可动态调整的日志级别
type Logger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

var (
	std   = New(os.Stderr, InfoLevel)
	stdMu sync.RWMutex
)

// New 创建写入out的日志器
// 参数：
//   - out：日志输出目标
//   - level：初始日志级别
func New(out io.Writer, level Level) *Logger {
	atom := zap.NewAtomicLevelAt(level)
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(out), atom)
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
	return &Logger{sugar: z.Sugar(), level: atom}
}

// NewProductionRotateByTime 按天切割的日志文件，保留7天
func NewProductionRotateByTime(path string) io.Writer {
	w, err := rotatelogs.New(
		path+".%Y%m%d",
		rotatelogs.WithLinkName(path),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		panic(err)
	}
	return w
}

// NewProductionRotateBySize 按大小切割的日志文件（100MB，最多保留10个）
func NewProductionRotateBySize(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     7,
		Compress:   true,
	}
}

// ReplaceDefault 替换包级默认日志器
func ReplaceDefault(l *Logger) {
	if l == nil {
		return
	}
	stdMu.Lock()
	std = l
	stdMu.Unlock()
}

// Default 返回当前默认日志器
func Default() *Logger {
	stdMu.RLock()
	defer stdMu.RUnlock()
	return std
}

// SetLevel 调整默认日志器级别
func SetLevel(level Level) { Default().level.SetLevel(level) }

// ParseLevel 将配置中的级别字符串转换为Level，无法识别时返回InfoLevel
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// With 返回附带结构化字段的子日志器
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(args...), level: l.level}
}

func (l *Logger) Debug(args ...interface{})                 { l.sugar.Debug(args...) }
func (l *Logger) Info(args ...interface{})                  { l.sugar.Info(args...) }
func (l *Logger) Warn(args ...interface{})                  { l.sugar.Warn(args...) }
func (l *Logger) Error(args ...interface{})                 { l.sugar.Error(args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }
func (l *Logger) Sync() error                               { return l.sugar.Sync() }

func With(args ...interface{}) *Logger { return Default().With(args...) }

func Debug(args ...interface{})                 { Default().Debug(args...) }
func Info(args ...interface{})                  { Default().Info(args...) }
func Warn(args ...interface{})                  { Default().Warn(args...) }
func Error(args ...interface{})                 { Default().Error(args...) }
func Debugf(format string, args ...interface{}) { Default().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { Default().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { Default().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { Default().Errorf(format, args...) }
func Sync() error                               { return Default().Sync() }
