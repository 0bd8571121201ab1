package lib

import (
	"os"
	"path"

	"github.com/covalenthq/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger builds the global logger. Output goes to stdout and to a
// rotating file under dir; an empty dir logs to stdout only.
func InitLogger(dir string, level string, production bool) *zap.Logger {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.SetLevel(zap.InfoLevel)
	}

	var encCfg zapcore.EncoderConfig
	if production {
		encCfg = zap.NewProductionEncoderConfig()
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), lvl),
	}
	if dir != "" {
		_ = os.MkdirAll(dir, 0o755)
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   path.Join(dir, "server.log"),
			MaxSize:    500,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), w, lvl))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	zap.ReplaceGlobals(l)
	zap.RedirectStdLog(l)
	return l
}
