package logging

import (
	"io"
	"os"
	"strings"

	"github.com/2beens/lumberjacked/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// maxLogFileSizeMB is the size at which the log file gets rotated.
const maxLogFileSizeMB = 50

type LoggerSetupParams struct {
	LogFileName      string
	LogToStdout      bool
	LogLevel         string
	LogFormatJSON    bool
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
	// zero keeps rotated files forever
	MaxBackups int
	MaxAgeDays int
}

// Setup configures the standard logrus logger: level, format, output and the sentry hook.
func Setup(params LoggerSetupParams) {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.SentryEnabled {
		setupSentry(params)
	}

	logrus.SetOutput(newOutput(params))
	switch {
	case params.LogFileName == "":
		logrus.Println("writing logs only to STDOUT")
	case params.LogToStdout:
		logrus.Printf("writing logs to [%s] and STDOUT", params.LogFileName)
	default:
		logrus.Printf("writing logs to [%s]", params.LogFileName)
	}
}

func setupSentry(params LoggerSetupParams) {
	err := sentry.Init(sentry.ClientOptions{
		Environment:      params.Environment,
		Dsn:              params.SentryDSN,
		TracesSampleRate: 1.0,
		ServerName:       params.SentryServerName,
	})
	if err != nil {
		logrus.Errorf("sentry.Init: %s", err)
		return
	}

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Infoln("sentry set up successfully")
}

// newOutput returns stdout when there is no log file, otherwise the rotated file,
// optionally teed to stdout.
func newOutput(params LoggerSetupParams) io.Writer {
	if params.LogFileName == "" {
		return os.Stdout
	}

	fileName := params.LogFileName
	if !strings.HasSuffix(fileName, ".log") {
		fileName += ".log"
	}
	rotated := &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    maxLogFileSizeMB,
		LocalTime:  false, // rotated file names use UTC
		Compress:   true,
		MaxBackups: params.MaxBackups,
		MaxAge:     params.MaxAgeDays,
	}

	if params.LogToStdout {
		return pkg.NewCombinedWriter(os.Stdout, rotated)
	}
	return rotated
}

// GetLevel maps a config level name to its logrus level. Unknown names mean trace.
func GetLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.TraceLevel
	}
	return parsed
}
