package analytics

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogFileDataCollector struct {
	fileName string
	file     *os.File
	logger   *zap.Logger
}

func NewLogFileDataCollector(fileName string) (*LogFileDataCollector, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.StacktraceKey = ""
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	logFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(fileEncoder, zapcore.AddSync(logFile), zapcore.InfoLevel)
	return &LogFileDataCollector{
		fileName: fileName,
		file:     logFile,
		logger:   zap.New(core),
	}, nil
}

func (lc *LogFileDataCollector) RecordActionSuccess(wfName string, flowId string, actionName string, attempts int, data map[string]any) {
	lc.logger.Info("success", zap.String("name", wfName), zap.String("id", flowId), zap.String("action", actionName), zap.Int("attempts", attempts), zap.Any("data", data))
}

func (lc *LogFileDataCollector) RecordActionFailure(wfName string, flowId string, actionName string, kind string, reason string) {
	lc.logger.Info("failure", zap.String("name", wfName), zap.String("id", flowId), zap.String("action", actionName), zap.String("kind", kind), zap.String("reason", reason))
}

func (lc *LogFileDataCollector) Close() error {
	_ = lc.logger.Sync()
	return lc.file.Close()
}
