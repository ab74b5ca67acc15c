package logger

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (suite *LoggerTestSuite) TestNewLogger() {
	logger, err := NewLogger(false)
	suite.NoError(err)
	suite.NotNil(logger)
	suite.NotNil(logger.Logger)
	suite.False(logger.Core().Enabled(zap.DebugLevel))
}

func (suite *LoggerTestSuite) TestDebugLevel() {
	logger, err := NewLogger(true)
	suite.NoError(err)
	suite.True(logger.Core().Enabled(zap.DebugLevel))
}

func (suite *LoggerTestSuite) TestLoggerSyncNilLogger() {
	logger := &Logger{Logger: nil}
	suite.NoError(logger.Sync())
}

func (suite *LoggerTestSuite) TestNamedOnNil() {
	var logger *Logger
	named := logger.Named("engine")
	suite.NotNil(named)
	named.Info("discarded")
}

func (suite *LoggerTestSuite) TestWithOnNil() {
	var logger *Logger
	child := logger.With(zap.String("symbol", "TEST"))
	suite.NotNil(child)
	child.Debug("discarded")

	child = NewNop().With(zap.String("symbol", "TEST"))
	suite.NotNil(child.Logger)
}
