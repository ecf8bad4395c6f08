package service

import "ai-mailroom-be/internal/pkg/logger"

// noopLogger keeps test output clean; nothing we assert on is logged.
type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error { return nil }

func newTestLogger() logger.ILogger {
	return noopLogger{}
}
