package server

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"
)

// ConsoleLevel classifies a console message for the web client
type ConsoleLevel string

const (
	LevelInfo    ConsoleLevel = "info"
	LevelWarning ConsoleLevel = "warning"
	LevelError   ConsoleLevel = "error"
)

// ConsoleMessage is one line of render output forwarded to the browser
type ConsoleMessage struct {
	RenderID  string       `json:"renderId"`
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
	Level     ConsoleLevel `json:"level"`
}

// WebLogger implements core.Logger for a single streamed render. Messages go
// to the server log tagged with the render ID and, without blocking, to the
// render's console channel.
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	dropped     atomic.Int64
}

// NewWebLogger creates a logger for the render identified by renderID.
// A nil channel logs to the server log only.
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) *WebLogger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
	}
}

// RenderID returns the ID this logger tags its messages with
func (wl *WebLogger) RenderID() string {
	return wl.renderID
}

// Printf logs an info message. It implements core.Logger.
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	wl.emit(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf logs a warning message
func (wl *WebLogger) Warnf(format string, args ...interface{}) {
	wl.emit(LevelWarning, fmt.Sprintf(format, args...))
}

// Errorf logs an error message
func (wl *WebLogger) Errorf(format string, args ...interface{}) {
	wl.emit(LevelError, fmt.Sprintf(format, args...))
}

// Dropped returns how many messages were discarded because the console
// channel was full
func (wl *WebLogger) Dropped() int64 {
	return wl.dropped.Load()
}

func (wl *WebLogger) emit(level ConsoleLevel, message string) {
	trimmed := strings.TrimSuffix(message, "\n")
	if level == LevelInfo {
		log.Printf("[%s] %s", wl.renderID, trimmed)
	} else {
		log.Printf("[%s] %s: %s", wl.renderID, level, trimmed)
	}

	if wl.consoleChan == nil {
		return
	}
	select {
	case wl.consoleChan <- ConsoleMessage{
		RenderID:  wl.renderID,
		Message:   message,
		Timestamp: time.Now(),
		Level:     level,
	}:
	default:
		wl.dropped.Add(1)
	}
}
