package gorm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestLoggerTrace(t *testing.T) {
	tests := map[string]struct {
		elapsed time.Duration
		err     error
		level   logger.LogLevel
		logged  int
		msg     string
	}{
		"error":            {err: errors.New("boom"), level: logger.Warn, logged: 1, msg: "[SQL]"},
		"record not found": {err: gorm.ErrRecordNotFound, level: logger.Warn, logged: 0},
		"slow":             {elapsed: time.Second, level: logger.Warn, logged: 1, msg: "[SQL] slow statement"},
		"fast at warn":     {level: logger.Warn, logged: 0},
		"fast at info":     {level: logger.Info, logged: 1, msg: "[SQL]"},
		"silent":           {err: errors.New("boom"), level: logger.Silent, logged: 0},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			l := NewLogger(zap.New(core), 200*time.Millisecond).LogMode(test.level)

			l.Trace(
				context.Background(),
				time.Now().Add(-test.elapsed),
				func() (string, int64) { return "SELECT 1", 1 },
				test.err,
			)

			require.Equal(t, test.logged, logs.Len())
			if test.logged > 0 {
				require.Equal(t, test.msg, logs.All()[0].Message)
			}
		})
	}
}
