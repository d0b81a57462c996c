package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/logging"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(slow time.Duration) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), slow), logs
}

func sqlFunc() (string, int64) { return "SELECT 1", 1 }

func TestGormLoggerTraceError(t *testing.T) {
	l, logs := newObservedGormLogger(time.Second)
	ctx := logging.WithRequestID(context.Background(), "req-9")

	l.Trace(ctx, time.Now(), sqlFunc, errors.New("boom"))

	entries := logs.FilterMessage("query failed").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
		assert.Equal(t, "SELECT 1", entries[0].ContextMap()["sql"])
	}
}

func TestGormLoggerIgnoresRecordNotFound(t *testing.T) {
	l, logs := newObservedGormLogger(time.Second)

	l.Trace(context.Background(), time.Now(), sqlFunc, gorm.ErrRecordNotFound)

	assert.Equal(t, 0, logs.FilterMessage("query failed").Len())
}

func TestGormLoggerSlowQuery(t *testing.T) {
	l, logs := newObservedGormLogger(time.Millisecond)

	l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFunc, nil)

	assert.Equal(t, 1, logs.FilterMessage("slow query").Len())
}

func TestGormLoggerSilent(t *testing.T) {
	l, logs := newObservedGormLogger(time.Millisecond)
	silent := l.LogMode(gormlogger.Silent)

	silent.Trace(context.Background(), time.Now().Add(-time.Second), sqlFunc, errors.New("boom"))
	silent.Error(context.Background(), "failed %d", 1)

	assert.Equal(t, 0, logs.Len())
}
