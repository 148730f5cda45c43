package database

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func traceSQL() (string, int64) {
	return `SELECT * FROM "creators" WHERE id = 'x'`, 0
}

func TestGormLoggerReportsFailures(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(zerolog.New(&buf), logger.Warn)

	l.Trace(context.Background(), time.Now(), traceSQL, errors.New("relation does not exist"))
	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, "relation does not exist")
	assert.Contains(t, out, `"component":"gorm"`)
}

func TestGormLoggerSkipsMissingRows(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(zerolog.New(&buf), logger.Warn)

	l.Trace(context.Background(), time.Now(), traceSQL, gorm.ErrRecordNotFound)
	l.Trace(context.Background(), time.Now(), traceSQL, nil)
	assert.Empty(t, buf.String())
}

func TestGormLoggerWarnsOnSlowQueries(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(zerolog.New(&buf), logger.Warn)

	l.Trace(context.Background(), time.Now().Add(-time.Second), traceSQL, nil)
	assert.Contains(t, buf.String(), "slow query")
}

func TestGormLoggerSilentMode(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(zerolog.New(&buf), logger.Warn).LogMode(logger.Silent)

	l.Trace(context.Background(), time.Now(), traceSQL, errors.New("boom"))
	l.Error(context.Background(), "boom %d", 1)
	assert.Empty(t, buf.String())
}
