package util_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pastoreohq/go-pastoreo/pkg/util"
)

func TestNewLogger(t *testing.T) {
	dev := util.NewLogger("development")
	assert.True(t, dev.Enabled(context.Background(), slog.LevelDebug))

	prod := util.NewLogger("production")
	assert.False(t, prod.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, prod.Enabled(context.Background(), slog.LevelInfo))
}
