package buildinfo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContextDefaults(t *testing.T) {
	var nilCtx *Context
	assert.Equal(t, UnknownValue, nilCtx.GetVersion())
	assert.Equal(t, UnknownValue, nilCtx.GetBuildDate())
	assert.Zero(t, nilCtx.Uptime())

	empty := &Context{}
	assert.Equal(t, UnknownValue, empty.GetVersion())
	assert.Zero(t, empty.Uptime())
}

func TestNewContext(t *testing.T) {
	ctx := NewContext("v1.2.3", "2026-01-01")
	ctx.StartTime = time.Now().Add(-90 * time.Second)

	assert.Equal(t, "v1.2.3", ctx.GetVersion())
	assert.Equal(t, "2026-01-01", ctx.GetBuildDate())
	assert.GreaterOrEqual(t, ctx.Uptime(), 90*time.Second)

	var _ BuildInfo = ctx
}
