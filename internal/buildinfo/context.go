// Package buildinfo contains build-time metadata kept apart from user configuration
package buildinfo

import "time"

// UnknownValue is reported for metadata that was not injected at build time
const UnknownValue = "unknown"

// BuildInfo provides access to build-time metadata.
type BuildInfo interface {
	GetVersion() string
	GetBuildDate() string
	Uptime() time.Duration
}

// Context contains build-time metadata injected at startup through ldflags.
type Context struct {
	// Version holds the Git version tag from build
	Version string

	// BuildDate is the time when the binary was built
	BuildDate string

	// StartTime is when the process started serving
	StartTime time.Time
}

// NewContext creates a Context stamped with the current time.
func NewContext(version, buildDate string) *Context {
	return &Context{
		Version:   version,
		BuildDate: buildDate,
		StartTime: time.Now(),
	}
}

// GetVersion implements BuildInfo.GetVersion
func (c *Context) GetVersion() string {
	if c == nil || c.Version == "" {
		return UnknownValue
	}
	return c.Version
}

// GetBuildDate implements BuildInfo.GetBuildDate
func (c *Context) GetBuildDate() string {
	if c == nil || c.BuildDate == "" {
		return UnknownValue
	}
	return c.BuildDate
}

// Uptime returns the time elapsed since StartTime, truncated to seconds.
func (c *Context) Uptime() time.Duration {
	if c == nil || c.StartTime.IsZero() {
		return 0
	}
	return time.Since(c.StartTime).Truncate(time.Second)
}
