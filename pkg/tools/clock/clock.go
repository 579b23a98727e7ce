// Package clock implements time_tool, which reports the current time in a
// requested timezone.
package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-time-weather/pkg/tools"
	"github.com/theapemachine/mcp-server-time-weather/pkg/tools/utils"
)

const (
	Name        = "time_tool"
	Description = "Get current time for a timezone (e.g. Asia/Kolkata)"

	// Layout renders as "2006-01-02 15:04:05 IST+0530".
	Layout = "2006-01-02 15:04:05 MST-0700"
)

// Args is the argument shape of time_tool.
type Args struct {
	InputTimezone string `json:"input_timezone,omitempty" jsonschema_description:"Timezone identifier (e.g., 'Asia/Kolkata', 'America/New_York'). Optional, defaults to system timezone."`
}

// Tool answers time_tool calls. It performs no I/O beyond reading the
// embedded timezone database.
type Tool struct {
	*tools.BaseTool
	now      func() time.Time
	location *time.Location
}

// Option configures a Tool.
type Option func(*Tool)

// WithNow replaces the wall clock.
func WithNow(now func() time.Time) Option {
	return func(tool *Tool) {
		tool.now = now
	}
}

// WithLocation sets the zone used when no timezone is requested.
func WithLocation(location *time.Location) Option {
	return func(tool *Tool) {
		if location != nil {
			tool.location = location
		}
	}
}

// New creates the tool reading the wall clock in the process local zone.
func New(opts ...Option) *Tool {
	tool := &Tool{
		BaseTool: tools.NewBaseTool[Args](Name, Description),
		now:      time.Now,
		location: time.Local,
	}

	for _, opt := range opts {
		opt(tool)
	}

	return tool
}

/*
Handler answers with the current time in input_timezone, or in the default
zone when none is given. "Local" is not an IANA zone and is rejected like any
other unknown name.
*/
func (tool *Tool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	timezone, err := utils.GetOptionalStringParam(request, "input_timezone")
	if err != nil {
		return tools.NewTextResultf("Error getting time: %v", err), nil
	}

	now := tool.now().In(tool.location)

	if timezone != "" {
		location, err := loadLocation(timezone)
		if err != nil {
			return tools.NewTextResultf("Invalid timezone '%s'. Error: %v", timezone, err), nil
		}
		now = now.In(location)
	}

	return tools.NewTextResultf("The current time is %s.", now.Format(Layout)), nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "Local" {
		return nil, fmt.Errorf("unknown time zone %s", name)
	}
	return time.LoadLocation(name)
}
