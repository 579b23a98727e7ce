// Package weather implements weather_tool, a single lookup against the
// weatherapi.com current conditions endpoint.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-time-weather/pkg/tools"
	"github.com/theapemachine/mcp-server-time-weather/pkg/tools/utils"
	"github.com/tidwall/gjson"
)

const (
	Name        = "weather_tool"
	Description = "Provides weather info for a given location"

	DefaultBaseURL = "http://api.weatherapi.com"
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 1 << 20
)

var ErrLocationNotFound = errors.New("no current weather for location")

// Args is the argument shape of weather_tool.
type Args struct {
	Location string `json:"location" jsonschema_description:"Location to get weather for (city name, coordinates, etc.)"`
}

// Report is the part of the provider response the tool cares about.
type Report struct {
	Condition string
	// TempC is the temperature exactly as the provider wrote it.
	TempC string
}

// Tool answers weather_tool calls against one provider.
type Tool struct {
	*tools.BaseTool
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

// Option configures a Tool.
type Option func(*Tool)

// WithAPIKey sets the provider key. Without one the tool answers with a
// configuration hint instead of calling out.
func WithAPIKey(key string) Option {
	return func(tool *Tool) {
		tool.apiKey = key
	}
}

// WithBaseURL points the tool at another provider host, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(tool *Tool) {
		if baseURL != "" {
			tool.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout bounds the whole outbound call.
func WithTimeout(timeout time.Duration) Option {
	return func(tool *Tool) {
		if timeout > 0 {
			tool.client.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the outbound client, timeout included.
func WithHTTPClient(client *http.Client) Option {
	return func(tool *Tool) {
		if client != nil {
			tool.client = client
		}
	}
}

// WithLogger sets where request diagnostics go. The API key is never logged.
func WithLogger(logger *log.Logger) Option {
	return func(tool *Tool) {
		tool.logger = logger
	}
}

// New creates the tool against DefaultBaseURL with DefaultTimeout.
func New(opts ...Option) *Tool {
	tool := &Tool{
		BaseTool: tools.NewBaseTool[Args](Name, Description),
		baseURL:  DefaultBaseURL,
		client:   &http.Client{Timeout: DefaultTimeout},
		logger:   log.Default(),
	}

	for _, opt := range opts {
		opt(tool)
	}

	return tool
}

/*
Handler looks up the current weather for location. Every failure, from a
missing argument to a provider outage, is answered as text.
*/
func (tool *Tool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location, err := utils.GetOptionalStringParam(request, "location")
	if err != nil {
		return tools.NewTextResultf("Error getting weather: %v", err), nil
	}

	location = strings.TrimSpace(location)
	if location == "" {
		return tools.NewTextResult("Location parameter is required."), nil
	}

	if tool.apiKey == "" {
		return tools.NewTextResult("Weather API key not found. Please set WEATHER_API_KEY environment variable."), nil
	}

	report, err := tool.Fetch(ctx, location)

	switch {
	case errors.Is(err, ErrLocationNotFound):
		return tools.NewTextResultf("Sorry, couldn't find weather for %s.", location), nil
	case errors.Is(err, tools.ErrExternalAPIError):
		tool.logger.Warn("weather request failed", "location", location, "err", err)
		return tools.NewTextResultf("Error fetching weather data: %v", err), nil
	case err != nil:
		tool.logger.Warn("weather response unusable", "location", location, "err", err)
		return tools.NewTextResultf("Error getting weather: %v", err), nil
	}

	return tools.NewTextResultf("The weather in %s is %s at %s°C.", location, report.Condition, report.TempC), nil
}

// Fetch performs the single GET against the provider.
func (tool *Tool) Fetch(ctx context.Context, location string) (Report, error) {
	endpoint, err := url.Parse(tool.baseURL)
	if err != nil {
		return Report{}, tools.WrapError(err, "invalid weather API URL")
	}

	endpoint = endpoint.JoinPath("v1", "current.json")
	query := url.Values{}
	query.Set("q", location)
	query.Set("aqi", "no")

	tool.logger.Debug("fetching weather", "endpoint", endpoint.String(), "query", query.Encode())

	query.Set("key", tool.apiKey)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Report{}, tools.WrapError(err, "cannot build weather request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := tool.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			// url.Error embeds the full URL, API key included.
			err = urlErr.Err
		}
		return Report{}, fmt.Errorf("%w: %v", tools.ErrExternalAPIError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Report{}, fmt.Errorf("%w: %s", tools.ErrExternalAPIError, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", tools.ErrExternalAPIError, err)
	}

	return parseReport(body)
}

func parseReport(body []byte) (Report, error) {
	if !gjson.ValidBytes(body) {
		return Report{}, errors.New("weather response is not valid JSON")
	}

	current := gjson.GetBytes(body, "current")
	if !current.Exists() || current.Type == gjson.Null || (current.IsObject() && len(current.Map()) == 0) {
		return Report{}, ErrLocationNotFound
	}

	condition := current.Get("condition.text")
	if !condition.Exists() {
		return Report{}, errors.New("weather response missing current.condition.text")
	}

	temp := current.Get("temp_c")
	if !temp.Exists() {
		return Report{}, errors.New("weather response missing current.temp_c")
	}

	report := Report{Condition: condition.String(), TempC: temp.Raw}
	if temp.Type == gjson.String {
		report.TempC = temp.String()
	}

	return report, nil
}
