package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/varad-more/Voyagent/internal/domain/itinerary"
	"github.com/varad-more/Voyagent/internal/domain/trip"
	apperrors "github.com/varad-more/Voyagent/pkg/errors"
)

// RankLabels name the criteria the planner ranks swap alternatives by.
// They are display labels only; ordering on the wire is authoritative.
var RankLabels = []string{"popularity", "novelty", "creativity"}

// EditBlockRequest asks for a single replacement block.
type EditBlockRequest struct {
	DayIndex     int                     `json:"day_index"`
	BlockIndex   int                     `json:"block_index"`
	Instruction  string                  `json:"instruction"`
	CurrentBlock itinerary.ScheduleBlock `json:"current_block"`
	Destination  string                  `json:"destination"`
}

// SwapRequest asks for ranked alternatives to one block.
type SwapRequest struct {
	CurrentBlock itinerary.ScheduleBlock `json:"current_block"`
	Destination  string                  `json:"destination"`
	BlockType    string                  `json:"block_type"`
	DayDate      string                  `json:"day_date"`
	Preferences  string                  `json:"preferences,omitempty"`
}

// Alternative is one swap candidate plus the planner's reasoning.
type Alternative struct {
	itinerary.ScheduleBlock
	Why string `json:"why,omitempty"`
}

// RegenerateDayRequest asks for a wholesale replacement day.
type RegenerateDayRequest struct {
	Day            RegenerateDayInput `json:"day"`
	Destination    string             `json:"destination"`
	WeatherSummary string             `json:"weather_summary,omitempty"`
	Preferences    string             `json:"preferences,omitempty"`
}

// RegenerateDayInput is the current day handed to the planner.
type RegenerateDayInput struct {
	Date      string                    `json:"date"`
	DayNumber int                       `json:"day_number"`
	Theme     string                    `json:"theme,omitempty"`
	Blocks    []itinerary.ScheduleBlock `json:"blocks"`
}

// RegeneratedDay is the replacement the planner returns.
type RegeneratedDay struct {
	Theme  string                    `json:"theme"`
	Blocks []itinerary.ScheduleBlock `json:"blocks"`
}

// Client performs HTTP requests against the remote planner service.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient constructs a planner client. The stream timeout bounds the
// whole SSE exchange and is typically much longer than the request one.
func NewClient(baseURL, apiKey string, requestTimeout, streamTimeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, apperrors.Wrap(apperrors.CodePlannerUnavailable, "planner base url cannot be empty", nil)
	}
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}
	if streamTimeout <= 0 {
		streamTimeout = 5 * time.Minute
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: requestTimeout},
		streamClient: &http.Client{Timeout: streamTimeout},
	}, nil
}

// Generate runs the synchronous generation endpoint.
func (c *Client) Generate(ctx context.Context, req trip.Request) (itinerary.Payload, error) {
	var out itinerary.Payload
	body, err := c.doJSON(ctx, http.MethodPost, "/api/itineraries/generate", req)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, apperrors.Wrap(apperrors.CodePlannerError, "decode generated itinerary", err)
	}
	return out, nil
}

// GenerateStream starts SSE generation and returns the event stream.
func (c *Client) GenerateStream(ctx context.Context, req trip.Request) (*EventStream, error) {
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/itineraries/stream", req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePlannerError, "request itinerary stream", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, c.statusError(resp.StatusCode, payload)
	}
	return newEventStream(resp.Body), nil
}

// EditBlock requests a single replacement block for review.
func (c *Client) EditBlock(ctx context.Context, req EditBlockRequest) (itinerary.ScheduleBlock, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/api/edit/block", req)
	if err != nil {
		return itinerary.ScheduleBlock{}, err
	}
	var out struct {
		Block itinerary.ScheduleBlock `json:"block"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return itinerary.ScheduleBlock{}, apperrors.Wrap(apperrors.CodePlannerError, "decode edited block", err)
	}
	if out.Block.Title == "" {
		return itinerary.ScheduleBlock{}, apperrors.Wrap(apperrors.CodePlannerError, "planner returned no block", nil)
	}
	return out.Block, nil
}

// SwapBlock requests ranked alternatives for one block.
func (c *Client) SwapBlock(ctx context.Context, req SwapRequest) ([]Alternative, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/api/edit/swap", req)
	if err != nil {
		return nil, err
	}
	var out struct {
		Alternatives []Alternative `json:"alternatives"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, apperrors.Wrap(apperrors.CodePlannerError, "decode swap alternatives", err)
	}
	if len(out.Alternatives) > len(RankLabels) {
		out.Alternatives = out.Alternatives[:len(RankLabels)]
	}
	return out.Alternatives, nil
}

// RegenerateDay requests a full replacement for one day.
func (c *Client) RegenerateDay(ctx context.Context, req RegenerateDayRequest) (RegeneratedDay, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/api/edit/regenerate-day", req)
	if err != nil {
		return RegeneratedDay{}, err
	}
	var out struct {
		Day RegeneratedDay `json:"day"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return RegeneratedDay{}, apperrors.Wrap(apperrors.CodePlannerError, "decode regenerated day", err)
	}
	if len(out.Day.Blocks) == 0 {
		return RegeneratedDay{}, apperrors.Wrap(apperrors.CodePlannerError, "planner returned an empty day", nil)
	}
	return out.Day, nil
}

// SaveItinerary pushes the full document state back to the planner,
// keyed by its server-assigned identity.
func (c *Client) SaveItinerary(ctx context.Context, id string, doc itinerary.Payload) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "itinerary id cannot be empty", nil)
	}
	payload := struct {
		Result itinerary.Payload `json:"result"`
	}{Result: doc}
	_, err := c.doJSON(ctx, http.MethodPatch, "/api/itineraries/"+id, payload)
	return err
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any) ([]byte, error) {
	httpReq, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePlannerError, "planner request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePlannerError, "read planner response", err)
	}
	if resp.StatusCode >= 300 {
		return nil, c.statusError(resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePlannerError, "encode planner request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePlannerError, "build planner request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return httpReq, nil
}

// statusError maps a non-success response onto the error taxonomy:
// configuration problems are non-retryable, capacity problems invite a
// manual retry, everything else is a generic planner failure.
func (c *Client) statusError(status int, body []byte) error {
	var decoded struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	_ = json.Unmarshal(body, &decoded)
	message := decoded.Message
	if message == "" {
		message = decoded.Error
	}
	if message == "" {
		message = fmt.Sprintf("planner request failed with status %d", status)
	}

	switch {
	case status == http.StatusServiceUnavailable || decoded.Code == "gemini_not_configured":
		return apperrors.Wrap(apperrors.CodePlannerUnavailable, message, nil)
	case status == http.StatusTooManyRequests || decoded.Code == "gemini_quota_exhausted":
		return apperrors.Wrap(apperrors.CodePlannerQuota, message, nil)
	default:
		return apperrors.Wrap(apperrors.CodePlannerError, message, nil)
	}
}
