package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/varad-more/Voyagent/internal/domain/calendar"
	"github.com/varad-more/Voyagent/internal/domain/itinerary"
	"github.com/varad-more/Voyagent/internal/domain/session"
	"github.com/varad-more/Voyagent/internal/domain/share"
	"github.com/varad-more/Voyagent/internal/domain/trip"
	"github.com/varad-more/Voyagent/internal/infra/config"
	apperrors "github.com/varad-more/Voyagent/pkg/errors"
)

const (
	sessionHeader   = "X-Session-Id"
	sessionCookie   = "voyagent_session"
	sessionMaxAge   = 30 * 24 * time.Hour
	keepaliveEvery  = 15 * time.Second
	defaultHistory  = 20
	defaultQRPixels = 256
)

// Handler wires the HTTP transport to the session orchestrator.
type Handler struct {
	sessions session.Service
	shareCfg config.ShareConfig
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(sessions session.Service, shareCfg config.ShareConfig, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		shareCfg: shareCfg,
		logger:   logger.With("component", "http.handler"),
	}
}

// sessionID resolves the caller's session, minting one on first contact.
func (h *Handler) sessionID(c *gin.Context) string {
	if id := c.GetHeader(sessionHeader); id != "" {
		return id
	}
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(sessionCookie, id, int(sessionMaxAge.Seconds()), "/", "", false, true)
	return id
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Generate runs synchronous itinerary generation.
func (h *Handler) Generate(c *gin.Context) {
	var req trip.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	doc, err := h.sessions.Generate(c.Request.Context(), h.sessionID(c), req)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itinerary": doc})
}

// GenerateStream re-emits planner progress as Server-Sent Events.
func (h *Handler) GenerateStream(c *gin.Context) {
	var req trip.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	updates, err := h.sessions.GenerateStream(c.Request.Context(), h.sessionID(c), req)
	if err != nil {
		abortWithAppError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return
	}

	keepalive := time.NewTicker(keepaliveEvery)
	defer keepalive.Stop()

	for {
		select {
		case update, open := <-updates:
			if !open {
				return
			}
			payload := update.Payload
			if len(payload) == 0 {
				payload = []byte("{}")
			}
			c.Writer.Write([]byte("event: " + update.Kind + "\n"))
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(payload)
			c.Writer.Write([]byte("\n\n"))
			flusher.Flush()
		case <-keepalive.C:
			c.Writer.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

// LoadDemo installs the canned demo itinerary for the session.
func (h *Handler) LoadDemo(c *gin.Context) {
	doc, err := h.sessions.LoadDemo(c.Request.Context(), h.sessionID(c))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itinerary": doc})
}

// Current returns the session's document snapshot.
func (h *Handler) Current(c *gin.Context) {
	doc, err := h.sessions.Document(c.Request.Context(), h.sessionID(c))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itinerary": doc})
}

// Progress returns the pipeline display state.
func (h *Handler) Progress(c *gin.Context) {
	snap, err := h.sessions.Progress(h.sessionID(c))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type editRequest struct {
	DayIndex    int    `json:"day_index"`
	BlockIndex  int    `json:"block_index"`
	Instruction string `json:"instruction"`
}

// Edit asks the planner for a replacement block and stages it.
func (h *Handler) Edit(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	suggestion, err := h.sessions.RequestEdit(c.Request.Context(), h.sessionID(c), req.DayIndex, req.BlockIndex, req.Instruction)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion})
}

// ConfirmEdit commits the staged suggestion into the document.
func (h *Handler) ConfirmEdit(c *gin.Context) {
	doc, duplicate, err := h.sessions.ConfirmEdit(c.Request.Context(), h.sessionID(c))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itinerary": doc, "duplicate_warning": duplicate})
}

// CancelEdit discards the staged suggestion.
func (h *Handler) CancelEdit(c *gin.Context) {
	if err := h.sessions.CancelEdit(c.Request.Context(), h.sessionID(c)); err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

type swapRequest struct {
	DayIndex    int    `json:"day_index"`
	BlockIndex  int    `json:"block_index"`
	Preferences string `json:"preferences"`
}

// Swap returns ranked alternatives for one block.
func (h *Handler) Swap(c *gin.Context) {
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	options, err := h.sessions.SwapOptions(c.Request.Context(), h.sessionID(c), req.DayIndex, req.BlockIndex, req.Preferences)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alternatives": options})
}

type swapApplyRequest struct {
	DayIndex   int                     `json:"day_index"`
	BlockIndex int                     `json:"block_index"`
	Block      itinerary.ScheduleBlock `json:"block"`
}

// ApplySwap replaces a block with a chosen alternative.
func (h *Handler) ApplySwap(c *gin.Context) {
	var req swapApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	doc, duplicate, err := h.sessions.ApplySwap(c.Request.Context(), h.sessionID(c), req.DayIndex, req.BlockIndex, req.Block)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itinerary": doc, "duplicate_warning": duplicate})
}

type regenerateRequest struct {
	DayIndex    int    `json:"day_index"`
	Preferences string `json:"preferences"`
}

// RegenerateDay replaces one day wholesale.
func (h *Handler) RegenerateDay(c *gin.Context) {
	var req regenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	doc, err := h.sessions.RegenerateDay(c.Request.Context(), h.sessionID(c), req.DayIndex, req.Preferences)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itinerary": doc})
}

type blockDeleteRequest struct {
	DayIndex   int `json:"day_index"`
	BlockIndex int `json:"block_index"`
}

// DeleteBlock removes a block from the document.
func (h *Handler) DeleteBlock(c *gin.Context) {
	var req blockDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	doc, err := h.sessions.DeleteBlock(c.Request.Context(), h.sessionID(c), req.DayIndex, req.BlockIndex)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itinerary": doc})
}

type blockInsertRequest struct {
	DayIndex int                     `json:"day_index"`
	Block    itinerary.ScheduleBlock `json:"block"`
}

// InsertBlock adds a block to a day.
func (h *Handler) InsertBlock(c *gin.Context) {
	var req blockInsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	doc, duplicate, err := h.sessions.InsertBlock(c.Request.Context(), h.sessionID(c), req.DayIndex, req.Block)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itinerary": doc, "duplicate_warning": duplicate})
}

// Save pushes the full document back to the planner service.
func (h *Handler) Save(c *gin.Context) {
	if err := h.sessions.Save(c.Request.Context(), h.sessionID(c)); err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// Calendar serves the document as an ICS download.
func (h *Handler) Calendar(c *gin.Context) {
	doc, err := h.sessions.Document(c.Request.Context(), h.sessionID(c))
	if err != nil {
		abortWithAppError(c, err)
		return
	}

	ics := calendar.Export(doc)
	c.Header("Content-Disposition", `attachment; filename="`+calendar.Filename(doc)+`"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

// Share returns the plaintext view and, when the document has a server
// identity, its share reference.
func (h *Handler) Share(c *gin.Context) {
	doc, err := h.sessions.Document(c.Request.Context(), h.sessionID(c))
	if err != nil {
		abortWithAppError(c, err)
		return
	}

	body := gin.H{"text": share.PlainText(doc)}
	if ref, refErr := share.Ref(doc); refErr == nil {
		body["ref"] = ref
		if h.shareCfg.PublicBaseURL != "" {
			if url, urlErr := share.URL(h.shareCfg.PublicBaseURL, doc); urlErr == nil {
				body["url"] = url
			}
		}
	}
	c.JSON(http.StatusOK, body)
}

// ShareQR renders the share URL as a PNG.
func (h *Handler) ShareQR(c *gin.Context) {
	doc, err := h.sessions.Document(c.Request.Context(), h.sessionID(c))
	if err != nil {
		abortWithAppError(c, err)
		return
	}

	size := defaultQRPixels
	if raw := c.Query("size"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil && parsed > 0 {
			size = parsed
		}
	}
	png, err := share.QR(h.shareCfg.PublicBaseURL, doc, size)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// History lists recent generation records.
func (h *Handler) History(c *gin.Context) {
	limit := defaultHistory
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	records, err := h.sessions.History(c.Request.Context(), limit)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itineraries": records})
}

// RecordByID returns one stored generation record.
func (h *Handler) RecordByID(c *gin.Context) {
	record, err := h.sessions.Record(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func abortWithAppError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	if code == "" {
		code = "internal_error"
	}
	abortWithError(c, NewHTTPError(statusForCode(code), code, errMessage(err), err))
}

func statusForCode(code string) int {
	switch code {
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeNoDocument, apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeEditConflict:
		return http.StatusConflict
	case apperrors.CodePlannerUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.CodePlannerQuota:
		return http.StatusTooManyRequests
	case apperrors.CodePlannerError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
