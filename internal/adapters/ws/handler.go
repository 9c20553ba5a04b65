package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	service "github.com/okian/keyrace/internal/app"
	"github.com/okian/keyrace/internal/domain/model"
	"github.com/okian/keyrace/pkg/logger"
	"golang.org/x/time/rate"
)

// Client frame types.
const (
	FrameRestart          = "restart"
	FrameTypedChar        = "typed_char"
	FrameFinishedTyping   = "finished_typing"
	FrameFinish           = "finish"
	FrameCalculateResults = "calculate_results"
)

// Error codes produced by the transport itself.
const (
	CodeBadFrame    = "bad_frame"
	CodeUnknownType = "unknown_type"
	CodeRateLimited = "rate_limited"
)

const (
	defaultLivenessTimeout = 60 * time.Second
	defaultWriteTimeout    = 3 * time.Second
	defaultLeaveTimeout    = 5 * time.Second
	defaultMessageRate     = 50
	defaultMessageBurst    = 100
	readLimitBytes         = 4096
)

// Session is what the handler drives.
type Session interface {
	Join(ctx context.Context, connID, identity string) (model.Participant, error)
	Leave(ctx context.Context, connID string) error
	Restart(ctx context.Context, connID string) (int, error)
	RecordKeystroke(ctx context.Context, connID string, index int, char string) (bool, error)
	FinishTyping(ctx context.Context, connID string) (bool, error)
	SubmitCompletion(ctx context.Context, connID string) (*model.RoundResult, error)
}

// ClientFrame is one inbound message.
type ClientFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Keystroke is the data of a typed_char frame.
type Keystroke struct {
	Index *int   `json:"index"`
	Char  string `json:"char"`
}

// Option configures a Handler.
type Option func(*Handler)

// WithLivenessTimeout closes connections that stop answering pings for this long.
func WithLivenessTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.livenessTimeout = d
		}
	}
}

// WithWriteTimeout bounds each outbound write.
func WithWriteTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

// WithRateLimit limits inbound frames per connection.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(h *Handler) {
		if perSecond > 0 && burst > 0 {
			h.rate = rate.Limit(perSecond)
			h.burst = burst
		}
	}
}

// WithOriginPatterns allows cross-origin upgrades from the given host patterns.
func WithOriginPatterns(patterns ...string) Option {
	return func(h *Handler) {
		h.originPatterns = append(h.originPatterns, patterns...)
	}
}

// WithLogger sets a custom logger for the handler.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// Handler upgrades GET /ws?user_id=<identity> and bridges the socket to the session.
type Handler struct {
	session Session
	hub     *Hub

	livenessTimeout time.Duration
	writeTimeout    time.Duration
	leaveTimeout    time.Duration
	rate            rate.Limit
	burst           int
	originPatterns  []string

	logger logger.Logger
}

// NewHandler creates a websocket handler.
func NewHandler(session Session, hub *Hub, opts ...Option) *Handler {
	h := &Handler{
		session:         session,
		hub:             hub,
		livenessTimeout: defaultLivenessTimeout,
		writeTimeout:    defaultWriteTimeout,
		leaveTimeout:    defaultLeaveTimeout,
		rate:            defaultMessageRate,
		burst:           defaultMessageBurst,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("ws")
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity := r.URL.Query().Get("user_id")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimitBytes)

	connID := uuid.NewString()
	log := h.logger.With(logger.ConnID(connID))
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The outbox must exist before Join so the host notice is not lost.
	out := h.hub.Register(connID)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		h.writeLoop(ctx, conn, out, log)
	}()

	defer func() {
		h.hub.Unregister(connID)
		<-writerDone

		leaveCtx, done := context.WithTimeout(context.WithoutCancel(r.Context()), h.leaveTimeout)
		defer done()
		if err := h.session.Leave(leaveCtx, connID); err != nil {
			log.Error(leaveCtx, "leave failed", logger.Error(err))
		}
	}()

	if _, err := h.session.Join(ctx, connID, identity); err != nil {
		log.Warn(ctx, "join rejected", logger.Error(err))
		_ = conn.Close(websocket.StatusTryAgainLater, service.Code(err))
		return
	}

	h.readLoop(ctx, conn, connID, log)
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, connID string, log logger.Logger) {
	limiter := rate.NewLimiter(h.rate, h.burst)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				log.Debug(ctx, "client closed")
			default:
				if !errors.Is(err, context.Canceled) {
					log.Debug(ctx, "read failed", logger.Error(err))
				}
			}
			return
		}

		if !limiter.Allow() {
			h.reject(ctx, connID, CodeRateLimited, "too many messages")
			continue
		}

		var frame ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.reject(ctx, connID, CodeBadFrame, "bad json")
			continue
		}
		h.dispatch(ctx, connID, frame)
	}
}

func (h *Handler) dispatch(ctx context.Context, connID string, frame ClientFrame) {
	var err error
	switch frame.Type {
	case FrameRestart:
		_, err = h.session.Restart(ctx, connID)
	case FrameTypedChar:
		var k Keystroke
		if jerr := json.Unmarshal(frame.Data, &k); jerr != nil || k.Index == nil {
			h.reject(ctx, connID, CodeBadFrame, "typed_char needs index and char")
			return
		}
		_, err = h.session.RecordKeystroke(ctx, connID, *k.Index, k.Char)
	case FrameFinishedTyping:
		_, err = h.session.FinishTyping(ctx, connID)
	case FrameFinish, FrameCalculateResults:
		_, err = h.session.SubmitCompletion(ctx, connID)
	default:
		h.reject(ctx, connID, CodeUnknownType, "unknown type "+frame.Type)
		return
	}
	if err != nil && ctx.Err() == nil {
		h.reject(ctx, connID, service.Code(err), err.Error())
	}
}

func (h *Handler) reject(ctx context.Context, connID, code, message string) {
	h.hub.Send(ctx, connID, model.ErrorNotice(code, message))
}

// writeLoop is the only writer of conn. It returns when the outbox closes,
// a write fails or the peer stops answering pings.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan model.Notice, log logger.Logger) {
	ticker := time.NewTicker(h.livenessTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-out:
			if !ok {
				_ = conn.Close(websocket.StatusPolicyViolation, "outbox closed")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
			err := wsjson.Write(wctx, conn, n)
			cancel()
			if err != nil {
				log.Debug(ctx, "write failed", logger.Error(err))
				return
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, h.livenessTimeout/2)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				log.Debug(ctx, "ping failed", logger.Error(err))
				return
			}
		}
	}
}
