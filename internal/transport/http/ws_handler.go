package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"matha-service/internal/app"
	"matha-service/internal/domain"
	"matha-service/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// SocketGauge tracks open connections; *metrics.Metrics satisfies it.
type SocketGauge interface {
	SocketOpened()
	SocketClosed()
}

// WSHandler plays one quiz session per websocket connection.
type WSHandler struct {
	service  *app.QuizService
	gauge    SocketGauge
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, gauge SocketGauge, log *logger.Logger) *WSHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &WSHandler{
		service: service,
		gauge:   gauge,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Option     *int   `json:"option"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func errorMessage(err error) outboundMessage {
	_, code := statusFor(err)
	return outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error(), Code: code}}
}

func invalidMessage(msg string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: msg, Code: "invalid_request"}}
}

// ServeWS upgrades the request and runs the quiz: started, then answerResult
// followed by question or completed for each answer.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("userId")
	categoryID := q.Get("categoryId")
	if userID == "" || categoryID == "" {
		http.Error(w, "missing userId or categoryId", http.StatusBadRequest)
		return
	}
	difficulty, err := domain.ParseDifficulty(q.Get("difficulty"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	if h.gauge != nil {
		h.gauge.SocketOpened()
		defer h.gauge.SocketClosed()
	}

	ctx := r.Context()
	session, err := h.service.Start(ctx, userID, categoryID, difficulty)
	if err != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(errorMessage(err))
		return
	}

	completed := false
	defer func() {
		if completed {
			return
		}
		if err := h.service.Abandon(context.WithoutCancel(ctx), session.ID); err != nil {
			h.log.Warn("abandon session", "sessionId", session.ID, "error", err)
		}
	}()

	out := newOutbox(16)

	// Only the writer goroutine touches the connection for writes.
	go func() {
		defer close(out.done)
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case msg, ok := <-out.queue:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
				if err := conn.WriteJSON(msg); err != nil {
					h.log.Debug("ws write error", "sessionId", session.ID, "error", err)
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	writing := out.push(outboundMessage{Type: "started", Payload: newSessionView(session)})
	for writing && !completed {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == nil {
				writing = out.push(invalidMessage("invalid answer payload"))
				continue
			}
			outcome, current, err := h.service.Answer(ctx, session.ID, app.Submission{
				QuestionID: payload.QuestionID,
				Option:     *payload.Option,
			})
			if err != nil {
				writing = out.push(errorMessage(err))
				if errors.Is(err, domain.ErrSessionNotFound) {
					completed = true
				}
				continue
			}
			writing = out.push(outboundMessage{Type: "answerResult", Payload: outcome})
			if outcome.Completed {
				completed = true
				out.push(outboundMessage{Type: "completed", Payload: newCompletedView(current)})
				continue
			}
			if question, ok := current.Current(); ok && writing {
				writing = out.push(outboundMessage{Type: "question", Payload: newQuestionView(question)})
			}
		default:
			writing = out.push(invalidMessage("unsupported message type"))
		}
	}

	close(out.queue)
	<-out.done
}

// outbox queues messages for the connection's writer goroutine.
type outbox struct {
	queue chan outboundMessage
	done  chan struct{}
}

func newOutbox(size int) *outbox {
	return &outbox{queue: make(chan outboundMessage, size), done: make(chan struct{})}
}

// push queues msg and reports false once the writer has stopped, without
// waiting for buffer space it will never free.
func (o *outbox) push(msg outboundMessage) bool {
	select {
	case o.queue <- msg:
		return true
	case <-o.done:
		return false
	}
}
