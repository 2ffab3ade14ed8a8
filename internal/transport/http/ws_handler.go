package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"quizlink-service/internal/app"
	"quizlink-service/internal/domain"
)

// WSHandler runs a quiz over a websocket. The connection holds the current
// query the way a browser tab holds its URL.
type WSHandler struct {
	service  *app.QuizService
	stores   app.AnswerStores
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewWSHandler(service *app.QuizService, stores app.AnswerStores, log *slog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		stores:  stores,
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

type navigatePayload struct {
	Query string `json:"query"`
}

type answerPayload struct {
	QuestionIdx int `json:"questionIdx"`
	AnswerIdx   int `json:"answerIdx"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and serves navigate/answer messages until the
// client disconnects. The initial state is derived from the upgrade query.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get(app.ParamTestName) == "" {
		http.Error(w, "missing testName", http.StatusBadRequest)
		return
	}

	id, fresh := clientID(r)
	header := http.Header{}
	if fresh {
		header.Add("Set-Cookie", clientIDCookie(id).String())
	}

	conn, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		h.log.Debug("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	store := h.stores.ForClient(id)

	send := func(msg any) bool {
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Debug("ws write error", "err", err)
			return false
		}
		return true
	}
	sendState := func(q url.Values, state app.State) bool {
		return send(outboundMessage[transition]{Type: "state", Payload: transition{Query: q.Encode(), State: state}})
	}
	sendError := func(message string) bool {
		return send(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}})
	}

	if !sendState(query, h.service.View(ctx, query)) {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		ok := true
		switch inbound.Type {
		case "navigate":
			var payload navigatePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				ok = sendError("invalid navigate payload")
				break
			}
			next, err := url.ParseQuery(payload.Query)
			if err != nil {
				ok = sendError("invalid query")
				break
			}
			if next.Get(app.ParamTestName) == "" {
				next.Set(app.ParamTestName, query.Get(app.ParamTestName))
			}
			query = next
			ok = sendState(query, h.service.View(ctx, query))
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				ok = sendError("invalid answer payload")
				break
			}
			next, state, err := h.service.Answer(ctx, store, query.Get(app.ParamTestName), payload.QuestionIdx, payload.AnswerIdx)
			if err != nil {
				if !errors.Is(err, domain.ErrQuizNotFound) && !errors.Is(err, domain.ErrQuestionNotFound) {
					h.log.Warn("answer not recorded", "testName", query.Get(app.ParamTestName), "err", err)
				}
				ok = sendError(err.Error())
				break
			}
			query = next
			ok = sendState(query, state)
		default:
			ok = sendError("unsupported message type")
		}
		if !ok {
			return
		}
	}
}
