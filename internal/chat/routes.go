package chat

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterRoutes mounts the assistant API: a REST endpoint for single
// exchanges, session history endpoints, and a WebSocket for the
// conversational UI.
func RegisterRoutes(r chi.Router, assistant *Assistant, sessions *SessionStore) {
	r.Post("/api/chat", handleAsk(assistant))
	r.Get("/api/chat/sessions", handleSessions(sessions))
	r.Get("/api/chat/sessions/{id}/messages", handleMessages(sessions))
	r.Get("/ws/chat", handleWebSocket(assistant))
}

func handleAsk(assistant *Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SessionID string `json:"session_id"`
			Content   string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if body.Content == "" {
			http.Error(w, `{"error":"content is required"}`, http.StatusBadRequest)
			return
		}

		reply, err := assistant.Ask(r.Context(), body.SessionID, body.Content)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply)
	}
}

func handleSessions(sessions *SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := sessions.Sessions(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []Session{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

func handleMessages(sessions *SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messages, err := sessions.Messages(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if messages == nil {
			messages = []StoredMessage{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messages)
	}
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type      string `json:"type"`       // "message"
	SessionID string `json:"session_id"` // empty for new sessions
	Content   string `json:"content"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type      string `json:"type"` // "response" or "error"
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
	Degraded  bool   `json:"degraded,omitempty"`
}

func handleWebSocket(assistant *Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("chat: websocket upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("chat: websocket read: %v", err)
				}
				return
			}

			var req wsRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				sendWS(conn, wsResponse{Type: "error", Content: "invalid message format"})
				continue
			}
			if req.Content == "" {
				sendWS(conn, wsResponse{Type: "error", SessionID: req.SessionID, Content: "content is required"})
				continue
			}
			if req.Type != "message" {
				sendWS(conn, wsResponse{Type: "error", SessionID: req.SessionID, Content: "unknown message type: " + req.Type})
				continue
			}

			reply, err := assistant.Ask(r.Context(), req.SessionID, req.Content)
			if err != nil {
				sendWS(conn, wsResponse{Type: "error", SessionID: req.SessionID, Content: err.Error()})
				continue
			}
			sendWS(conn, wsResponse{
				Type:      "response",
				SessionID: reply.SessionID,
				Content:   reply.Content,
				Degraded:  reply.Degraded,
			})
		}
	}
}

func sendWS(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("chat: websocket write: %v", err)
	}
}
