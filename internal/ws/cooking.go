package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/mealcraft/mealcraft-api/internal/ai"
	"github.com/mealcraft/mealcraft-api/internal/cooking"
	"github.com/mealcraft/mealcraft-api/internal/logger"
	"github.com/mealcraft/mealcraft-api/internal/models"
	"github.com/mealcraft/mealcraft-api/internal/service"
	"go.uber.org/zap"
)

// WebSocket message types for the cooking protocol.
const (
	MsgTypeCommand         = "command"          // Client issues a session command
	MsgTypeVoiceTranscript = "voice_transcript" // Client sends speech to interpret
	MsgTypeStepChanged     = "step_changed"     // Session moved to a new step
	MsgTypeNarrate         = "narrate"          // Text to speak, or a cancel
	MsgTypeTimerTick       = "timer_tick"       // Step timer countdown update
	MsgTypeHaptic          = "haptic"           // Vibration pulse on timer expiry
	MsgTypeToast           = "toast"            // Transient notice for the UI
	MsgTypeCompleted       = "completed"        // Cook finished the recipe
	MsgTypeExitRequested   = "exit_requested"   // Cook asked to leave, confirm first
	MsgTypeError           = "error"            // Error message
	MsgTypeConnected       = "connected"        // Connection confirmed
)

// WSMessage is the envelope for all messages sent over the cooking WebSocket.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// CommandPayload carries a session command from a client. Valid actions are
// start, next, previous, pause, resume, mute, unmute, repeat, complete,
// exit, and confirm_exit.
type CommandPayload struct {
	Action string `json:"action"`
}

// VoiceTranscriptPayload carries speech input, either already transcribed or
// as raw audio to run through transcription.
type VoiceTranscriptPayload struct {
	Transcript string `json:"transcript"`
	AudioData  []byte `json:"audio_data,omitempty"` // base64-encoded
}

// StepChangedPayload announces the session's new position.
type StepChangedPayload struct {
	Step  int `json:"step"`
	Total int `json:"total"`
}

// NarratePayload carries step narration. Cancel true means stop speaking
// whatever is in flight; Text is empty in that case.
type NarratePayload struct {
	Text   string `json:"text,omitempty"`
	Cancel bool   `json:"cancel,omitempty"`
}

// TimerTickPayload carries the seconds left on the current step's timer.
type TimerTickPayload struct {
	Remaining int `json:"remaining"`
}

// ToastPayload carries a transient notice for the client UI. The client
// expires it on its own.
type ToastPayload struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Variant     string `json:"variant,omitempty"` // info, warning
}

// ErrorPayload carries an error message to the client.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ConnectedPayload confirms a successful connection and reports where the
// session currently stands, so late-joining devices can sync up.
type ConnectedPayload struct {
	RecipeID string `json:"recipe_id"`
	UserID   uint   `json:"user_id"`
	Step     int    `json:"step"`
	Total    int    `json:"total"`
}

// roomSession is a live cooking session shared by every device in a room.
// The ticker goroutine drives the step timer; it stops when the last
// device disconnects.
type roomSession struct {
	session *cooking.Session
	total   int
	refs    int
	stop    chan struct{}
}

// CookingHandler manages WebSocket connections for cooking mode. Sessions
// are keyed by recipe ID, so a cook's phone and tablet share one session.
type CookingHandler struct {
	Hub       *Hub
	JwtSecret string
	Library   *service.LibraryService
	Speech    ai.SpeechProvider // nil disables audio transcription

	mu       sync.Mutex
	sessions map[string]*roomSession
}

// NewCookingHandler returns a new CookingHandler.
func NewCookingHandler(hub *Hub, jwtSecret string, library *service.LibraryService, speech ai.SpeechProvider) *CookingHandler {
	return &CookingHandler{
		Hub:       hub,
		JwtSecret: jwtSecret,
		Library:   library,
		Speech:    speech,
		sessions:  make(map[string]*roomSession),
	}
}

// upgrader is configured for cooking mode WebSocket upgrades.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		switch origin {
		case "https://mealcraft.app",
			"https://www.mealcraft.app",
			"https://api.mealcraft.app":
			return true
		}
		// Allow localhost for development
		if strings.HasPrefix(origin, "http://localhost:") || origin == "http://localhost" {
			return true
		}
		return false
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// roomEvents bridges session events onto the room's WebSocket fan-out.
// Every device in the room sees the same step changes, narration, and
// timer ticks.
type roomEvents struct {
	hub    *Hub
	roomID string
}

func (e *roomEvents) send(msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	msg, _ := json.Marshal(WSMessage{Type: msgType, Payload: data})
	e.hub.Broadcast <- &RoomMessage{
		RoomID:  e.roomID,
		Message: msg,
	}
}

func (e *roomEvents) Narrate(text string) {
	e.send(MsgTypeNarrate, NarratePayload{Text: text})
}

func (e *roomEvents) CancelNarration() {
	e.send(MsgTypeNarrate, NarratePayload{Cancel: true})
}

func (e *roomEvents) StepChanged(step, total int) {
	e.send(MsgTypeStepChanged, StepChangedPayload{Step: step, Total: total})
}

func (e *roomEvents) TimerTick(remaining int) {
	e.send(MsgTypeTimerTick, TimerTickPayload{Remaining: remaining})
}

func (e *roomEvents) Haptic() {
	e.send(MsgTypeHaptic, json.RawMessage(`{}`))
}

func (e *roomEvents) Completed() {
	e.send(MsgTypeCompleted, json.RawMessage(`{}`))
}

func (e *roomEvents) ExitRequested() {
	e.send(MsgTypeExitRequested, json.RawMessage(`{}`))
}

// HandleCookingSession upgrades an HTTP request to a WebSocket connection
// for cooking mode. Authentication is done via a "token" query parameter
// because WebSocket connections cannot easily use Authorization headers.
func (ch *CookingHandler) HandleCookingSession(c *gin.Context) {
	log := logger.Get()

	recipeID := c.Param("recipe_id")
	if recipeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "recipe_id is required"})
		return
	}

	// Authenticate via query param token
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "token query parameter is required"})
		return
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(ch.JwtSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
		return
	}

	// Ensure this is an access token
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "access" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token type"})
		return
	}

	// Extract user ID
	idFloat, ok := claims["user_id"].(float64)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user_id in token"})
		return
	}
	userID := uint(idFloat)

	// The recipe must exist before we commit to a session.
	recipe, err := ch.Library.GetRecipe(c.Request.Context(), recipeID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "recipe not found"})
		return
	}

	// Upgrade to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed",
			zap.String("recipe_id", recipeID),
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return
	}

	// Create client and register with hub
	client := &Client{
		Hub:    ch.Hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		RoomID: recipeID,
		UserID: userID,
	}
	ch.Hub.Register <- client

	rs := ch.acquireSession(recipeID, recipe)

	// Send connected confirmation with the session's current position
	connectedPayload, _ := json.Marshal(ConnectedPayload{
		RecipeID: recipeID,
		UserID:   userID,
		Step:     rs.session.Step(),
		Total:    rs.total,
	})
	connectedMsg, _ := json.Marshal(WSMessage{
		Type:    MsgTypeConnected,
		Payload: connectedPayload,
	})
	client.Send <- connectedMsg

	log.Info("cooking session joined",
		zap.String("recipe_id", recipeID),
		zap.Uint("user_id", userID),
	)

	// Start read and write pumps. The session reference is released when
	// the read pump exits, which is when the client disconnects.
	go client.WritePump()
	go func() {
		client.ReadPump(func(cl *Client, data []byte) {
			ch.handleMessage(cl, rs, data)
		})
		ch.releaseSession(recipeID)
	}()
}

// acquireSession returns the room's shared session, creating it and its
// ticker goroutine on first use.
func (ch *CookingHandler) acquireSession(roomID string, recipe *models.Recipe) *roomSession {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if rs, ok := ch.sessions[roomID]; ok {
		rs.refs++
		return rs
	}

	rs := &roomSession{
		session: cooking.NewSession(recipe, &roomEvents{hub: ch.Hub, roomID: roomID}),
		total:   len(recipe.Instructions),
		refs:    1,
		stop:    make(chan struct{}),
	}
	ch.sessions[roomID] = rs

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rs.session.Tick()
			case <-rs.stop:
				return
			}
		}
	}()

	return rs
}

// releaseSession drops a reference to the room's session and tears it down
// when the last device leaves.
func (ch *CookingHandler) releaseSession(roomID string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	rs, ok := ch.sessions[roomID]
	if !ok {
		return
	}
	rs.refs--
	if rs.refs <= 0 {
		close(rs.stop)
		delete(ch.sessions, roomID)
	}
}

// handleMessage parses an incoming WebSocket message and routes it to the
// appropriate handler.
func (ch *CookingHandler) handleMessage(client *Client, rs *roomSession, data []byte) {
	log := logger.Get()

	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		ch.sendError(client, "invalid message format")
		return
	}

	log.Debug("received ws message",
		zap.String("type", msg.Type),
		zap.String("room_id", client.RoomID),
		zap.Uint("user_id", client.UserID),
	)

	switch msg.Type {
	case MsgTypeCommand:
		ch.handleCommand(client, rs, msg.Payload)

	case MsgTypeVoiceTranscript:
		ch.handleVoiceTranscript(client, rs, msg.Payload)

	default:
		ch.sendError(client, "unknown message type: "+msg.Type)
	}
}

// handleCommand applies a session command.
func (ch *CookingHandler) handleCommand(client *Client, rs *roomSession, payload json.RawMessage) {
	var cmd CommandPayload
	if err := json.Unmarshal(payload, &cmd); err != nil {
		ch.sendError(client, "invalid command payload")
		return
	}

	switch cmd.Action {
	case "start":
		rs.session.Start()
	case "next":
		rs.session.Next()
	case "previous":
		rs.session.Prev()
	case "pause":
		rs.session.Pause()
	case "resume":
		rs.session.Resume()
	case "mute":
		rs.session.Mute()
	case "unmute":
		rs.session.Unmute()
	case "repeat":
		rs.session.Repeat()
	case "complete":
		if err := rs.session.Complete(); err != nil {
			ch.sendToast(client, "Not so fast", "Finish the remaining steps first", "info")
		}
	case "exit":
		rs.session.RequestExit()
	case "confirm_exit":
		rs.session.ConfirmExit()
	default:
		ch.sendError(client, "unknown command: "+cmd.Action)
	}
}

// handleVoiceTranscript interprets speech as a session command. Text
// transcripts are matched directly; audio goes through transcription first.
func (ch *CookingHandler) handleVoiceTranscript(client *Client, rs *roomSession, payload json.RawMessage) {
	log := logger.Get()

	var transcript VoiceTranscriptPayload
	if err := json.Unmarshal(payload, &transcript); err != nil {
		ch.sendError(client, "invalid voice transcript payload")
		return
	}

	if transcript.Transcript == "" && len(transcript.AudioData) == 0 {
		ch.sendError(client, "transcript or audio_data is required")
		return
	}

	text := transcript.Transcript
	if text == "" {
		if ch.Speech == nil {
			ch.sendError(client, "audio transcription is not available")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		transcribed, err := ch.Speech.TranscribeAudio(ctx, transcript.AudioData)
		if err != nil {
			log.Error("failed to transcribe voice command",
				zap.String("room_id", client.RoomID),
				zap.Uint("user_id", client.UserID),
				zap.Error(err),
			)
			ch.sendError(client, "failed to process voice command")
			return
		}
		text = transcribed
	}

	command := cooking.ParseVoiceCommand(text)
	if command == cooking.CmdNone {
		ch.sendToast(client, "Didn't catch that", "Try \"next\" or \"repeat\"", "info")
		return
	}

	log.Info("voice command recognized",
		zap.String("room_id", client.RoomID),
		zap.Uint("user_id", client.UserID),
		zap.String("command", string(command)),
	)

	switch command {
	case cooking.CmdNext:
		rs.session.Next()
	case cooking.CmdPrevious:
		rs.session.Prev()
	case cooking.CmdPause:
		rs.session.Pause()
	case cooking.CmdResume:
		rs.session.Resume()
	case cooking.CmdMute:
		rs.session.Mute()
	case cooking.CmdUnmute:
		rs.session.Unmute()
	case cooking.CmdRepeat:
		rs.session.Repeat()
	case cooking.CmdComplete:
		if err := rs.session.Complete(); err != nil {
			ch.sendToast(client, "Not so fast", "Finish the remaining steps first", "info")
		}
	case cooking.CmdExit:
		rs.session.RequestExit()
	}
}

// sendToast sends a transient notice to a single client.
func (ch *CookingHandler) sendToast(client *Client, title, description, variant string) {
	toastPayload, _ := json.Marshal(ToastPayload{
		Title:       title,
		Description: description,
		Variant:     variant,
	})
	toastMsg, _ := json.Marshal(WSMessage{
		Type:    MsgTypeToast,
		Payload: toastPayload,
	})
	client.Send <- toastMsg
}

// sendError sends an error message to a single client.
func (ch *CookingHandler) sendError(client *Client, message string) {
	errPayload, _ := json.Marshal(ErrorPayload{
		Message: message,
	})
	errMsg, _ := json.Marshal(WSMessage{
		Type:    MsgTypeError,
		Payload: errPayload,
	})
	client.Send <- errMsg
}
