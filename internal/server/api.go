package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/summerquest/idiom-duel-go/internal/game"
	"github.com/summerquest/idiom-duel-go/internal/room"
)

const maxBodyBytes = 1 << 16

// Options configures the HTTP surface.
type Options struct {
	// AllowedOrigins lists WebSocket origins. Empty keeps the same-origin
	// check, "*" accepts any origin.
	AllowedOrigins []string
}

// Server exposes rooms over HTTP and WebSocket.
type Server struct {
	rooms    *room.Manager
	hub      *Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
	routes   RouteRegistry
}

// New creates a server over rooms and attaches its hub as the rooms'
// notifier. Call Close to stop the hub.
func New(rooms *room.Manager, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		rooms:  rooms,
		hub:    NewHub(rooms, logger),
		logger: logger,
		mux:    http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
	}
	rooms.SetNotifier(s.hub)
	go s.hub.Run()

	s.registerRoutes()
	return s
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		return set[r.Header.Get("Origin")]
	}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(s.mux,
		WithRequestID,
		WithRecover(s.logger),
		WithAccessLog(s.logger),
	)
}

// Close stops the hub and every open connection.
func (s *Server) Close() {
	s.hub.Stop()
}

func (s *Server) registerRoutes() {
	mux, rr := s.mux, &s.routes

	Handle(mux, rr, "POST /api/create_room", "Create a room", "", s.handleCreateRoom)
	Handle(mux, rr, "POST /api/join_room/{room_id}", "Take a seat and receive a player key", "", s.handleJoinRoom)
	Handle(mux, rr, "POST /api/start_game/{room_id}", "Deal a new match", `{"key":"..."}`, s.handleStartGame)
	Handle(mux, rr, "GET /api/game_state/{room_id}", "Room view for ?player_key=", "", s.handleGameState)
	Handle(mux, rr, "POST /api/play_card/{room_id}", "Play a turn", `{"key":"...","card_id":1,"combo_card_id":2}`, s.handlePlayCard)
	Handle(mux, rr, "POST /api/counter/{room_id}", "Arm a counter card, 0 disarms", `{"key":"...","card_id":3}`, s.handleCounter)
	Handle(mux, rr, "GET /api/rooms", "List rooms", "", s.handleListRooms)
	Handle(mux, rr, "GET /api/rooms/{room_id}/history", "Recorded views of the match", "", s.handleHistory)
	Handle(mux, rr, "GET /api/routes", "This listing", "", s.handleRoutes)
	Handle(mux, rr, "GET /healthz", "Liveness", "", s.handleHealth)
	Handle(mux, rr, "GET /ws/{room_id}", "WebSocket for ?player_key=", "", s.handleWebSocket)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type joinResponse struct {
	Success     bool   `json:"success"`
	Key         string `json:"key"`
	PlayerID    string `json:"player_id"`
	PlayerCount int    `json:"player_count"`
}

type keyRequest struct {
	Key string `json:"key"`
}

type playRequest struct {
	Key         string `json:"key"`
	CardID      int    `json:"card_id"`
	ComboCardID *int   `json:"combo_card_id,omitempty"`
}

type resolutionDTO struct {
	CardID   int    `json:"card_id"`
	CardName string `json:"card_name"`
	Role     string `json:"role"`
	ActorID  string `json:"actor_id"`
	JudgedID string `json:"judged_id"`
	Outcome  string `json:"outcome"`
	Moved    int    `json:"moved"`
}

type turnResponse struct {
	Success      bool            `json:"success"`
	AttackerID   string          `json:"attacker_id"`
	Drawn        *game.Card      `json:"drawn,omitempty"`
	Resolutions  []resolutionDTO `json:"resolutions"`
	ComboSkipped bool            `json:"combo_skipped"`
	GameOver     bool            `json:"game_over"`
	Winner       string          `json:"winner,omitempty"`
	Round        int             `json:"round"`
}

func newTurnResponse(res *game.TurnResult) turnResponse {
	out := turnResponse{
		Success:      true,
		AttackerID:   res.AttackerID,
		Drawn:        res.Drawn,
		Resolutions:  make([]resolutionDTO, 0, len(res.Resolutions)),
		ComboSkipped: res.ComboSkipped,
		GameOver:     res.GameOver,
		Winner:       res.Winner,
		Round:        res.Round,
	}
	for _, r := range res.Resolutions {
		dto := resolutionDTO{
			Role:     string(r.Role),
			ActorID:  r.ActorID,
			JudgedID: r.JudgedID,
			Outcome:  string(r.Outcome),
		}
		if r.Card != nil {
			dto.CardID = r.Card.ID
			dto.CardName = r.Card.Name
		}
		for _, c := range r.Chains {
			dto.Moved += c.Moved
		}
		out.Resolutions = append(out.Resolutions, dto)
	}
	return out
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	rm := s.rooms.CreateRoom()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "room_id": rm.ID})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.room(w, r)
	if !ok {
		return
	}
	seat, err := rm.Join()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, joinResponse{
		Success:     true,
		Key:         seat.Key,
		PlayerID:    seat.PlayerID,
		PlayerCount: rm.PlayerCount(),
	})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.room(w, r)
	if !ok {
		return
	}
	var req keyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := rm.Start(r.Context(), req.Key); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "game_state": rm.View(req.Key)})
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.room(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rm.View(r.URL.Query().Get("player_key")))
}

func (s *Server) handlePlayCard(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.room(w, r)
	if !ok {
		return
	}
	var req playRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := rm.Play(r.Context(), req.Key, req.CardID, req.ComboCardID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTurnResponse(res))
}

func (s *Server) handleCounter(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.room(w, r)
	if !ok {
		return
	}
	var req playRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := rm.DeclareCounter(r.Context(), req.Key, req.CardID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "armed": req.CardID != 0})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rooms":  s.rooms.List(),
		"active": s.rooms.GetActiveRoomCount(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.room(w, r)
	if !ok {
		return
	}
	frames := rm.History()
	if frames == nil {
		frames = []*game.ReplayFrame{}
	}
	writeJSON(w, http.StatusOK, frames)
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.routes.List())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "rooms": s.rooms.GetActiveRoomCount()})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.room(w, r)
	if !ok {
		return
	}
	key := r.URL.Query().Get("player_key")
	if key != "" {
		if _, seated := rm.PlayerID(key); !seated {
			writeError(w, room.ErrNotInRoom)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		roomID: rm.ID,
		key:    key,
	}
	select {
	case s.hub.register <- client:
	case <-s.hub.quit:
		conn.Close()
		return
	}

	client.sendMessage(WSMessage{Type: "game_state", Data: rm.View(key)})
	for _, p := range rm.PendingPrompts(key) {
		client.sendMessage(WSMessage{Type: "prompt", Data: p})
	}

	go client.writePump()
	go client.readPump(s.hub, rm)
}

// room resolves the {room_id} path value and writes a 404 when unknown.
func (s *Server) room(w http.ResponseWriter, r *http.Request) (*room.Room, bool) {
	rm, err := s.rooms.GetRoom(r.PathValue("room_id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return rm, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, room.ErrNotInRoom):
		return http.StatusForbidden
	case errors.Is(err, room.ErrRoomClosed):
		return http.StatusGone
	case errors.Is(err, game.ErrTurnInProgress):
		return http.StatusConflict
	case errors.Is(err, room.ErrRoomFull),
		errors.Is(err, room.ErrNeedTwoPlayers),
		errors.Is(err, room.ErrNotStarted),
		errors.Is(err, room.ErrNotYourTurn),
		errors.Is(err, game.ErrCardNotInHand),
		errors.Is(err, game.ErrWrongCardType),
		errors.Is(err, game.ErrDuplicateCard),
		errors.Is(err, game.ErrGameOver):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
