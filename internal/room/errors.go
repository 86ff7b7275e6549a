package room

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrNotInRoom      = errors.New("not a player in this room")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrNotStarted     = errors.New("game not started")
	ErrNeedTwoPlayers = errors.New("need two players to start")
	ErrRoomClosed     = errors.New("room closed")
	ErrNoPrompt       = errors.New("no pending prompt")
)
