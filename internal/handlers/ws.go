package handlers

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/RFlame/Gemi-SaoLei/internal/game"
)

type wsCommand string

const (
	wsNoop    wsCommand = "g"
	wsOpen    wsCommand = "o"
	wsFlag    wsCommand = "f"
	wsMark    wsCommand = "m"
	wsChord   wsCommand = "c"
	wsForfeit wsCommand = "r"
)

var wsCommandMoves = map[wsCommand]GameMove{
	wsOpen:  Open,
	wsFlag:  Flag,
	wsMark:  Mark,
	wsChord: Chord,
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrCommandArgs    = errors.New("invalid number of arguments")
)

func iterLines(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		found := true
		var line string
		for found {
			line, s, found = strings.Cut(s, "\n")
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

func parseRowCol(args []string) (row int, col int, err error) {
	if len(args) != 2 {
		return 0, 0, ErrCommandArgs
	}
	if row, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, fmt.Errorf("row must be an int")
	}
	if col, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, fmt.Errorf("col must be an int")
	}
	return row, col, nil
}

// execCommand runs one text command such as "o 3 4" against s.
func (g GameHandler) execCommand(s *game.Session, command string) error {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return ErrUnknownCommand
	}

	switch cmd := wsCommand(parts[0]); cmd {
	case wsNoop:
		if len(parts) != 1 {
			return ErrCommandArgs
		}
		return nil
	case wsForfeit:
		if len(parts) != 1 {
			return ErrCommandArgs
		}
		return s.Forfeit()
	default:
		move, ok := wsCommandMoves[cmd]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCommand, parts[0])
		}
		row, col, err := parseRowCol(parts[1:])
		if err != nil {
			return err
		}
		return g.applyMove(s, MoveDTO{Move: move, Row: row, Col: col})
	}
}

type wsReply struct {
	*GameSessionDTO
	Error string `json:"error,omitempty"`
}

func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	gameSessionId, err := parseSessionId(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if _, ok := g.load(w, r, gameSessionId); !ok {
		return
	}

	c, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer c.Close()

	logger := g.logger.With(
		slog.String("ws_connection", uuid.NewString()),
		slog.Int64("game_session_id", gameSessionId),
	)
	logger.Debug("websocket connected")

	c.SetReadLimit(g.ws.ReadLimit)

	for {
		c.SetReadDeadline(time.Now().Add(g.ws.IdleTimeout))
		mt, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("abnormal ws break", slog.Any("error", err))
			}
			break
		}
		if mt != websocket.TextMessage {
			break
		}

		logger.Debug("received commands", slog.String("text", string(message)))

		reply, err := g.runBatch(r, gameSessionId, string(message))
		if err != nil {
			logger.Error("unable to process commands", slog.Any("error", err))
			c.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, ""),
				time.Now().Add(g.ws.WriteTimeout),
			)
			return
		}

		c.SetWriteDeadline(time.Now().Add(g.ws.WriteTimeout))
		if err := c.WriteJSON(reply); err != nil {
			logger.Error("unable to write json", slog.Any("error", err))
			break
		}
	}
}

// runBatch applies newline separated commands and stores the outcome. A
// rejected command stops the batch and is reported in the reply; only
// storage failures are returned as errors.
func (g GameHandler) runBatch(r *http.Request, gameSessionId int64, text string) (*wsReply, error) {
	unlock := g.locks.lock(gameSessionId)
	defer unlock()

	stored, err := g.store.FetchGameSession(r.Context(), gameSessionId)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch session: %w", err)
	}
	s, err := stored.Decode()
	if err != nil {
		return nil, fmt.Errorf("invalid session state: %w", err)
	}

	reply := &wsReply{}
	for command := range iterLines(text) {
		if err := g.execCommand(s, command); err != nil {
			reply.Error = err.Error()
			break
		}
		if s.Status.Over() {
			break
		}
	}

	if _, err := g.store.UpdateGameSession(r.Context(), gameSessionId, s); err != nil {
		return nil, fmt.Errorf("unable to update session: %w", err)
	}

	reply.GameSessionDTO = NewGameSessionDTO(gameSessionId, s)
	return reply, nil
}
