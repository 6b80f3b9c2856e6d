package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/RFlame/Gemi-SaoLei/internal/game"
)

type GameSession struct {
	GameSessionId int64              `db:"game_session_id"`
	PlayerId      *int64             `db:"player_id"`
	Difficulty    string             `db:"difficulty"`
	BoardRows     int32              `db:"board_rows"`
	BoardCols     int32              `db:"board_cols"`
	MineCount     int32              `db:"mine_count"`
	Status        string             `db:"status"`
	StartedAt     *time.Time         `db:"started_at"`
	EndedAt       *time.Time         `db:"ended_at"`
	State         []byte             `db:"state"`
	CreatedAt     pgtype.Timestamptz `db:"created_at"`
	UpdatedAt     pgtype.Timestamptz `db:"updated_at"`
}

func (s GameSession) Decode() (*game.Session, error) {
	return game.Decode(s.State)
}

func timeOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// sessionArgs holds the columns derived from the live session.
func sessionArgs(s *game.Session) (pgx.NamedArgs, error) {
	state, err := s.Bytes()
	if err != nil {
		return nil, err
	}
	return pgx.NamedArgs{
		"status":     s.Status.String(),
		"started_at": timeOrNil(s.StartedAt),
		"ended_at":   timeOrNil(s.EndedAt),
		"state":      state,
	}, nil
}

func (q *Queries) CreateGameSession(
	ctx context.Context, s *game.Session, playerId *int64,
) (*GameSession, error) {
	args, err := sessionArgs(s)
	if err != nil {
		return nil, err
	}
	args["player_id"] = playerId
	args["difficulty"] = s.Difficulty.Name
	args["board_rows"] = s.Difficulty.Rows
	args["board_cols"] = s.Difficulty.Cols
	args["mine_count"] = s.Difficulty.Mines

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_session (
			player_id, difficulty, board_rows, board_cols, mine_count,
			status, started_at, ended_at, state
		)
		VALUES (
			@player_id, @difficulty, @board_rows, @board_cols, @mine_count,
			@status, @started_at, @ended_at, @state
		)
		RETURNING *;`,
		args,
	)
	return pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[GameSession],
	)
}

func (q *Queries) FetchGameSession(ctx context.Context, gameSessionId int64) (*GameSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1",
		gameSessionId,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}

func (q *Queries) UpdateGameSession(
	ctx context.Context, gameSessionId int64, s *game.Session,
) (*GameSession, error) {
	args, err := sessionArgs(s)
	if err != nil {
		return nil, err
	}
	args["game_session_id"] = gameSessionId

	rows, _ := q.db.Query(
		ctx,
		`UPDATE game_session
		SET status = @status,
			started_at = @started_at,
			ended_at = @ended_at,
			state = @state,
			updated_at = now()
		WHERE game_session_id = @game_session_id
		RETURNING *`,
		args,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}
