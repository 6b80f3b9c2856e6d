package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/RFlame/Gemi-SaoLei/internal/mines"
)

type Highscore struct {
	GameSessionId int64   `db:"game_session_id" json:"game_session_id,string"`
	Username      *string `db:"username" json:"username"`
	Difficulty    string  `db:"difficulty" json:"difficulty"`
	BoardRows     int32   `db:"board_rows" json:"rows"`
	BoardCols     int32   `db:"board_cols" json:"cols"`
	MineCount     int32   `db:"mine_count" json:"mine_count"`
	PlaytimeMs    float64 `db:"playtime_ms" json:"playtime_ms"`
}

type HighscoreFilter struct {
	Username   *string
	Difficulty *mines.Difficulty
	Limit      int
}

func (f HighscoreFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Username != nil {
		clauses = append(clauses, "username = @username")
		args["username"] = *f.Username
	}
	if f.Difficulty != nil {
		clauses = append(
			clauses,
			"board_rows = @board_rows",
			"board_cols = @board_cols",
			"mine_count = @mine_count",
		)
		args["board_rows"] = f.Difficulty.Rows
		args["board_cols"] = f.Difficulty.Cols
		args["mine_count"] = f.Difficulty.Mines
	}
	return strings.Join(clauses, " AND "), args
}

func (q *Queries) GetHighscores(
	ctx context.Context, filter HighscoreFilter,
) ([]Highscore, error) {
	query := `
	SELECT
		game_session_id,
		username,
		difficulty,
		board_rows,
		board_cols,
		mine_count,
		(
			extract('epoch' from ended_at) -
			extract('epoch' from started_at)
		) * 1000 playtime_ms
	FROM game_session
		LEFT OUTER JOIN player using (player_id)
	WHERE
		status = 'won'
		AND started_at IS NOT NULL
		AND ended_at IS NOT NULL
	`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " AND " + whereClause
	}

	query += " ORDER BY playtime_ms"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	query += " LIMIT @limit;"
	args["limit"] = limit

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}
