package hint

import (
	"fmt"
	"strings"

	"github.com/RFlame/Gemi-SaoLei/internal/mines"
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// Prompt describes the player's view of board to the model.
func Prompt(board mines.Board, remaining int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb,
		"You are playing Minesweeper on a %d x %d board. Rows and columns are numbered from 0.\n",
		board.Rows, board.Cols,
	)
	sb.WriteString("Each row below lists its cells left to right: a digit is an opened cell " +
		"with that many mines around it, F is a flagged cell and H is a hidden cell.\n\n")
	for i, row := range board.Encode() {
		fmt.Fprintf(&sb, "%2d: %s\n", i, strings.Join(strings.Split(row, ""), " "))
	}
	fmt.Fprintf(&sb, "\nMines not yet flagged: %d\n\n", remaining)
	sb.WriteString("Suggest the single safest next move. Answer with one JSON object only: " +
		`{"row": <int>, "col": <int>, "action": "reveal" | "flag", "reasoning": "<one or two sentences>"}`)
	return sb.String()
}
