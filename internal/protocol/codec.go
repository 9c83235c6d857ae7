// internal/protocol/codec.go
//
// Textual wire codec for the game protocol.
// Inbound messages are literal tags, optionally followed by ':' and a payload:
//
//	MAP:{"Map":["0000000000", ...]}
//	SHOT:<row>,<col>
//	READY
//	REMATCH_REQUEST | REMATCH_ACCEPT | REMATCH_REJECT
//
// Outbound messages are built by the helpers at the bottom of this file.

package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/robalobadob/battleship/internal/game"
)

// Kind identifies an inbound message.
type Kind int

const (
	KindUnknown Kind = iota
	KindMap
	KindShot
	KindReady
	KindRematchRequest
	KindRematchAccept
	KindRematchReject
)

// Inbound tags and fixed outbound tokens.
const (
	TagMap            = "MAP:"
	TagShot           = "SHOT:"
	TagReady          = "READY"
	TagRematchRequest = "REMATCH_REQUEST"
	TagRematchAccept  = "REMATCH_ACCEPT"
	TagRematchReject  = "REMATCH_REJECT"

	NotYourTurn  = "NOT_YOUR_TURN"
	GameNotReady = "GAME_NOT_READY"
	GameOver     = "Game Over!"
)

// ErrBadMessage marks a recognised message with an unusable payload.
var ErrBadMessage = errors.New("bad message")

// Message is a decoded inbound message.
type Message struct {
	Kind Kind
	Raw  string
	Rows []string // KindMap
	Row  int      // KindShot
	Col  int      // KindShot
}

// mapPayload is the JSON body of a MAP message.
type mapPayload struct {
	Map []string `json:"Map"`
}

// Parse decodes raw text. Unrecognised text yields KindUnknown and no error.
func Parse(raw string) (Message, error) {
	msg := Message{Raw: raw}
	switch {
	case strings.HasPrefix(raw, TagMap):
		var p mapPayload
		if err := json.Unmarshal([]byte(raw[len(TagMap):]), &p); err != nil {
			return msg, fmt.Errorf("%w: map json: %v", ErrBadMessage, err)
		}
		if p.Map == nil {
			return msg, fmt.Errorf("%w: map payload has no Map field", ErrBadMessage)
		}
		msg.Kind, msg.Rows = KindMap, p.Map
	case strings.HasPrefix(raw, TagShot):
		row, col, err := parseCoords(raw[len(TagShot):])
		if err != nil {
			return msg, err
		}
		msg.Kind, msg.Row, msg.Col = KindShot, row, col
	case raw == TagReady:
		msg.Kind = KindReady
	case raw == TagRematchRequest:
		msg.Kind = KindRematchRequest
	case raw == TagRematchAccept:
		msg.Kind = KindRematchAccept
	case raw == TagRematchReject:
		msg.Kind = KindRematchReject
	}
	return msg, nil
}

func parseCoords(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: shot wants <row>,<col>, got %q", ErrBadMessage, s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: shot row: %v", ErrBadMessage, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: shot col: %v", ErrBadMessage, err)
	}
	return row, col, nil
}

// ----------------------------- outbound ------------------------------------

func Turn(player int) string { return "TURN:" + strconv.Itoa(player) }

func ShotResult(row, col int, r game.Result) string {
	return fmt.Sprintf("SHOT_RESULT:%d,%d,%s", row, col, r)
}

// SunkShip encodes positions and the alignment hint: SUNK_SHIP:r,c;r,c|true
func SunkShip(s *game.Ship) string {
	return "SUNK_SHIP:" + joinPositions(s.Positions) + "|" + strconv.FormatBool(s.Horizontal())
}

func MarkedPositions(ps []game.Position) string {
	return "MARKED_POSITIONS:" + joinPositions(ps)
}

func Player(n int) string             { return "PLAYER:" + strconv.Itoa(n) }
func PlayerJoined(n int) string       { return "PLAYER_JOINED:" + strconv.Itoa(n) }
func PlayerDisconnected(n int) string { return "PLAYER_DISCONNECTED:" + strconv.Itoa(n) }

// PreloadMap encodes b for the opponent: '1' ship, 'X' blocked, 'E' anything else.
func PreloadMap(b *game.Board) string {
	rows := make([]string, game.Size)
	var sb strings.Builder
	for r := 0; r < game.Size; r++ {
		sb.Reset()
		for c := 0; c < game.Size; c++ {
			st := game.Empty
			if b != nil {
				st, _ = b.Get(r, c)
			}
			switch st {
			case game.Occupied:
				sb.WriteByte('1')
			case game.Blocked:
				sb.WriteByte('X')
			default:
				sb.WriteByte('E')
			}
		}
		rows[r] = sb.String()
	}
	data, _ := json.Marshal(rows)
	return "PRELOAD_MAP:" + string(data)
}

func joinPositions(ps []game.Position) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = strconv.Itoa(p.Row) + "," + strconv.Itoa(p.Col)
	}
	return strings.Join(parts, ";")
}
