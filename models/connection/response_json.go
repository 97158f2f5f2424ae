package connection

import (
	mb "github.com/saeidalz13/seabattle/models/battleship"
)

type RespSessionId struct {
	SessionID string `json:"session_id"`
}

type RespCreateGame struct {
	GameUuid  string `json:"game_uuid"`
	BoardSize int    `json:"board_size"`
	Fleet     []int  `json:"fleet"`
}

type RespShip struct {
	Length      int            `json:"length"`
	X           int            `json:"x"`
	Y           int            `json:"y"`
	Orientation mb.Orientation `json:"orientation"`
}

func NewRespShip(p mb.Placement) RespShip {
	return RespShip{
		Length:      p.Ship.Length(),
		X:           p.X,
		Y:           p.Y,
		Orientation: p.Orientation,
	}
}

func NewRespShips(placements []mb.Placement) []RespShip {
	ships := make([]RespShip, 0, len(placements))
	for _, p := range placements {
		ships = append(ships, NewRespShip(p))
	}
	return ships
}

type RespPlaceShip struct {
	Ship         RespShip `json:"ship"`
	PendingShips []int    `json:"pending_ships"`
}

type RespPlaceRandom struct {
	Ships []RespShip `json:"ships"`
}

type RespTileChange struct {
	X     int          `json:"x"`
	Y     int          `json:"y"`
	State mb.TileState `json:"state"`
}

// RespAttack is used for both the player's and the computer's shots.
// Changes holds every tile that flipped because of the shot, so a sunk
// ship arrives with all of its cells.
type RespAttack struct {
	X                  int              `json:"x"`
	Y                  int              `json:"y"`
	Result             mb.ShotResult    `json:"result"`
	IsTurn             bool             `json:"is_turn"`
	RemainingFragments int              `json:"remaining_fragments"`
	Changes            []RespTileChange `json:"changes,omitempty"`
}

type RespEndGame struct {
	Winner             mb.Side `json:"winner"`
	RemainingFragments int     `json:"remaining_fragments"`
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
