package api

import (
	"encoding/json"
	"log/slog"

	cerr "github.com/saeidalz13/seabattle/internal/error"
	mb "github.com/saeidalz13/seabattle/models/battleship"
	mc "github.com/saeidalz13/seabattle/models/connection"
)

// Every incoming valid request has this structure. Handlers never fail
// silently: a failed request comes back with the same code and an error.
type Request struct {
	payload []byte
}

func NewRequest(payload ...[]byte) Request {
	var req Request
	if len(payload) != 0 {
		req.payload = payload[0]
	}
	return req
}

// tileChanges collects the tile notifications of both boards between two
// responses.
type tileChanges struct {
	changes []mc.RespTileChange
}

func (tc *tileChanges) record(x, y int, state mb.TileState) {
	tc.changes = append(tc.changes, mc.RespTileChange{X: x, Y: y, State: state})
}

func (tc *tileChanges) flush() []mc.RespTileChange {
	changes := tc.changes
	tc.changes = nil
	return changes
}

func (r Request) HandleCreateGame(gm mb.GameManager) (*mb.Match, mc.Message[mc.RespCreateGame]) {
	resp := mc.NewMessage[mc.RespCreateGame](mc.CodeCreateGame)

	var req mc.Message[mc.ReqCreateGame]
	if err := json.Unmarshal(r.payload, &req); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrCreateFailed)
		return nil, resp
	}

	match, err := gm.CreateMatch(req.Payload.BoardSize)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrCreateFailed)
		return nil, resp
	}

	resp.AddPayload(mc.RespCreateGame{
		GameUuid:  match.Uuid(),
		BoardSize: match.Size(),
		Fleet:     match.Fleet(),
	})
	return match, resp
}

func (r Request) HandlePlaceShip(match *mb.Match) mc.Message[mc.RespPlaceShip] {
	resp := mc.NewMessage[mc.RespPlaceShip](mc.CodePlaceShip)
	if match == nil {
		resp.AddError(cerr.ErrGameNotExists.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}

	var req mc.Message[mc.ReqPlaceShip]
	if err := json.Unmarshal(r.payload, &req); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}

	p := req.Payload
	placement, err := match.PlaceShip(p.Length, p.X, p.Y, p.Orientation)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}

	resp.AddPayload(mc.RespPlaceShip{
		Ship:         mc.NewRespShip(placement),
		PendingShips: match.PendingShips(),
	})
	return resp
}

func (r Request) HandlePlaceRandom(match *mb.Match) mc.Message[mc.RespPlaceRandom] {
	resp := mc.NewMessage[mc.RespPlaceRandom](mc.CodePlaceRandom)
	if match == nil {
		resp.AddError(cerr.ErrGameNotExists.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}

	placements, err := match.PlaceShipsRandomly()
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}

	resp.AddPayload(mc.RespPlaceRandom{Ships: mc.NewRespShips(placements)})
	return resp
}

func (r Request) HandleStartGame(match *mb.Match) mc.Message[mc.NoPayload] {
	resp := mc.NewMessage[mc.NoPayload](mc.CodeStartGame)
	if match == nil {
		resp.AddError(cerr.ErrGameNotExists.Error(), cerr.ConstErrStartFailed)
		return resp
	}

	if err := match.Start(); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrStartFailed)
	}
	return resp
}

// HandleAttack fires the player's shot at the computer's board.
func (r Request) HandleAttack(match *mb.Match, tc *tileChanges) mc.Message[mc.RespAttack] {
	resp := mc.NewMessage[mc.RespAttack](mc.CodeAttack)
	if match == nil {
		resp.AddError(cerr.ErrGameNotExists.Error(), cerr.ConstErrAttackFailed)
		return resp
	}

	var req mc.Message[mc.ReqAttack]
	if err := json.Unmarshal(r.payload, &req); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrAttackFailed)
		return resp
	}

	x, y := req.Payload.X, req.Payload.Y
	result, err := match.PlayerFire(x, y)
	if err != nil {
		tc.flush()
		resp.AddError(err.Error(), cerr.ConstErrAttackFailed)
		return resp
	}

	resp.AddPayload(mc.RespAttack{
		X:                  x,
		Y:                  y,
		Result:             result,
		IsTurn:             match.Turn() == mb.SidePlayer,
		RemainingFragments: match.ComputerRemainingFragments(),
		Changes:            tc.flush(),
	})
	return resp
}

// HandleComputerAttack lets the computer take one shot. An error here is
// never the client's fault.
func HandleComputerAttack(match *mb.Match, tc *tileChanges) (mc.Message[mc.RespAttack], error) {
	resp := mc.NewMessage[mc.RespAttack](mc.CodeComputerAttack)

	shot, err := match.ComputerShot()
	if err != nil {
		tc.flush()
		slog.Error("computer shot failed", "match", match.Uuid(), "err", err)
		return resp, err
	}

	resp.AddPayload(mc.RespAttack{
		X:                  shot.X,
		Y:                  shot.Y,
		Result:             shot.Result,
		IsTurn:             match.Turn() == mb.SidePlayer,
		RemainingFragments: match.PlayerRemainingFragments(),
		Changes:            tc.flush(),
	})
	return resp, nil
}

func NewEndGameMessage(match *mb.Match) mc.Message[mc.RespEndGame] {
	resp := mc.NewMessage[mc.RespEndGame](mc.CodeEndGame)
	resp.AddPayload(mc.RespEndGame{
		Winner:             match.Winner(),
		RemainingFragments: match.WinnerRemainingFragments(),
	})
	return resp
}
