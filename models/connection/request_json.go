package connection

import (
	mb "github.com/saeidalz13/seabattle/models/battleship"
)

type ReqCreateGame struct {
	BoardSize int `json:"board_size"`
}

type ReqPlaceShip struct {
	Length      int            `json:"length"`
	X           int            `json:"x"`
	Y           int            `json:"y"`
	Orientation mb.Orientation `json:"orientation"`
}

type ReqAttack struct {
	X int `json:"x"`
	Y int `json:"y"`
}
