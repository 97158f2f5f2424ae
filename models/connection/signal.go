package connection

const (
	CodeSessionID uint8 = iota
	CodeCreateGame
	CodePlaceShip
	CodePlaceRandom
	CodeStartGame
	CodeAttack

	// Sent by the server for every shot the computer fires
	CodeComputerAttack
	CodeEndGame
	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent
)

type Signal struct {
	Code uint8 `json:"code"`
}

func NewSignal(code uint8) Signal {
	return Signal{Code: code}
}
