package battleship

type Side uint8

const (
	SideNone Side = iota
	SidePlayer
	SideComputer
)

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideComputer:
		return "computer"
	default:
		return "none"
	}
}

func (s Side) Other() Side {
	switch s {
	case SidePlayer:
		return SideComputer
	case SideComputer:
		return SidePlayer
	default:
		return SideNone
	}
}

// fleetSide is one side's board through both stages of a match. Its tile
// change hook is re-applied when the setup board becomes the active one.
type fleetSide struct {
	setup        *PlacementBoard
	active       *ActiveBoard
	onTileChange TileChangeFunc
}

func (fs *fleetSide) setTileChangeFunc(fn TileChangeFunc) {
	fs.onTileChange = fn
	if fs.active != nil {
		fs.active.SetTileChangeFunc(fn)
		return
	}
	fs.setup.SetTileChangeFunc(fn)
}

func (fs *fleetSide) finalize() error {
	active, err := fs.setup.Finalize()
	if err != nil {
		return err
	}
	fs.active = active
	fs.setup = nil
	fs.active.SetTileChangeFunc(fs.onTileChange)
	return nil
}

func (fs *fleetSide) remainingFragments() int {
	if fs.active == nil {
		return 0
	}
	return fs.active.RemainingFragments()
}
