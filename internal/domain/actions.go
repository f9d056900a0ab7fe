package domain

// Action is a player move submitted for one turn: either playing tiles or
// drawing from the pool.
type Action interface {
	isAction()
}

// PlayTilesAction places and/or rearranges tiles. Melds is the complete
// proposed end-state of the board, not a diff, so whole-board consistency is
// checked in one pass.
type PlayTilesAction struct {
	Melds []Meld `json:"melds"`
}

func (PlayTilesAction) isAction() {}

// DrawAction draws one tile from the pool and ends the turn.
type DrawAction struct{}

func (DrawAction) isAction() {}
