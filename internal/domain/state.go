package domain

type State string

const (
	StateInit        State = "INIT"
	StateExtracted   State = "EXTRACTED"
	StateTransformed State = "TRANSFORMED"
	StateLoaded      State = "LOADED"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

type Stage string

const (
	StageRates     Stage = "rates"
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
)
