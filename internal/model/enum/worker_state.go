package enum

// WorkerState tracks where a worker is in its batch loop.
type WorkerState uint8

const (
	_worker_state_beg WorkerState = iota
	WorkerIdle
	WorkerFetching
	WorkerCleaning
	WorkerWriting
	WorkerDone
	WorkerFaulted
	_worker_state_end
)

func (s WorkerState) IsAvailable() bool {
	return s > _worker_state_beg && s < _worker_state_end
}

// IsTerminal reports whether the worker has stopped processing batches.
func (s WorkerState) IsTerminal() bool {
	return s == WorkerDone || s == WorkerFaulted
}

func (s WorkerState) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerFetching:
		return "fetching"
	case WorkerCleaning:
		return "cleaning"
	case WorkerWriting:
		return "writing"
	case WorkerDone:
		return "done"
	case WorkerFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}
