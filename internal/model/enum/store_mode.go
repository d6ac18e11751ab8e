package enum

// StoreMode reports whether persistence calls reach a real database.
type StoreMode uint8

const (
	_store_mode_beg StoreMode = iota
	StoreModePostgres
	StoreModeFallback
	_store_mode_end
)

func (m StoreMode) IsAvailable() bool {
	return m > _store_mode_beg && m < _store_mode_end
}

func (m StoreMode) String() string {
	switch m {
	case StoreModePostgres:
		return "postgres"
	case StoreModeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}
