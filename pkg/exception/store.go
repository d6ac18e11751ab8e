package exception

import "github.com/yanun0323/errors"

var (
	ErrStoreUnavailable = errors.New("store: unavailable, running in fallback mode")
	ErrStoreNoRows      = errors.New("store: no rows")
)
