package client

import (
	"errors"

	"github.com/dmitrijs2005/gophshare/internal/common"
)

var (
	ErrUnavailable           = common.ErrorUnavailable
	ErrUnauthorized          = common.ErrorUnauthorized
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)
