package system

import "errors"

var errNotAdjacent = errors.New("next step is not adjacent")
