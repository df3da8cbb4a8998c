package exchange

import "errors"

var ErrInvalidRate = errors.New("exchange rate must be greater than zero")
