package report

import "errors"

var ErrInvalidPeriod = errors.New("report period end must be after its start")
