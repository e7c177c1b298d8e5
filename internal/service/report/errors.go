package report

import "errors"

var ErrForbidden = errors.New("not allowed to view reports")
