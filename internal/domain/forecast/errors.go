package forecast

import "errors"

// Sentinel errors for this package.
var (
	ErrShortSeries = errors.New("series too short to fit")
	ErrFitFailed   = errors.New("arima fit did not converge")
)
