package recommend

import "errors"

// ErrRecommendationFailed wraps every adapter failure: transport, status,
// decoding and validation alike. Callers treat it as a single outcome.
var ErrRecommendationFailed = errors.New("workout recommendation failed")
