package logger

// Standard field keys for structured logging. Use these keys consistently
// across log statements so that logs can be aggregated and queried.
const (
	KeyContext  = "context"  // context name scoping loaded sample data
	KeyTag      = "tag"      // load tag disambiguating duplicate samples
	KeySamples  = "samples"  // number of samples involved in an operation
	KeyFeatures = "features" // number of features involved in an operation
	KeyDuration = "duration_ms"
	KeyError    = "error"

	// HTTP request fields, used by the API request logger.
	KeyRequestID = "request_id"
	KeyMethod    = "method"
	KeyPath      = "path"
	KeyStatus    = "status"
	KeyClientIP  = "client_ip"
)
