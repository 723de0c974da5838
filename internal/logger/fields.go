package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields, propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldUserID is the owning user's ID
	FieldUserID = "user_id"

	// FieldModelName is the human-readable training model name
	FieldModelName = "model_name"

	// FieldTrainingID is the external provider's training job ID
	FieldTrainingID = "training_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"
)

// Standard metric fields, attached at the log-entry level for aggregation.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
