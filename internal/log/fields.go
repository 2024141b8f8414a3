package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldAction     = "action"
	FieldUserID     = "userid"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldCategory   = "category"
	FieldSum        = "sum"
	FieldLimit      = "limit"
	FieldCount      = "count"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentReport   = "report"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentSink     = "sink"
	ComponentPipeline = "pipeline"
	ComponentActivity = "activity"
)
