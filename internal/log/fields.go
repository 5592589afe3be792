package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldAttempt    = "attempt"
	FieldStage      = "stage"
	FieldTxCount    = "tx_count"
	FieldSpentCents = "spent_cents"
	FieldNetCents   = "net_cents"
	FieldFallback   = "fallback"
	FieldQueueDepth = "queue_depth"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentSummary   = "summary"
	ComponentExpense   = "expense"
	ComponentStorage   = "storage"
	ComponentGenerator = "generator"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentTrigger   = "trigger"
)
