package log

import (
	"time"

	"timetrack/internal/core"
)

// Field names shared by every component.
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldQuery        = "query"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldUserAgent    = "user_agent"
	FieldSuccess      = "success"
	FieldError        = "error"
	FieldErrorType    = "error_type"
	FieldOperation    = "operation"
	FieldUserID       = "user_id"
	FieldCategory     = "category"
	FieldMinutes      = "duration_minutes"
	FieldOccurredAt   = "occurred_at"
	FieldEntryRef     = "entry_ref"
	FieldReportStart  = "report_start"
	FieldReportEnd    = "report_end"
	FieldTotalMinutes = "total_minutes"
	FieldStage        = "stage"
)

const (
	ComponentApp          = "app"
	ComponentHTTP         = "http"
	ComponentBot          = "bot"
	ComponentConversation = "conversation"
	ComponentEntry        = "entry"
	ComponentReport       = "report"
	ComponentStorage      = "storage"
	ComponentAMQP         = "amqp"
	ComponentWorker       = "worker"
	ComponentSheets       = "sheets"
	ComponentChart        = "chart"
	ComponentCache        = "cache"
	ComponentSecurity     = "security"
	ComponentRateLimit    = "rate_limit"
	ComponentTrace        = "trace"
	ComponentBackend      = "backend"
	ComponentCLI          = "cli"
)

const (
	OpCreate   = "create"
	OpRead     = "read"
	OpAppend   = "append"
	OpSync     = "sync"
	OpParse    = "parse"
	OpReport   = "report"
	OpRender   = "render"
	OpPublish  = "publish"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeTimeout       = "timeout_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeRender        = "render_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields is a builder for structured log attributes.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError records err and leaves the fields untouched when err is nil.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithUser(id core.UserID) LogFields {
	f[FieldUserID] = int64(id)
	return f
}

// WithEntry adds the fields of a time entry.
func (f LogFields) WithEntry(e core.TimeEntry) LogFields {
	f[FieldUserID] = int64(e.UserID)
	f[FieldCategory] = string(e.Category)
	f[FieldMinutes] = e.DurationMinutes
	f[FieldOccurredAt] = e.OccurredAt.Format(time.RFC3339)
	return f
}

func (f LogFields) WithRange(start, end core.Date) LogFields {
	f[FieldReportStart] = start.ISO()
	f[FieldReportEnd] = end.ISO()
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts the fields to slog key/value pairs.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
