package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldDurationHuman = "duration_human"
	FieldUserAgent     = "user_agent"
	FieldReferer       = "referer"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldMonth         = "month"
	FieldEntryID       = "entry_id"
	FieldEmployee      = "employee"
	FieldDay           = "day"
	FieldSchool        = "school"
	FieldClass         = "class"
	FieldBooks         = "books"
	FieldSheetsRef     = "sheets_ref"
	FieldExportFile    = "export_file"
)

// Components names the two processes that set up a default logger.
const (
	ComponentApp    = "app"
	ComponentWorker = "worker"
)
