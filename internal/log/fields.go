package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldErrorType = "error_type"
	FieldYear      = "year"
	FieldMonth     = "month"
	FieldRoadID    = "road_id"
	FieldTripID    = "trip_id"
	FieldEntryID   = "entry_id"
	FieldCategory  = "vehicle_category"
	FieldQuantity  = "quantity"
	FieldAmount    = "amount"
	FieldPriced    = "priced"
	FieldBackend   = "backend"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentCLI      = "cli"
	ComponentBackend  = "backend"
	ComponentRecorder = "recorder"
	ComponentReports  = "reports"
	ComponentSettings = "settings"
	ComponentReset    = "reset"
)

// Operations defines standard operation names
const (
	OpUpdate   = "update"
	OpRecord   = "record"
	OpQuickAdd = "quick_add"
	OpReport   = "report"
	OpReset    = "reset"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeDatabase = "database_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field; nil is ignored
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithErrorType adds the error category; empty is ignored
func (f LogFields) WithErrorType(errorType string) LogFields {
	if errorType != "" {
		f[FieldErrorType] = errorType
	}
	return f
}

// WithEntry adds the fields describing a recorded toll entry
func (f LogFields) WithEntry(entryID, tripID, roadID, category string, quantity int, amount string) LogFields {
	f[FieldEntryID] = entryID
	f[FieldTripID] = tripID
	f[FieldRoadID] = roadID
	f[FieldCategory] = category
	f[FieldQuantity] = quantity
	f[FieldAmount] = amount
	return f
}

// WithPeriod adds year and month fields
func (f LogFields) WithPeriod(year, month int) LogFields {
	f[FieldYear] = year
	f[FieldMonth] = month
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
