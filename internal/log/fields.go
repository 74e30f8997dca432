package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldReceiptID   = "receipt_id"
	FieldAmountCents = "amount_cents"
	FieldCursor      = "cursor"
	FieldCategory    = "category"
	FieldMerchant    = "merchant"
	FieldStatus      = "status"
	FieldReceipts    = "receipts"
	FieldPending     = "pending"
	FieldSheetsRef   = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentEngine    = "engine"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentRefresher = "refresher"
	ComponentExporter  = "exporter"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpUpsert   = "upsert"
	OpDelete   = "delete"
	OpSnapshot = "snapshot"
	OpRefresh  = "refresh"
	OpExport   = "export"
	OpRender   = "render"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
