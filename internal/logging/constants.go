package logging

// Field names shared by every component so that log lines can be filtered
// per tenant, payment or import batch.
const (
	FieldTenant     = "tenant_id"
	FieldInvoice    = "invoice_id"
	FieldPayment    = "payment_id"
	FieldBatch      = "import_batch"
	FieldRow        = "row"
	FieldLine       = "line"
	FieldConfidence = "confidence"
	FieldStatus     = "status"
	FieldFormat     = "format"
	FieldParser     = "parser"
	FieldFile       = "file_path"
	FieldCount      = "count"
	FieldReference  = "reference"
	FieldAmount     = "amount_minor"
	FieldReason     = "reason"
	FieldOperation  = "operation"
	FieldError      = "error"
)
