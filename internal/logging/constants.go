package logging

// Field names shared by every component so that log lines can be filtered
// consistently.
const (
	FieldFile      = "file_path"
	FieldSession   = "session_id"
	FieldView      = "view"
	FieldTable     = "table"
	FieldFormat    = "format"
	FieldCount     = "count"
	FieldRows      = "rows"
	FieldColumns   = "columns"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldPath      = "json_path"
	FieldOutput    = "output_file"
	FieldFilters   = "filters"
)
