package mapping

// Row is one source row addressed by canonical field instead of header text.
type Row struct {
	values map[Field]string
}

// NewRow builds a Row from explicit values.
func NewRow(values map[Field]string) Row {
	return Row{values: values}
}

// Get returns the trimmed cell for the field, empty when absent.
func (r Row) Get(f Field) string {
	return r.values[f]
}

// Optional returns nil when the field is unmapped or blank.
func (r Row) Optional(f Field) *string {
	v, ok := r.values[f]
	if !ok || v == "" {
		return nil
	}
	return &v
}
