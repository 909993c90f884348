package datatable

// InferKind returns the value kind of col over rows.
//
// A declared Kind always wins. Otherwise:
//   - if any row holds a date value the column is a date column,
//   - else the first non-empty value decides between number and text,
//   - a column with no non-empty value at all is text.
func InferKind[T any](col Column[T], rows []T) Kind {
	if col.Kind != KindAuto {
		return col.Kind
	}

	var sample any
	sampled := false
	for _, row := range rows {
		v := col.Value(row)
		if _, ok := dateOf(v); ok {
			return KindDate
		}
		if !sampled && !IsEmpty(v) {
			sample = v
			sampled = true
		}
	}

	if !sampled {
		return KindText
	}
	if _, ok := Number(sample); ok {
		return KindNumber
	}
	return KindText
}
