package rowset

// Merge joins other into rs on onField: each row of other is merged into the
// first row of rs whose onField value is equal. Fields present on both sides
// are replaced only when overwrite is true. Fields new to rs become columns.
// Rows of other without a match are ignored.
func (rs *RowSet) Merge(other *RowSet, onField string, overwrite bool) {
	for _, src := range other.rows {
		want, err := src.Value(onField)
		if err != nil {
			continue
		}
		for _, dst := range rs.rows {
			have, err := dst.Value(onField)
			if err != nil || !have.Equal(want) {
				continue
			}
			dst.Merge(src, overwrite)
			rs.syncColumns(dst)
			break
		}
	}
}
