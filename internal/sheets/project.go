package sheets

import (
	"bytes"
	"encoding/json"
)

// Record is one data row keyed by the header row. Keys keep header order.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord builds a record from a header and a data row. Missing trailing
// cells read as "". A repeated header keeps its first position and takes the
// value of its last column.
func NewRecord(header, row []string) Record {
	rec := Record{
		keys:   make([]string, 0, len(header)),
		values: make(map[string]string, len(header)),
	}
	for i, key := range header {
		value := ""
		if i < len(row) {
			value = row[i]
		}
		if _, seen := rec.values[key]; !seen {
			rec.keys = append(rec.keys, key)
		}
		rec.values[key] = value
	}
	return rec
}

// Keys returns the header keys in order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the value stored under key.
func (r Record) Get(key string) (string, bool) {
	value, ok := r.values[key]
	return value, ok
}

// Len reports the number of keys.
func (r Record) Len() int {
	return len(r.keys)
}

// MarshalJSON writes the record as an object with keys in header order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Project turns raw rows, header first, into one record per data row.
func Project(rows [][]string) []Record {
	if len(rows) == 0 {
		return []Record{}
	}
	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, NewRecord(header, row))
	}
	return records
}
