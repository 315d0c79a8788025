package wire

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// NFC returns s in Unicode normalization form C.
func NFC(s string) string {
	return norm.NFC.String(s)
}

// Normalize returns a copy of v with every string and record key in NFC.
// Two keys of one record that normalize to the same text are an error, since
// one of them would be lost.
func Normalize(v Value) (Value, error) {
	switch val := v.(type) {
	case String:
		return String(NFC(string(val))), nil
	case List:
		out := make(List, len(val))
		for i, elem := range val {
			n, err := Normalize(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case Record:
		return NormalizeRecord(val)
	default:
		return v, nil
	}
}

// NormalizeRecord is Normalize for records.
func NormalizeRecord(r Record) (Record, error) {
	out := make(Record, len(r))
	for _, k := range r.Keys() {
		nk := NFC(k)
		if _, dup := out[nk]; dup {
			return nil, fmt.Errorf("keys %q collide after NFC normalization", nk)
		}
		n, err := Normalize(r[k])
		if err != nil {
			return nil, fmt.Errorf("[%q]: %w", nk, err)
		}
		out[nk] = n
	}
	return out, nil
}
