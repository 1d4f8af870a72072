package graph

type required struct{}

// Required marks a field as mandatory in a ValidateFields defaults map.
// Records missing a Required field are dropped entirely.
var Required = required{}

// ValidateFields filters a list of raw records against a defaults map
// before they are merged into the graph. For each record:
//   - if any field whose default is Required is missing, the record is dropped
//   - missing optional fields get the default value substituted
//   - fields not present in the defaults map do not survive into the output
//
// The last rule makes this double as a field allowlist, so arbitrary
// remote payload keys never reach a write.
func ValidateFields(records []map[string]any, defaults map[string]any) []map[string]any {
	validated := make([]map[string]any, 0, len(records))

	for _, record := range records {
		out := make(map[string]any, len(defaults))
		valid := true
		for field, def := range defaults {
			value, ok := record[field]
			if ok && value != nil {
				out[field] = value
				continue
			}
			if _, mandatory := def.(required); mandatory {
				valid = false
				break
			}
			out[field] = def
		}
		if valid {
			validated = append(validated, out)
		}
	}

	return validated
}
