package converter

import (
	"fmt"

	"github.com/nconklindev/jsonxl/internal/types"
)

// KeySeparator joins nested object keys into a column name.
const KeySeparator = "."

// Flatten turns a decoded JSON value into a Dataset. An array root yields one
// record per element and every element must be an object; an object root
// yields a single record. Nested objects are flattened into dotted key paths.
// Nested arrays are not expanded into rows: the whole array is stored as
// compact JSON text in one cell.
func Flatten(v any) (*types.Dataset, error) {
	var objects []Object

	switch root := v.(type) {
	case Object:
		objects = []Object{root}
	case []any:
		for i, el := range root {
			obj, ok := el.(Object)
			if !ok {
				return nil, newError(KindTransform, "flatten", fmt.Errorf("element %d is a %s, expected an object", i, typeName(el)))
			}
			objects = append(objects, obj)
		}
	default:
		return nil, newError(KindTransform, "flatten", fmt.Errorf("root is a %s, expected an object or an array of objects", typeName(v)))
	}

	ds := &types.Dataset{}
	seen := make(map[string]bool)

	for _, obj := range objects {
		record := make(map[string]any)
		if err := flattenInto(record, "", obj, func(col string) {
			if !seen[col] {
				seen[col] = true
				ds.Columns = append(ds.Columns, col)
			}
		}); err != nil {
			return nil, err
		}
		ds.Records = append(ds.Records, record)
	}

	if len(ds.Columns) == 0 || len(ds.Records) == 0 {
		return nil, newError(KindTransform, "flatten", ErrEmptyDataset)
	}

	return ds, nil
}

func flattenInto(record map[string]any, prefix string, obj Object, addColumn func(string)) error {
	for _, m := range obj {
		key := m.Key
		if prefix != "" {
			key = prefix + KeySeparator + m.Key
		}

		switch val := m.Value.(type) {
		case Object:
			if len(val) == 0 {
				addColumn(key)
				record[key] = nil
				continue
			}
			if err := flattenInto(record, key, val, addColumn); err != nil {
				return err
			}
		case []any:
			text, err := marshalCompact(val)
			if err != nil {
				return newError(KindTransform, "flatten", fmt.Errorf("encode %s: %w", key, err))
			}
			addColumn(key)
			record[key] = string(text)
		default:
			addColumn(key)
			record[key] = val
		}
	}
	return nil
}
