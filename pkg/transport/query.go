package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// encodeQuery turns request data into query parameters.
// Slices become repeated keys and nested objects use bracket notation
// (metadata[order_id]=...). Any other value is encoded through its JSON form.
func encodeQuery(data any) (url.Values, error) {
	values := url.Values{}

	switch v := data.(type) {
	case nil:
		return values, nil
	case url.Values:
		for k, vs := range v {
			values[k] = append([]string(nil), vs...)
		}
		return values, nil
	case map[string]string:
		for k, s := range v {
			values.Set(k, s)
		}
		return values, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("encode query: data must be an object: %w", err)
	}

	for k, item := range obj {
		flatten(values, k, item)
	}
	return values, nil
}

func flatten(values url.Values, key string, v any) {
	switch t := v.(type) {
	case nil:
	case string:
		values.Add(key, t)
	case json.Number:
		values.Add(key, t.String())
	case bool:
		values.Add(key, strconv.FormatBool(t))
	case []any:
		for _, item := range t {
			flatten(values, key, item)
		}
	case map[string]any:
		for k, item := range t {
			flatten(values, key+"["+k+"]", item)
		}
	default:
		values.Add(key, fmt.Sprint(t))
	}
}
