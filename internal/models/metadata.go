// Package models defines core data structures for vectors, metadata, passages, and search.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Reserved metadata keys. Every other key is carried in Metadata.Extra.
const (
	KeyTenant = "user_id"
	KeyText   = "text"
)

// Metadata is the typed envelope stored next to each vector.
// On the wire it is a flat JSON object: the reserved keys plus the extension map.
type Metadata struct {
	// Tenant scopes the vector to one tenant. Empty means untagged.
	Tenant string
	// Text is the free text used for lexical scoring and keyword search.
	Text string
	// Extra holds every non-reserved key as decoded from JSON.
	Extra map[string]any

	// submitted keeps reserved values whose decoded form lost information
	// (empty string, null, number, boolean) so they encode back unchanged.
	submitted map[string]submittedValue
}

type submittedValue struct {
	raw        json.RawMessage
	normalised string
}

// HasTenant reports whether the metadata carries a tenant attribute.
func (m Metadata) HasTenant() bool {
	return m.Tenant != ""
}

// Get returns the value stored under key, including the reserved keys.
func (m Metadata) Get(key string) (any, bool) {
	switch key {
	case KeyTenant, KeyText:
		field := m.reservedField(key)
		if raw, ok := m.submittedRaw(key, field); ok {
			var v any
			if err := json.Unmarshal(raw, &v); err == nil {
				return v, true
			}
		}
		return field, field != ""
	}
	v, ok := m.Extra[key]
	return v, ok
}

func (m Metadata) reservedField(key string) string {
	if key == KeyTenant {
		return m.Tenant
	}
	return m.Text
}

// submittedRaw returns the raw submitted value for a reserved key as long as
// the typed field still holds what was decoded from it.
func (m Metadata) submittedRaw(key, field string) (json.RawMessage, bool) {
	sv, ok := m.submitted[key]
	if !ok || sv.normalised != field {
		return nil, false
	}
	return sv.raw, true
}

// MarshalJSON flattens the envelope into a single object.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+2)
	for k, v := range m.Extra {
		out[k] = v
	}
	for _, key := range []string{KeyTenant, KeyText} {
		field := m.reservedField(key)
		if raw, ok := m.submittedRaw(key, field); ok {
			out[key] = raw
		} else if field != "" {
			out[key] = field
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits a flat object into reserved fields and Extra.
// user_id may be a string, number, or boolean (its string form is the tenant);
// text must be a string. A null reserved value leaves the field empty.
// Reserved values are written back by MarshalJSON exactly as submitted.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*m = Metadata{}
		return nil
	}
	var out Metadata
	for k, r := range raw {
		var v any
		if err := json.Unmarshal(r, &v); err != nil {
			return err
		}
		switch k {
		case KeyTenant:
			tenant, err := scalarString(v)
			if err != nil {
				return fmt.Errorf("metadata %s: %w", KeyTenant, err)
			}
			out.Tenant = tenant
			if s, ok := v.(string); !ok || s == "" {
				out.keep(k, r, tenant)
			}
		case KeyText:
			if v == nil {
				out.keep(k, r, "")
				continue
			}
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("metadata %s: must be a string, got %T", KeyText, v)
			}
			out.Text = s
			if s == "" {
				out.keep(k, r, "")
			}
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]any)
			}
			out.Extra[k] = v
		}
	}
	*m = out
	return nil
}

func (m *Metadata) keep(key string, raw json.RawMessage, normalised string) {
	if m.submitted == nil {
		m.submitted = make(map[string]submittedValue, 2)
	}
	m.submitted[key] = submittedValue{raw: append(json.RawMessage(nil), raw...), normalised: normalised}
}

func scalarString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("must be a scalar, got %T", v)
	}
}

// VectorEntry is a catalog record as exposed by lookups.
type VectorEntry struct {
	Ordinal  int      `json:"ordinal"`
	StableID string   `json:"vector_db_id"`
	Metadata Metadata `json:"metadata"`
}
