// Package credential models bearer credential pools and the providers that
// load them.
//
// This file implements decoding of pool documents shared by the file and
// Redis providers.
//
// POOL FORMAT:
// A pool file is a JSON array of objects. Each object needs a string "token"
// field; "uid" (string or number) and "label" are optional metadata and any
// other field is ignored:
//
//	[{"token": "eyJ...", "uid": 1234567, "label": "batch-7"}]
//
// Validation is all-or-nothing: one bad element rejects the whole document,
// and the provider then reports an empty pool.
package credential

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodePool parses a JSON array of credential objects. Every element must be
// an object with a string "token" field; any element that is not rejects the
// whole document, matching how pool files have always been validated.
func decodePool(data []byte) ([]Credential, error) {
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid pool document: %w", err)
	}

	pool := make([]Credential, 0, len(entries))
	for i, entry := range entries {
		cred, err := decodeEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		pool = append(pool, cred)
	}
	return pool, nil
}

// decodeEntry converts one object into a Credential. The "uid" field is
// accepted as either a JSON string or a number.
func decodeEntry(entry map[string]json.RawMessage) (Credential, error) {
	rawToken, ok := entry["token"]
	if !ok {
		return Credential{}, fmt.Errorf("missing token field")
	}

	var cred Credential
	if err := json.Unmarshal(rawToken, &cred.Token); err != nil {
		return Credential{}, fmt.Errorf("token must be a string: %w", err)
	}

	if rawUID, ok := entry["uid"]; ok {
		uid := strings.TrimSpace(string(rawUID))
		if uid != "null" {
			cred.AccountID = strings.Trim(uid, `"`)
		}
	}
	if rawLabel, ok := entry["label"]; ok {
		// Non-string labels are ignored
		_ = json.Unmarshal(rawLabel, &cred.Label)
	}
	return cred, nil
}

// decodeMember parses one Redis list member, which is either a JSON object
// in the pool file format or a bare token string. Anything not starting with
// "{" is taken as a bare token.
func decodeMember(member string) (Credential, error) {
	trimmed := strings.TrimSpace(member)
	if !strings.HasPrefix(trimmed, "{") {
		return Credential{Token: trimmed}, nil
	}

	var entry map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &entry); err != nil {
		return Credential{}, fmt.Errorf("invalid member: %w", err)
	}
	return decodeEntry(entry)
}
