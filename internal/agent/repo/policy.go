package repo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/hr-assistant/server/internal/agent/model"
	logx "github.com/hr-assistant/server/pkg/logger"
)

// LoadPolicyBook reads a JSON object of policy key to text. A missing or
// unreadable file yields an empty book; the service keeps running.
func LoadPolicyBook(path string) *model.PolicyBook {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logx.Warn().Str("path", path).Msg("policy file not found; policy lookups will return no match")
		} else {
			logx.Error().Err(err).Str("path", path).Msg("failed to open policy file")
		}
		return model.NewPolicyBook()
	}
	defer f.Close()

	book, err := DecodePolicyBook(f)
	if err != nil {
		logx.Error().Err(err).Str("path", path).Msg("failed to load policy file")
		return model.NewPolicyBook()
	}
	logx.Info().Str("path", path).Int("policies", book.Len()).Strs("keys", book.Keys()).Msg("policies loaded")
	return book
}

// DecodePolicyBook decodes a JSON object keeping the key order of the document.
// String values are used verbatim; other values keep their JSON text.
func DecodePolicyBook(r io.Reader) (*model.PolicyBook, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read policy document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("policy document must be a JSON object")
	}

	var entries []model.PolicyEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read policy key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected policy key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("read policy %q: %w", key, err)
		}
		entries = append(entries, model.PolicyEntry{Key: key, Text: policyText(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read policy document end: %w", err)
	}
	return model.NewPolicyBook(entries...), nil
}

func policyText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}
