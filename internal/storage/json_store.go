package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"unit-roster/internal/models"
)

// JSONStore keeps the snapshot in one JSON document.
// Writes go to a temporary file that is synced and renamed over the target.
type JSONStore struct {
	path   string
	logger *logrus.Logger
}

func NewJSONStore(path string, logger *logrus.Logger) (*JSONStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("state file path is required")
	}
	return &JSONStore{path: path, logger: loggerOrDefault(logger)}, nil
}

func (s *JSONStore) Path() string {
	return s.path
}

func (s *JSONStore) Load(ctx context.Context) (*models.AppState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.WithField("path", s.path).Info("No state file yet, starting empty")
		return models.NewAppState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	state, err := decodeDocument(data)
	if err != nil {
		return nil, &models.CorruptStateError{Source: s.path, Err: err}
	}
	return finishLoad(state, s.path, s.logger)
}

func (s *JSONStore) Save(ctx context.Context, state *models.AppState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeDocument(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	// The document is already replaced here, so a directory sync failure is only logged.
	if err := syncDir(filepath.Dir(s.path)); err != nil {
		s.logger.WithError(err).WithField("path", s.path).Warn("State file replaced but directory sync failed")
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

var documentKeys = []string{"personnel", "leaves", "sequence"}

func encodeDocument(state *models.AppState) ([]byte, error) {
	doc := state.Clone()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeDocument(data []byte) (*models.AppState, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var top map[string]json.RawMessage
	if err := dec.Decode(&top); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("trailing content after document")
	}
	if top == nil {
		return nil, errors.New("document must be a JSON object")
	}
	for key := range top {
		if !slices.Contains(documentKeys, key) {
			return nil, fmt.Errorf("unknown top-level key %q", key)
		}
	}

	state := models.NewAppState()

	if raw, ok := top["personnel"]; ok {
		items, err := decodeArray(raw, "personnel")
		if err != nil {
			return nil, err
		}
		for i, item := range items {
			var p models.Personnel
			if err := decodeObject(item, models.PersonnelFields, &p); err != nil {
				return nil, fmt.Errorf("personnel[%d]: %w", i, err)
			}
			state.Personnel = append(state.Personnel, p)
		}
	}

	if raw, ok := top["leaves"]; ok {
		items, err := decodeArray(raw, "leaves")
		if err != nil {
			return nil, err
		}
		for i, item := range items {
			var l models.LeaveRecord
			if err := decodeObject(item, models.LeaveRecordFields, &l); err != nil {
				return nil, fmt.Errorf("leaves[%d]: %w", i, err)
			}
			state.Leaves = append(state.Leaves, l)
		}
	}

	if raw, ok := top["sequence"]; ok {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&state.Sequence); err != nil {
			return nil, fmt.Errorf("sequence: %w", err)
		}
	}

	return state, nil
}

func decodeArray(raw json.RawMessage, name string) ([]json.RawMessage, error) {
	if isNull(raw) {
		return nil, fmt.Errorf("%s must be an array, got null", name)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return items, nil
}

// decodeObject requires raw to carry exactly the given keys, none of them null.
func decodeObject(raw json.RawMessage, fields []string, dst any) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return err
	}
	if obj == nil {
		return errors.New("expected an object, got null")
	}
	for _, f := range fields {
		v, ok := obj[f]
		if !ok {
			return fmt.Errorf("missing field %q", f)
		}
		if isNull(v) {
			return fmt.Errorf("field %q is null", f)
		}
	}
	for key := range obj {
		if !slices.Contains(fields, key) {
			return fmt.Errorf("unknown field %q", key)
		}
	}
	return json.Unmarshal(raw, dst)
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}

var syncDir = func(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
