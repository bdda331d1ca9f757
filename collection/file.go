package collection

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/schemadoc/value"
)

// Save writes every non-temporary entry to path as an indented JSON array.
func (c *Collection) Save(path string) error {
	items := value.Array{}
	for _, e := range c.entries {
		if !e.Temporary {
			items = append(items, e.Get())
		}
	}
	data, err := value.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("collection: encode: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("collection: save: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("collection: save: %w", err)
	}
	c.log.Info("collection saved", "path", path, "entries", len(items))
	return nil
}

// LoadFile replaces all entries with the array stored at path. Files ending
// in .yaml or .yml are read as YAML, anything else as JSON.
func (c *Collection) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("collection: load: %w", err)
	}
	doc, err := decodeFile(path, data)
	if err != nil {
		return fmt.Errorf("collection: load %s: %w", path, err)
	}
	items, ok := doc.(value.Array)
	if !ok {
		return fmt.Errorf("collection: load %s: expected array, got %s", path, value.TypeName(doc))
	}
	if err := c.Load(items); err != nil {
		return err
	}
	c.log.Info("collection loaded from file", "path", path, "entries", len(items))
	return nil
}

// RemoveFile deletes the file at path and reports whether it existed.
func (c *Collection) RemoveFile(path string) (bool, error) {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("collection: remove: %w", err)
	}
	return true, nil
}

func decodeFile(path string, data []byte) (value.Value, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return value.ParseYAML(data)
	default:
		return value.ParseJSON(data)
	}
}
