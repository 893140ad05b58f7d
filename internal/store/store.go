package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/plumber-cd/ez-desk/internal/domain"
	"sigs.k8s.io/yaml"
)

const (
	DataDirName      = ".ez-desk"
	MarkdownFileName = "EZ-DESK.md"
	XLSXFileName     = "EZ-DESK.xlsx"
)

// Load reads all YAML files from the data directory and returns a populated
// Book. Missing kind directories are created.
func Load(dir string) (*domain.Book, error) {
	book := domain.NewBook()
	dataDir := filepath.Join(dir, DataDirName)

	for _, kind := range domain.Kinds() {
		fullPath := filepath.Join(dataDir, string(kind))
		files, err := os.ReadDir(fullPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read %s directory: %w", fullPath, err)
			}
			if err := os.MkdirAll(fullPath, 0755); err != nil {
				return nil, fmt.Errorf("create %s directory: %w", fullPath, err)
			}
			continue
		}
		for _, f := range files {
			if f.IsDir() || filepath.Ext(f.Name()) != ".yaml" {
				continue
			}
			bytes, err := os.ReadFile(filepath.Join(fullPath, f.Name()))
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", f.Name(), err)
			}
			record := domain.NewRecord(kind)
			if err := yaml.Unmarshal(bytes, record); err != nil {
				return nil, fmt.Errorf("unmarshal %s/%s: %w", kind, f.Name(), err)
			}
			if record.RawID() == "" {
				record.SetID(strings.TrimSuffix(f.Name(), ".yaml"))
			}
			if err := record.Validate(); err != nil {
				return nil, fmt.Errorf("validate %s/%s: %w", kind, record.RawID(), err)
			}
			book.Put(record)
		}
	}

	return book, nil
}

// Save writes all records to YAML files using an atomic rename.
func Save(dir string, book *domain.Book) error {
	dataDir := filepath.Join(dir, DataDirName)
	dataTmpDir := dataDir + ".tmp"
	dataOldDir := dataDir + ".old"

	if err := os.RemoveAll(dataTmpDir); err != nil {
		return fmt.Errorf("remove tmp dir: %w", err)
	}
	for _, kind := range domain.Kinds() {
		kindDir := filepath.Join(dataTmpDir, string(kind))
		if err := os.MkdirAll(kindDir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", kindDir, err)
		}
		for _, record := range book.List(kind) {
			name := safeFileNameSegment(record.RawID()) + ".yaml"
			if err := writeYAML(filepath.Join(kindDir, name), record); err != nil {
				return err
			}
		}
	}

	if err := os.RemoveAll(dataOldDir); err != nil {
		return fmt.Errorf("remove old dir: %w", err)
	}
	if _, err := os.Stat(dataDir); err == nil {
		if err := os.Rename(dataDir, dataOldDir); err != nil {
			return fmt.Errorf("rename %s to %s: %w", dataDir, dataOldDir, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", dataDir, err)
	}
	if err := os.Rename(dataTmpDir, dataDir); err != nil {
		// best-effort rollback
		if _, rollbackErr := os.Stat(dataOldDir); rollbackErr == nil {
			_ = os.Rename(dataOldDir, dataDir)
		}
		return fmt.Errorf("rename %s to %s: %w", dataTmpDir, dataDir, err)
	}
	if err := os.RemoveAll(dataOldDir); err != nil {
		return fmt.Errorf("remove old dir after swap: %w", err)
	}
	return nil
}

func writeYAML(fileName string, v any) error {
	bytes, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %T: %w", v, err)
	}
	if err := os.WriteFile(fileName, bytes, 0644); err != nil {
		return fmt.Errorf("write %s: %w", fileName, err)
	}
	return nil
}

// safeFileNameSegment sanitizes a string for use as a filename.
func safeFileNameSegment(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "item"
	}
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, trimmed)
	return strings.Trim(safe, "_")
}
