// Package project persists optimization requests and their solutions as
// JSON project files, and loads CLI defaults from a YAML config file.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/CutFlow/internal/model"
	"github.com/piwi3910/CutFlow/internal/optimizer"
	"github.com/piwi3910/CutFlow/internal/service"
)

// Project is the top-level structure written to a project file. It captures
// the full request plus the solution, so a saved file can be re-optimized or
// re-exported later.
type Project struct {
	Version     string                `json:"version"`
	Name        string                `json:"name"`
	SavedAt     string                `json:"saved_at"`
	Panels      []optimizer.PanelSpec `json:"panels"`
	StockPanels []optimizer.StockSpec `json:"stock_panels"`
	Config      model.Configuration   `json:"config"`
	Solution    *service.Solution     `json:"solution,omitempty"`
}

const projectVersion = "1.0.0"

// Save writes a project to the given path as indented JSON, creating any
// missing parent directories.
func Save(path string, p Project) error {
	p.Version = projectVersion
	p.SavedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

// Load reads a project file from the given path.
func Load(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("failed to read project file: %w", err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return Project{}, fmt.Errorf("failed to parse project file: %w", err)
	}
	if p.Version == "" {
		return Project{}, fmt.Errorf("invalid project file: missing version field")
	}
	return p, nil
}
