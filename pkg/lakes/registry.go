package lakes

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Registry holds every configured lake, keyed by lake ID.
type Registry struct {
	lakes map[string]*Lake

	// BaseDirectory anchors relative geometry paths in the lake files.
	BaseDirectory string
}

// LoadDirectory walks a directory of lake definition YAML files and builds
// the registry. A file may contain several lake documents.
func LoadDirectory(directory string) (*Registry, error) {
	registry := &Registry{
		lakes:         map[string]*Lake{},
		BaseDirectory: directory,
	}

	err := filepath.Walk(directory,
		func(path string, fileInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if fileInfo.IsDir() || filepath.Ext(path) != ".yaml" {
				return nil
			}

			log.Debug().Str("path", path).Msg("Loading lake definition file")

			lakeYaml, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			decoder := yaml.NewDecoder(bytes.NewReader(lakeYaml))

			for {
				var lake Lake
				if decoder.Decode(&lake) != nil {
					break
				}

				if lake.ID == "" {
					log.Warn().Str("path", path).Msg("Skipping lake definition without an id")
					continue
				}

				registry.lakes[lake.ID] = &lake
			}

			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load lake definitions: %w", err)
	}

	log.Info().Int("lakes", len(registry.lakes)).Str("directory", directory).Msg("Loaded lake registry")

	return registry, nil
}

func (r *Registry) Get(lakeID string) (*Lake, bool) {
	lake, ok := r.lakes[lakeID]
	return lake, ok
}

func (r *Registry) All() []*Lake {
	all := make([]*Lake, 0, len(r.lakes))
	for _, lake := range r.lakes {
		all = append(all, lake)
	}

	return all
}

// GeometryPath resolves a lake's geometry file against the registry base
// directory unless the configured path is already absolute.
func (r *Registry) GeometryPath(lake *Lake) string {
	if filepath.IsAbs(lake.GeoJSONPath) {
		return lake.GeoJSONPath
	}

	return filepath.Join(r.BaseDirectory, lake.GeoJSONPath)
}
