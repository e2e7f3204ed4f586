package repository

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"standfinder/internal/model"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrInvalidFixture is returned when a fixture does not match the stand schema
var ErrInvalidFixture = errors.New("invalid fixture")

//go:embed fixtures/stands.json
var defaultFixture []byte

//go:embed fixtures/stands.schema.json
var fixtureSchema []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("stands.schema.json", bytes.NewReader(fixtureSchema)); err != nil {
		return nil, fmt.Errorf("failed to add fixture schema: %w", err)
	}
	return compiler.Compile("stands.schema.json")
})

// StandSource loads the base dataset once at startup
type StandSource interface {
	LoadStands(ctx context.Context) ([]model.Stand, error)
}

// FileSource reads stands from a JSON or YAML file.
// An empty path selects the built-in mock fixture.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed stand source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// LoadStands implements StandSource
func (s *FileSource) LoadStands(ctx context.Context) ([]model.Stand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.path == "" {
		return DecodeStands(defaultFixture, ".json")
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", s.path, err)
	}
	stands, err := DecodeStands(data, filepath.Ext(s.path))
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", s.path, err)
	}
	return stands, nil
}

// DecodeStands parses and validates a fixture. The extension selects the
// format; anything other than .json is treated as YAML.
func DecodeStands(data []byte, ext string) ([]model.Stand, error) {
	isJSON := strings.EqualFold(ext, ".json")

	raw := data
	if !isJSON {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML fixture: %w", err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML fixture: %w", err)
		}
		raw = converted
	}
	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var stands []model.Stand
	if isJSON {
		if err := json.Unmarshal(data, &stands); err != nil {
			return nil, fmt.Errorf("failed to parse JSON fixture: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &stands); err != nil {
			return nil, fmt.Errorf("failed to parse YAML fixture: %w", err)
		}
	}

	if err := validateStands(stands); err != nil {
		return nil, err
	}
	return stands, nil
}

// validateSchema checks the fixture shape against the embedded JSON schema
func validateSchema(raw []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("failed to parse JSON fixture: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	return nil
}

func validateStands(stands []model.Stand) error {
	seen := make(map[int64]struct{}, len(stands))
	for i, st := range stands {
		if err := st.Validate(); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if _, dup := seen[st.ID]; dup {
			return fmt.Errorf("row %d: %w: duplicate id %d", i, model.ErrInvalidStand, st.ID)
		}
		seen[st.ID] = struct{}{}
	}
	return nil
}
