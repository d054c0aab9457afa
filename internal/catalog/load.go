package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

// File is the on-disk catalog layout shared by YAML and CUE files.
//
//	name: restoration-shaman
//	mastery_boosted:
//	  - {id: 77472, name: Healing Wave}
//	indirectly_boosted:
//	  - {id: 157503, name: Cloudburst}
//	buffs:
//	  - {id: 114052, name: Ascendance}
type File struct {
	Name              string  `json:"name,omitempty" yaml:"name,omitempty"`
	MasteryBoosted    []Entry `json:"mastery_boosted" yaml:"mastery_boosted"`
	IndirectlyBoosted []Entry `json:"indirectly_boosted,omitempty" yaml:"indirectly_boosted,omitempty"`
	Buffs             []Entry `json:"buffs,omitempty" yaml:"buffs,omitempty"`
}

// schemaCUE constrains CUE catalog files. Definitions are closed, so unknown
// fields are rejected the same way the YAML decoder rejects them.
const schemaCUE = `
#Entry: {
	id:    int & >0
	name?: string
}

#Catalog: {
	name?: string
	mastery_boosted: [...#Entry]
	indirectly_boosted?: [...#Entry]
	buffs?: [...#Entry]
}
`

// Build resolves a File into a Catalog.
func (f File) Build() (*Catalog, error) {
	return New(f.Name, f.MasteryBoosted, f.IndirectlyBoosted, f.Buffs)
}

// Load reads a catalog from path. Files ending in .cue are evaluated as CUE
// against the catalog schema; anything else is parsed as YAML.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var f File
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		f, err = ParseCUE(data, path)
	} else {
		f, err = ParseYAML(data)
	}
	if err != nil {
		return nil, withSource(err, path)
	}

	c, err := f.Build()
	if err != nil {
		return nil, withSource(err, path)
	}
	return c, nil
}

// ParseYAML decodes a YAML catalog, rejecting unknown fields.
func ParseYAML(data []byte) (File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return File{}, &ConfigError{Code: ErrCodeSchema, Message: fmt.Sprintf("failed to parse YAML: %v", err)}
	}
	if f.MasteryBoosted == nil {
		return File{}, &ConfigError{Code: ErrCodeSchema, Message: "mastery_boosted is required"}
	}
	return f, nil
}

// ParseCUE evaluates a CUE catalog, unifies it with the schema and decodes
// the concrete result. filename is used for error positions only.
func ParseCUE(data []byte, filename string) (File, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE).LookupPath(cue.ParsePath("#Catalog"))
	if err := schema.Err(); err != nil {
		return File{}, fmt.Errorf("compile catalog schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return File{}, cueConfigError(err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return File{}, cueConfigError(err)
	}

	var f File
	if err := unified.Decode(&f); err != nil {
		return File{}, cueConfigError(err)
	}
	return f, nil
}

// cueConfigError keeps the first CUE error, with its position when present.
func cueConfigError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ConfigError{Code: ErrCodeSchema, Message: err.Error()}
	}

	first := errs[0]
	msg := first.Error()
	if positions := cueerrors.Positions(first); len(positions) > 0 && positions[0].IsValid() {
		msg = fmt.Sprintf("line %d: %s", positions[0].Line(), msg)
	}
	return &ConfigError{Code: ErrCodeSchema, Message: msg}
}

func withSource(err error, path string) error {
	var ce *ConfigError
	if errors.As(err, &ce) && ce.Source == "" {
		ce.Source = path
		return ce
	}
	return err
}
