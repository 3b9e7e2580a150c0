package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"

	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
)

//go:embed schema/sitedeploy.schema.json
var schemaJSON []byte

const schemaURL = "sitedeploy.schema.json"

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// ValidateSchema checks the structure of a project file before it is decoded.
// Unknown keys and wrongly typed values are reported with their JSON pointer.
func ValidateSchema(content []byte) error {
	sch, err := loadSchema()
	if err != nil {
		return errors.InternalError("project file schema does not compile").WithCause(err).Build()
	}

	jsonData, err := yaml.YAMLToJSON(content)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "project file is not valid YAML").Fatal().Build()
	}

	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "project file is not valid YAML").Fatal().Build()
	}

	if err := sch.Validate(document); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "project file does not match schema").Fatal().Build()
	}
	return nil
}
