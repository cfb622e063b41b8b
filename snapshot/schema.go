// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/samber/oops"

	"github.com/wardenhq/warden/core"
)

const schemaResourceName = "warden-snapshot.json"

var (
	schemaOnce sync.Once
	schemaDoc  []byte
	schemaV    *validator.Schema
	schemaErr  error
)

// Schema returns the JSON Schema document generated from the Snapshot type
// tree, suitable for publishing alongside exported snapshots.
func Schema() []byte {
	buildSchema()
	return schemaDoc
}

func buildSchema() {
	schemaOnce.Do(func() {
		r := &jsonschema.Reflector{
			ExpandedStruct: true,
			DoNotReference: true,
		}
		doc := r.Reflect(&Snapshot{})
		raw, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			schemaErr = oops.Code(core.CodeInvalidConfig).Wrapf(err, "marshal generated snapshot schema")
			return
		}
		schemaDoc = raw

		compiler := validator.NewCompiler()
		if err := compiler.AddResource(schemaResourceName, bytes.NewReader(raw)); err != nil {
			schemaErr = oops.Code(core.CodeInvalidConfig).Wrapf(err, "register snapshot schema resource")
			return
		}
		sch, err := compiler.Compile(schemaResourceName)
		if err != nil {
			schemaErr = oops.Code(core.CodeInvalidConfig).Wrapf(err, "compile snapshot schema")
			return
		}
		schemaV = sch
	})
}

// Validate checks raw (a JSON-encoded snapshot) against the generated
// schema, returning a wrapped error describing every violation found.
func Validate(raw []byte) error {
	buildSchema()
	if schemaErr != nil {
		return schemaErr
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return oops.Code(core.CodeInvalidConfig).Wrapf(err, "snapshot is not valid JSON")
	}

	if err := schemaV.Validate(doc); err != nil {
		return oops.Code(core.CodeInvalidConfig).Wrapf(err, "snapshot failed schema validation")
	}
	return nil
}
