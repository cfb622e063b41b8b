// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package templates holds the engine's built-in seed role sets
// ("basic-crud", "content-management", "user-management"), embedded as
// YAML and applied onto a role graph at runtime.
package templates

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/samber/oops"

	"github.com/wardenhq/warden/core"
	"github.com/wardenhq/warden/rbac"
)

//go:embed data/basic-crud.yaml
var basicCRUDYAML []byte

//go:embed data/content-management.yaml
var contentManagementYAML []byte

//go:embed data/user-management.yaml
var userManagementYAML []byte

// Built-in template identifiers, stable across releases.
const (
	BasicCRUD         = "basic-crud"
	ContentManagement = "content-management"
	UserManagement    = "user-management"
)

var embedded = map[string][]byte{
	BasicCRUD:         basicCRUDYAML,
	ContentManagement: contentManagementYAML,
	UserManagement:    userManagementYAML,
}

// GrantSeed is a single (resource, action) pair granted to a seed role.
type GrantSeed struct {
	Resource string `yaml:"resource"`
	Action   string `yaml:"action"`
}

// RoleSeed describes one role a template creates.
type RoleSeed struct {
	Name        string      `yaml:"name"`
	DisplayName string      `yaml:"displayName"`
	Parents     []string    `yaml:"parents"`
	Grants      []GrantSeed `yaml:"grants"`
}

// Template is a named, described bundle of role seeds, listed in the
// dependency order they must be created (parents before children).
type Template struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Roles       []RoleSeed `yaml:"roles"`
}

// List returns every built-in template id, in stable declaration order.
func List() []string {
	return []string{BasicCRUD, ContentManagement, UserManagement}
}

// Load parses the embedded template identified by id.
func Load(id string) (Template, error) {
	raw, ok := embedded[id]
	if !ok {
		return Template{}, oops.Code(core.CodeInvalidConfig).With("template", id).Errorf("unknown template %q", id)
	}
	var t Template
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Template{}, oops.Code(core.CodeInvalidConfig).With("template", id).Wrapf(err, "parse template %q", id)
	}
	return t, nil
}

// ApplyOptions controls how Apply behaves when a seed role's name already
// exists in the target graph.
type ApplyOptions struct {
	// SkipExisting leaves an already-present role untouched instead of
	// erroring or merging into it.
	SkipExisting bool
	// Merge adds the seed's grants onto an already-present role instead of
	// erroring. Ignored when SkipExisting is also set.
	Merge bool
}

// Apply creates every role named in template id on graph, granting the
// listed permissions. Roles are created in the template's declared order,
// which lists parents before children. Returns the names of roles actually
// created or merged.
func Apply(graph *rbac.Graph, id string, opts ApplyOptions) ([]string, error) {
	t, err := Load(id)
	if err != nil {
		return nil, err
	}

	var touched []string
	for _, seed := range t.Roles {
		grants := make([]core.PermissionGrant, 0, len(seed.Grants))
		for _, g := range seed.Grants {
			grants = append(grants, core.PermissionGrant{Resource: g.Resource, Action: g.Action})
		}

		if _, exists := graph.Role(seed.Name); exists {
			switch {
			case opts.SkipExisting:
				continue
			case opts.Merge:
				for _, g := range grants {
					if err := graph.Grant(seed.Name, g, false); err != nil {
						return touched, err
					}
				}
				touched = append(touched, seed.Name)
			default:
				return touched, oops.Code(core.CodeRoleAlreadyExists).With("role", seed.Name).
					Wrapf(core.ErrRoleAlreadyExists, "template %q collides with existing role %q", id, seed.Name)
			}
			continue
		}

		if err := graph.CreateRole(seed.Name, rbac.Options{
			DisplayName: seed.DisplayName,
			Parents:     seed.Parents,
			Grants:      grants,
		}); err != nil {
			return touched, fmt.Errorf("applying template %q: %w", id, err)
		}
		touched = append(touched, seed.Name)
	}

	return touched, nil
}
