package permission

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shadowiq/shadowiq/internal/domain/identity"
)

//go:embed policies.yaml
var defaultPolicies []byte

//go:embed rbac_model.conf
var modelText string

// Catalog is the declarative role grant table seeded into casbin.
type Catalog struct {
	Inherits map[string][]string `yaml:"inherits"`
	Grants   map[string][]string `yaml:"grants"`
}

// DefaultCatalog parses the embedded policies.yaml.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultPolicies)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse policy catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	for role, ops := range c.Grants {
		if !identity.Role(role).IsValid() {
			return fmt.Errorf("policy catalog: unknown role %q", role)
		}
		for _, op := range ops {
			if _, _, err := splitOperation(op); err != nil {
				return fmt.Errorf("policy catalog: %w", err)
			}
		}
	}
	for role, parents := range c.Inherits {
		if !identity.Role(role).IsValid() {
			return fmt.Errorf("policy catalog: unknown role %q", role)
		}
		for _, parent := range parents {
			if !identity.Role(parent).IsValid() || parent == role {
				return fmt.Errorf("policy catalog: invalid inheritance %s -> %s", role, parent)
			}
		}
	}
	return nil
}

// Policies returns the p rules as (role, object, action), sorted.
func (c *Catalog) Policies() [][]string {
	var out [][]string
	for role, ops := range c.Grants {
		for _, op := range ops {
			obj, act, _ := splitOperation(op)
			out = append(out, []string{role, obj, act})
		}
	}
	sortRules(out)
	return out
}

// GroupingPolicies returns the g rules as (role, inherited role), sorted.
func (c *Catalog) GroupingPolicies() [][]string {
	var out [][]string
	for role, parents := range c.Inherits {
		for _, parent := range parents {
			out = append(out, []string{role, parent})
		}
	}
	sortRules(out)
	return out
}

// DirectRoles lists roles granted operation without inheritance, lowest
// role first.
func (c *Catalog) DirectRoles(operation string) []string {
	var out []string
	for _, role := range []identity.Role{identity.RoleClient, identity.RoleAnalyst, identity.RoleAdmin} {
		for _, op := range c.Grants[role.String()] {
			if op == operation {
				out = append(out, role.String())
				break
			}
		}
	}
	return out
}

func splitOperation(operation string) (string, string, error) {
	idx := strings.LastIndex(operation, ".")
	if idx <= 0 || idx == len(operation)-1 {
		return "", "", fmt.Errorf("operation %q must have the form resource.action", operation)
	}
	return operation[:idx], operation[idx+1:], nil
}

func sortRules(rules [][]string) {
	sort.Slice(rules, func(i, j int) bool {
		return strings.Join(rules[i], "\x00") < strings.Join(rules[j], "\x00")
	})
}
