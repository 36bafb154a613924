package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Role is what an authenticated actor is allowed to act as.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleVendor    Role = "vendor"
	RoleLogistics Role = "logistics"
	RoleSuper     Role = "super"
)

// Roles is the explicit authorization source, loaded from a file instead of
// being hardcoded next to the code that checks it. Vendors maps a manager
// email to the vendor name it manages.
type Roles struct {
	SuperAdmins []string          `yaml:"super_admins"`
	Logistics   []string          `yaml:"logistics"`
	Vendors     map[string]string `yaml:"vendors"`
}

func LoadRoles(path string) (*Roles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roles file: %w", err)
	}

	var roles Roles
	if err := yaml.Unmarshal(data, &roles); err != nil {
		return nil, fmt.Errorf("parse roles file: %w", err)
	}
	return &roles, nil
}

// Lookup resolves an email to its role. Everyone not listed is a customer;
// vendor managers also get the vendor name they act for.
func (r *Roles) Lookup(email string) (Role, string) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return RoleCustomer, ""
	}
	for _, admin := range r.SuperAdmins {
		if strings.EqualFold(admin, email) {
			return RoleSuper, ""
		}
	}
	for _, courier := range r.Logistics {
		if strings.EqualFold(courier, email) {
			return RoleLogistics, ""
		}
	}
	for manager, vendor := range r.Vendors {
		if strings.EqualFold(manager, email) {
			return RoleVendor, vendor
		}
	}
	return RoleCustomer, ""
}
