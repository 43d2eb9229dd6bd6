package models

// Tenant is an entry of the tenant directory. IBAN decides which reference
// style invoices of the tenant carry.
type Tenant struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	IBAN     string `yaml:"iban,omitempty" json:"iban,omitempty"`
	Currency string `yaml:"currency,omitempty" json:"currency,omitempty"`
}

// TenantsConfig is the root of tenants.yaml.
type TenantsConfig struct {
	Tenants []Tenant `yaml:"tenants"`
}
