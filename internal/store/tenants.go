package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/validation"

	"gopkg.in/yaml.v3"
)

// TenantDirectory is the YAML-backed list of tenants and their payee
// accounts.
type TenantDirectory struct {
	File string

	logger  logging.Logger
	mu      sync.RWMutex
	tenants map[string]models.Tenant
}

// NewTenantDirectory returns an empty directory bound to file. Call Load
// to read it.
func NewTenantDirectory(file string, logger logging.Logger) *TenantDirectory {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &TenantDirectory{
		File:    file,
		logger:  logger,
		tenants: make(map[string]models.Tenant),
	}
}

// FindConfigFile looks for filename as given, under ./config and under
// $HOME/.payrecon.
func FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err != nil {
			return "", err
		}
		return filename, nil
	}

	locations := []string{filename, filepath.Join("config", filename)}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".payrecon", filename))
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// Load reads the tenants file. A missing file leaves the directory empty.
func (d *TenantDirectory) Load() error {
	path, err := FindConfigFile(d.File)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			d.logger.Warn("Tenants file not found, starting with an empty directory",
				logging.F(logging.FieldFile, d.File))
			return nil
		}
		return fmt.Errorf("error resolving tenants file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading tenants file: %w", err)
	}

	var cfg models.TenantsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("error parsing tenants file %s: %w", path, err)
	}

	tenants := make(map[string]models.Tenant, len(cfg.Tenants))
	for _, t := range cfg.Tenants {
		if err := validateTenant(t); err != nil {
			return fmt.Errorf("tenants file %s: %w", path, err)
		}
		if _, dup := tenants[t.ID]; dup {
			return fmt.Errorf("tenants file %s: duplicate tenant id %q", path, t.ID)
		}
		t.IBAN = validation.NormalizeIBAN(t.IBAN)
		tenants[t.ID] = t
	}

	d.mu.Lock()
	d.tenants = tenants
	d.mu.Unlock()

	d.logger.Debug("Loaded tenants",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(tenants)))
	return nil
}

// Save writes the directory back to File, sorted by id.
func (d *TenantDirectory) Save() error {
	data, err := yaml.Marshal(models.TenantsConfig{Tenants: d.List()})
	if err != nil {
		return fmt.Errorf("error marshalling tenants: %w", err)
	}
	if dir := filepath.Dir(d.File); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("error creating tenants directory: %w", err)
		}
	}
	if err := os.WriteFile(d.File, data, 0o600); err != nil {
		return fmt.Errorf("error writing tenants file: %w", err)
	}
	return nil
}

// Lookup returns the tenant with id.
func (d *TenantDirectory) Lookup(id string) (models.Tenant, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.tenants[id]
	return t, ok
}

// Upsert validates and stores t.
func (d *TenantDirectory) Upsert(t models.Tenant) error {
	if err := validateTenant(t); err != nil {
		return err
	}
	t.IBAN = validation.NormalizeIBAN(t.IBAN)

	d.mu.Lock()
	d.tenants[t.ID] = t
	d.mu.Unlock()
	return nil
}

// List returns all tenants ordered by id.
func (d *TenantDirectory) List() []models.Tenant {
	d.mu.RLock()
	out := make([]models.Tenant, 0, len(d.tenants))
	for _, t := range d.tenants {
		out = append(out, t)
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func validateTenant(t models.Tenant) error {
	if t.ID == "" {
		return errors.New("tenant id is required")
	}
	if t.IBAN != "" {
		if err := validation.ValidateIBAN(t.IBAN); err != nil {
			return fmt.Errorf("tenant %q: %w", t.ID, err)
		}
	}
	return nil
}
