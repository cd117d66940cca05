// Package seed loads shipping instance configuration from YAML files.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/ports"
)

// File is the on-disk layout of a shipping configuration seed.
type File struct {
	Instances []InstanceEntry `yaml:"instances"`
}

// InstanceEntry mirrors the admin form of one instance. Carriers keeps the
// raw textarea text, one carrier per line.
type InstanceEntry struct {
	ID               int64   `yaml:"id"`
	Method           string  `yaml:"method"`
	Title            string  `yaml:"title,omitempty"`
	Cost             float64 `yaml:"cost,omitempty"`
	FreeShipping     bool    `yaml:"free_shipping,omitempty"`
	Carriers         string  `yaml:"carriers,omitempty"`
	AllowCustom      *bool   `yaml:"allow_custom,omitempty"`
	CustomFieldLabel string  `yaml:"custom_field_label,omitempty"`
}

// Settings converts the entry to domain settings. allow_custom defaults to true.
func (e InstanceEntry) Settings() domain.Settings {
	allow := true
	if e.AllowCustom != nil {
		allow = *e.AllowCustom
	}
	return domain.Settings{
		Title:            e.Title,
		Cost:             e.Cost,
		FreeShipping:     e.FreeShipping,
		CarriersText:     e.Carriers,
		AllowCustom:      allow,
		CustomFieldLabel: e.CustomFieldLabel,
	}
}

// Load reads and parses a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shipping seed: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a seed document, rejecting unknown fields.
func Parse(r io.Reader) (*File, error) {
	var file File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse shipping seed: %w", err)
	}
	seen := make(map[int64]struct{}, len(file.Instances))
	for i, entry := range file.Instances {
		if entry.ID <= 0 {
			return nil, fmt.Errorf("instances[%d]: id must be greater than zero", i)
		}
		if !domain.IsCarrierMethod(entry.Method) {
			return nil, fmt.Errorf("instances[%d]: unknown method %q", i, entry.Method)
		}
		if _, dup := seen[entry.ID]; dup {
			return nil, fmt.Errorf("instances[%d]: duplicate id %d", i, entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}
	return &file, nil
}

// Apply configures every instance in the file through the service.
func Apply(ctx context.Context, svc ports.Service, file *File) ([]*domain.Instance, error) {
	if file == nil {
		return nil, nil
	}
	applied := make([]*domain.Instance, 0, len(file.Instances))
	for _, entry := range file.Instances {
		inst, err := svc.Configure(ctx, domain.InstanceID(entry.ID), entry.Method, entry.Settings())
		if err != nil {
			return applied, fmt.Errorf("configure instance %d: %w", entry.ID, err)
		}
		applied = append(applied, inst)
	}
	return applied, nil
}

// Export renders the given instances back into seed form.
func Export(w io.Writer, instances []*domain.Instance) error {
	file := File{Instances: make([]InstanceEntry, 0, len(instances))}
	for _, inst := range instances {
		allow := inst.AllowCustom
		entry := InstanceEntry{
			ID:               int64(inst.ID),
			Method:           inst.MethodID,
			Title:            inst.Title,
			Cost:             inst.Cost,
			FreeShipping:     inst.FreeShipping,
			AllowCustom:      &allow,
			CustomFieldLabel: inst.CustomFieldLabel,
		}
		for i, line := range inst.Carriers {
			if i > 0 {
				entry.Carriers += "\n"
			}
			entry.Carriers += line
		}
		file.Instances = append(file.Instances, entry)
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(&file); err != nil {
		return err
	}
	return encoder.Close()
}
