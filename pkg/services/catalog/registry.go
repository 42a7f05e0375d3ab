package catalog

import (
	_ "embed"
	"fmt"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed capabilities.yaml
var capabilitiesYAML []byte

type registryFile struct {
	Version  int            `yaml:"version"`
	Services []serviceEntry `yaml:"services"`
}

type serviceEntry struct {
	Name       string           `yaml:"name"`
	Operations []operationEntry `yaml:"operations"`
}

type operationEntry struct {
	Name      string         `yaml:"name"`
	Required  []string       `yaml:"required"`
	Paginated bool           `yaml:"paginated"`
	Catalog   bool           `yaml:"catalog"`
	Producer  *producerEntry `yaml:"producer"`
}

type producerEntry struct {
	Operation string `yaml:"operation"`
	Items     string `yaml:"items"`
	Field     string `yaml:"field"`
	Param     string `yaml:"param"`
}

// Registry is the immutable capability table loaded at startup.
type Registry struct {
	version  int
	ops      []domain.OperationDescriptor
	byKey    map[string]domain.OperationDescriptor
	services []string
}

// NewRegistry loads the embedded capability document.
func NewRegistry(logger zerolog.Logger) (*Registry, error) {
	return NewRegistryFromBytes(capabilitiesYAML, logger)
}

// NewRegistryFromBytes parses a capability document. A malformed service
// is skipped and logged once; a document that yields no services at all
// is an error, since collection cannot proceed without a catalog.
func NewRegistryFromBytes(data []byte, logger zerolog.Logger) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse capability registry: %w", err)
	}

	r := &Registry{
		version: file.Version,
		byKey:   make(map[string]domain.OperationDescriptor),
	}

	for _, svc := range file.Services {
		descriptors, err := buildService(svc)
		if err != nil {
			logger.Warn().Err(err).Str("service", svc.Name).Msg("skipping service in capability registry")
			continue
		}
		r.services = append(r.services, svc.Name)
		for _, d := range descriptors {
			r.ops = append(r.ops, d)
			r.byKey[d.Key()] = d
		}
	}

	if len(r.ops) == 0 {
		return nil, fmt.Errorf("capability registry contains no usable services")
	}
	return r, nil
}

func buildService(svc serviceEntry) ([]domain.OperationDescriptor, error) {
	if svc.Name == "" {
		return nil, fmt.Errorf("service entry without a name")
	}
	if len(svc.Operations) == 0 {
		return nil, fmt.Errorf("service %q declares no operations", svc.Name)
	}

	known := make(map[string]bool, len(svc.Operations))
	for _, op := range svc.Operations {
		known[op.Name] = true
	}

	var out []domain.OperationDescriptor
	for _, op := range svc.Operations {
		if op.Name == "" {
			return nil, fmt.Errorf("service %q has an unnamed operation", svc.Name)
		}
		d := domain.OperationDescriptor{
			Service:        svc.Name,
			Name:           op.Name,
			RequiredParams: append([]string(nil), op.Required...),
			Paginated:      op.Paginated,
			Catalog:        op.Catalog,
		}
		if op.Producer != nil {
			p := op.Producer
			if !known[p.Operation] {
				return nil, fmt.Errorf("operation %s/%s references unknown producer %q",
					svc.Name, op.Name, p.Operation)
			}
			if p.Items == "" || p.Field == "" || p.Param == "" {
				return nil, fmt.Errorf("operation %s/%s has an incomplete producer mapping",
					svc.Name, op.Name)
			}
			d.Producer = &domain.ProducerRef{
				Operation: p.Operation,
				Items:     p.Items,
				Field:     p.Field,
				Param:     p.Param,
			}
		}
		out = append(out, d)
	}
	return out, nil
}

// Version returns the registry document version.
func (r *Registry) Version() int { return r.version }

// Services lists service names in document order.
func (r *Registry) Services() []string {
	return append([]string(nil), r.services...)
}

// Operations returns all descriptors in document order.
func (r *Registry) Operations() []domain.OperationDescriptor {
	return append([]domain.OperationDescriptor(nil), r.ops...)
}

// Descriptor looks up one operation.
func (r *Registry) Descriptor(service, operation string) (domain.OperationDescriptor, bool) {
	d, ok := r.byKey[service+"/"+operation]
	return d, ok
}
