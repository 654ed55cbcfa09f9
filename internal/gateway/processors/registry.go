package processors

import (
	"strings"

	"github.com/paybridgehq/paybridge/internal/gateway/domain"
)

// Registry holds one factory per processor kind.
type Registry struct {
	factories map[string]domain.Factory
}

func NewRegistry(factories ...domain.Factory) *Registry {
	r := &Registry{factories: make(map[string]domain.Factory, len(factories))}
	for _, f := range factories {
		r.factories[strings.ToLower(f.Kind())] = f
	}
	return r
}

func (r *Registry) KindExists(kind string) bool {
	_, ok := r.factories[strings.ToLower(strings.TrimSpace(kind))]
	return ok
}

// NewProcessor constructs a fresh processor client for kind. Instances
// are never shared or cached; every call returns a new owned object.
func (r *Registry) NewProcessor(kind string, cfg domain.ProcessorSettings) (domain.Processor, error) {
	factory, ok := r.factories[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return nil, domain.ErrUnknownKind
	}
	return factory.NewProcessor(cfg)
}

func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	return kinds
}
