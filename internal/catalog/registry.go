package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SmartChain-HD/AI/internal/evidence"
)

//go:embed catalogs/*.yaml
var catalogs embed.FS

// Reason codes every domain must declare because the pipeline emits them
// for degraded and missing inputs regardless of domain.
var coreReasons = []string{
	evidence.ReasonMissingSlot,
	evidence.ReasonFetchFailed,
	evidence.ReasonParseFailed,
	evidence.ReasonOCRFailed,
}

var validKinds = []evidence.FileKind{
	evidence.KindDocument,
	evidence.KindTabular,
	evidence.KindImage,
}

// Registry maps domain names to validated catalogs.
type Registry struct {
	domains map[string]*Domain
	order   []string
}

// Load parses and validates the embedded catalogs.
func Load() (*Registry, error) {
	return LoadFS(catalogs, "catalogs")
}

// LoadFS parses every .yaml file under dir in fsys and validates the result.
func LoadFS(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrInvalidCatalog, dir, err)
	}

	var domains []*Domain
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrInvalidCatalog, e.Name(), err)
		}

		d, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		domains = append(domains, d)
	}

	return NewRegistry(domains...)
}

// Parse decodes one catalog document. The result is validated by NewRegistry.
func Parse(data []byte) (*Domain, error) {
	var d Domain
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return &d, nil
}

// NewRegistry validates each domain and indexes it by name.
func NewRegistry(domains ...*Domain) (*Registry, error) {
	r := &Registry{domains: make(map[string]*Domain, len(domains))}

	for _, d := range domains {
		if err := d.finalize(); err != nil {
			return nil, fmt.Errorf("%w: domain %q: %w", ErrInvalidCatalog, d.Name, err)
		}
		if _, dup := r.domains[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate domain %q", ErrInvalidCatalog, d.Name)
		}
		r.domains[d.Name] = d
		r.order = append(r.order, d.Name)
	}

	slices.Sort(r.order)
	return r, nil
}

// Domain returns the catalog for name or ErrUnknownDomain.
func (r *Registry) Domain(name string) (*Domain, error) {
	d, ok := r.domains[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, name)
	}
	return d, nil
}

// Names returns the registered domain names in sorted order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

func (d *Domain) finalize() error {
	if d.Name == "" {
		return fmt.Errorf("name required")
	}

	switch d.Policy {
	case PolicyWeighted:
		if d.MinScore <= 0 {
			d.MinScore = 4
		}
		if d.PairBonus <= 0 {
			d.PairBonus = 3
		}
	case PolicyPattern:
		if d.Confidence.Required <= 0 {
			d.Confidence.Required = 0.85
		}
		if d.Confidence.Optional <= 0 {
			d.Confidence.Optional = 0.85
		}
		if d.Confidence.Required > 1 || d.Confidence.Optional > 1 {
			return fmt.Errorf("confidence must not exceed 1")
		}
	default:
		return fmt.Errorf("unknown policy %q", d.Policy)
	}

	for _, code := range coreReasons {
		if !d.Declares(code) {
			return fmt.Errorf("reason code %s not declared", code)
		}
	}

	if len(d.Slots) == 0 {
		return fmt.Errorf("no slots")
	}

	d.index = make(map[string]int, len(d.Slots))
	for i := range d.Slots {
		s := &d.Slots[i]
		if err := s.finalize(d); err != nil {
			return fmt.Errorf("slot %q: %w", s.Name, err)
		}
		if _, dup := d.index[s.Name]; dup {
			return fmt.Errorf("duplicate slot %q", s.Name)
		}
		d.index[s.Name] = i
	}

	return nil
}

func (s *Slot) finalize(d *Domain) error {
	if !strings.HasPrefix(s.Name, d.Name+".") {
		return fmt.Errorf("name must start with %q", d.Name+".")
	}

	for _, k := range s.Kinds {
		if !slices.Contains(validKinds, k) {
			return fmt.Errorf("unknown file kind %q", k)
		}
	}

	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return fmt.Errorf("compile pattern: %w", err)
		}
		s.regex = re
	}

	switch d.Policy {
	case PolicyPattern:
		if s.regex == nil {
			return fmt.Errorf("pattern required")
		}
	case PolicyWeighted:
		if len(s.DomainSignals) == 0 && len(s.PurposeSignals) == 0 && s.regex == nil {
			return fmt.Errorf("at least one signal group or pattern required")
		}
		s.DomainSignals = lowerAll(s.DomainSignals)
		s.PurposeSignals = lowerAll(s.PurposeSignals)
		s.BoostSignals = lowerAll(s.BoostSignals)
		if s.Penalty != nil {
			s.Penalty.Signals = lowerAll(s.Penalty.Signals)
		}
	}

	return nil
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.ToLower(v)
	}
	return out
}
