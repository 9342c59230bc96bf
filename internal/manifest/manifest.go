package manifest

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"vaultIndexer/internal/entity"
	"vaultIndexer/internal/mapping"
	"vaultIndexer/internal/vaultfactory"
)

// Manifest is a subgraph-style data-source document.
type Manifest struct {
	SpecVersion string       `yaml:"specVersion"`
	Description string       `yaml:"description,omitempty"`
	DataSources []DataSource `yaml:"dataSources"`
}

type DataSource struct {
	Kind    string  `yaml:"kind"`
	Name    string  `yaml:"name"`
	Network string  `yaml:"network"`
	Source  Source  `yaml:"source"`
	Mapping Mapping `yaml:"mapping"`
}

type Source struct {
	Address    string `yaml:"address"`
	ABI        string `yaml:"abi"`
	StartBlock uint64 `yaml:"startBlock"`
}

type Mapping struct {
	Kind          string         `yaml:"kind"`
	APIVersion    string         `yaml:"apiVersion"`
	Language      string         `yaml:"language"`
	Entities      []string       `yaml:"entities"`
	EventHandlers []EventHandler `yaml:"eventHandlers"`
	File          string         `yaml:"file"`
}

type EventHandler struct {
	Event   string `yaml:"event"`
	Handler string `yaml:"handler"`
}

// Binding is a validated data source ready for the runner.
type Binding struct {
	Name       string
	Address    common.Address
	StartBlock uint64
	Handlers   map[entity.Kind]mapping.HandlerBinding
}

// Enabled reports whether kind has a handler in this data source.
func (b Binding) Enabled(kind entity.Kind) bool {
	_, ok := b.Handlers[kind]
	return ok
}

// Kinds returns the enabled kinds in a stable order.
func (b Binding) Kinds() []entity.Kind {
	kinds := make([]entity.Kind, 0, len(b.Handlers))
	for kind := range b.Handlers {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

var envPattern = regexp.MustCompile(`\${([A-Za-z_][A-Za-z0-9_]*)}`)

// Load reads, interpolates env vars, parses and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	if path == "" {
		return nil, errors.New("manifest path is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a manifest document.
func Parse(raw []byte) (*Manifest, error) {
	interpolated, err := interpolateEnv(string(raw))
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal([]byte(interpolated), &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func interpolateEnv(input string) (string, error) {
	missing := []string{}
	out := envPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		missing = append(missing, name)
		return match
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// Validate checks addresses, handler names and event signatures.
func (m *Manifest) Validate() error {
	if len(m.DataSources) == 0 {
		return errors.New("at least one data source is required")
	}

	names := map[string]struct{}{}
	for _, ds := range m.DataSources {
		if _, exists := names[ds.Name]; exists {
			return fmt.Errorf("duplicate data source name: %s", ds.Name)
		}
		names[ds.Name] = struct{}{}
		if err := ds.Validate(); err != nil {
			return fmt.Errorf("data source %s: %w", ds.Name, err)
		}
	}
	return nil
}

func (ds *DataSource) Validate() error {
	if ds.Name == "" {
		return errors.New("name is required")
	}
	if !common.IsHexAddress(ds.Source.Address) {
		return fmt.Errorf("invalid source address: %q", ds.Source.Address)
	}
	if len(ds.Mapping.EventHandlers) == 0 {
		return errors.New("at least one event handler is required")
	}

	registry := mapping.Handlers()
	seen := map[entity.Kind]struct{}{}
	for _, eh := range ds.Mapping.EventHandlers {
		binding, ok := registry[eh.Handler]
		if !ok {
			return fmt.Errorf("unknown handler: %s", eh.Handler)
		}
		want, err := vaultfactory.EventSignature(binding.Kind)
		if err != nil {
			return err
		}
		if normalizeSignature(eh.Event) != want {
			return fmt.Errorf("handler %s expects event %s, got %s", eh.Handler, want, eh.Event)
		}
		if _, dup := seen[binding.Kind]; dup {
			return fmt.Errorf("duplicate handler for event %s", binding.Kind)
		}
		seen[binding.Kind] = struct{}{}
	}
	return nil
}

// Bindings resolves every data source into a runner binding.
func (m *Manifest) Bindings() []Binding {
	registry := mapping.Handlers()
	out := make([]Binding, 0, len(m.DataSources))
	for _, ds := range m.DataSources {
		b := Binding{
			Name:       ds.Name,
			Address:    common.HexToAddress(ds.Source.Address),
			StartBlock: ds.Source.StartBlock,
			Handlers:   make(map[entity.Kind]mapping.HandlerBinding, len(ds.Mapping.EventHandlers)),
		}
		for _, eh := range ds.Mapping.EventHandlers {
			if hb, ok := registry[eh.Handler]; ok {
				b.Handlers[hb.Kind] = hb
			}
		}
		out = append(out, b)
	}
	return out
}

func normalizeSignature(sig string) string {
	open := strings.Index(sig, "(")
	if open < 0 || !strings.HasSuffix(sig, ")") {
		return strings.TrimSpace(sig)
	}
	name := strings.TrimSpace(sig[:open])
	inner := sig[open+1 : len(sig)-1]
	if strings.TrimSpace(inner) == "" {
		return name + "()"
	}
	parts := strings.Split(inner, ",")
	for i, part := range parts {
		parts[i] = strings.Join(strings.Fields(part), " ")
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}
