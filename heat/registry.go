package heat

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Factory builds a model from a material and a gas mixture.
type Factory func(Material, GasMixture) Model

// Registry resolves material, gas and model names. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	materials map[string]Material
	gases     map[string]GasMixture
	models    map[string]Factory
}

// NewRegistry returns an empty registry that knows only the built-in models.
func NewRegistry() *Registry {
	return &Registry{
		materials: make(map[string]Material),
		gases:     make(map[string]GasMixture),
		models: map[string]Factory{
			ModelFreeMolecular: func(m Material, g GasMixture) Model { return NewFreeMolecular(m, g) },
		},
	}
}

// Soot returns the built-in soot material.
func Soot() Material {
	return Material{
		Name:             "soot",
		Density:          1860,
		HeatCapacity:     1900,
		VaporMolarMass:   0.036,
		VaporizationHeat: 7.78e5,
		RefVaporPressure: AtmosphericPa,
		RefTemperature:   3915,
		EvaporationCoeff: 1,
		Emissivity:       0.9,
	}
}

// Nitrogen returns the built-in N2 gas mixture.
func Nitrogen() GasMixture {
	return GasMixture{Name: "N2", MolarMass: 0.028014, HeatCapacityRatio: 1.4, ThermalAccommodation: 0.37}
}

// DefaultRegistry returns a registry seeded with soot, N2, air and Ar.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.AddMaterial(Soot())
	r.AddGas(Nitrogen())
	r.AddGas(GasMixture{Name: "air", MolarMass: 0.028965, HeatCapacityRatio: 1.4, ThermalAccommodation: 0.37})
	r.AddGas(GasMixture{Name: "Ar", MolarMass: 0.039948, HeatCapacityRatio: 5.0 / 3.0, ThermalAccommodation: 0.3})

	return r
}

// AddMaterial registers or replaces a material under m.Name.
func (r *Registry) AddMaterial(m Material) {
	r.mu.Lock()
	r.materials[m.Name] = m
	r.mu.Unlock()
}

// AddGas registers or replaces a gas mixture under g.Name.
func (r *Registry) AddGas(g GasMixture) {
	r.mu.Lock()
	r.gases[g.Name] = g
	r.mu.Unlock()
}

// AddModel registers a model factory.
func (r *Registry) AddModel(name string, f Factory) {
	r.mu.Lock()
	r.models[name] = f
	r.mu.Unlock()
}

// Material looks up a material; ErrUnknownMaterial if absent.
func (r *Registry) Material(name string) (Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.materials[name]
	if !ok {
		return Material{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}

	return m, nil
}

// Gas looks up a gas mixture; ErrUnknownGas if absent.
func (r *Registry) Gas(name string) (GasMixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gases[name]
	if !ok {
		return GasMixture{}, fmt.Errorf("%w: %q", ErrUnknownGas, name)
	}

	return g, nil
}

// Materials returns the registered material names, sorted.
func (r *Registry) Materials() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.materials))
	for k := range r.materials {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}

// NewModel builds the named model for the named material and gas.
func (r *Registry) NewModel(model, material, gas string) (Model, error) {
	r.mu.RLock()
	f, ok := r.models[model]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
	m, err := r.Material(material)
	if err != nil {
		return nil, err
	}
	g, err := r.Gas(gas)
	if err != nil {
		return nil, err
	}

	return f(m, g), nil
}

// registryFile is the YAML layout read by Load.
type registryFile struct {
	Materials []Material   `yaml:"materials"`
	Gases     []GasMixture `yaml:"gases"`
}

// Load merges materials and gases from a YAML document into r. Every entry
// is validated; the first invalid entry aborts the load with nothing merged.
func (r *Registry) Load(rd io.Reader) error {
	var f registryFile
	if err := yaml.NewDecoder(rd).Decode(&f); err != nil && err != io.EOF {
		return fmt.Errorf("heat: decode registry: %w", err)
	}
	for _, m := range f.Materials {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	for _, g := range f.Gases {
		if err := g.Validate(); err != nil {
			return err
		}
	}
	for _, m := range f.Materials {
		r.AddMaterial(m)
	}
	for _, g := range f.Gases {
		r.AddGas(g)
	}

	return nil
}

// LoadFile is Load over the named file.
func (r *Registry) LoadFile(path string) error {
	fh, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("heat: open registry: %w", err)
	}
	defer fh.Close()

	return r.Load(fh)
}
