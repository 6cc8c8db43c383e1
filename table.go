package combinant

import "sync"

// Visibility controls whether a compiled definition is reachable only via
// Parsec from sibling definitions (internal) or also callable directly as
// a parse entry point (public).
type Visibility int

const (
	// Internal marks a definition callable only via Parsec.
	Internal Visibility = iota
	// Public marks a definition that is also a usable entry point.
	Public
)

// cell is one slot in a Module's named parser table. It exists before its
// Parser is compiled so that Parsec nodes referencing it (including
// self-recursive and forward references within the same Module) can close
// over the cell rather than over a not-yet-built Parser.
type cell struct {
	mu         sync.RWMutex
	name       string
	visibility Visibility
	parser     *Parser
}

func (c *cell) get() *Parser {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.parser
}

func (c *cell) set(p *Parser) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parser = p
}

// registry resolves cross-module Parsec targets: Module name -> Module.
var (
	registryMu sync.RWMutex
	registry   = map[string]*Module{}
)

// Module is a named parser table: the unit Parsec targets resolve within
// or across. A Module obtained from NewModule is ready to use; the zero
// value is not, since its table is nil.
type Module struct {
	name string
	mu   sync.RWMutex
	defs map[string]*cell
}

// NewModule creates a Module and, if name is non-empty, registers it so
// other modules can reach it with a cross-module Parsec target.
func NewModule(name string) *Module {
	m := newModule(name)
	if name != "" {
		registryMu.Lock()
		registry[name] = m
		registryMu.Unlock()
	}
	return m
}

func newModule(name string) *Module {
	return &Module{name: name, defs: map[string]*cell{}}
}

// cellFor returns the cell for name, creating it if this is the first
// reference (a forward reference from a Parsec node compiled before the
// definition it names).
func (m *Module) cellFor(name string) *cell {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.defs[name]
	if !ok {
		c = &cell{name: name}
		m.defs[name] = c
	}
	return c
}

// resolve locates the cell a Target names, creating an empty local cell
// for forward references and looking up the registry for cross-module
// targets.
func (m *Module) resolve(t Target) *cell {
	if t.Module == "" {
		return m.cellFor(t.Name)
	}
	registryMu.RLock()
	target, ok := registry[t.Module]
	registryMu.RUnlock()
	if !ok {
		c := &cell{name: t.Name}
		return c
	}
	return target.cellFor(t.Name)
}

// Compile lowers p under this Module and registers it under name, so that
// Parsec("name") from other definitions in this Module (or, if this Module
// is named, from other modules) reaches it. Visibility defaults to
// Internal; pass WithPublic to also make the definition a usable direct
// entry point.
func (m *Module) Compile(name string, p Program, opts ...CompileOption) (*Parser, error) {
	cfg := compileConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	opts = append([]CompileOption{withModule(m)}, opts...)
	parser, err := Compile(name, p, opts...)
	if err != nil {
		return nil, err
	}

	c := m.cellFor(name)
	c.visibility = cfg.visibility
	c.set(parser)

	return parser, nil
}

// Link verifies every Parsec target referenced so far within this Module
// was actually compiled. It returns a *BuildError naming the first
// undefined reference found, or nil if every cell has a Parser.
func (m *Module) Link() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, c := range m.defs {
		if c.get() == nil {
			return NewBuildError("parsec target " + name + " was never compiled in module " + m.name)
		}
	}
	return nil
}

// Lookup returns the Parser registered under name, its Visibility, and
// whether a compiled Parser was found. Internal definitions are returned
// too, flagged by their Visibility, so callers can choose to reject direct
// use.
func (m *Module) Lookup(name string) (p *Parser, vis Visibility, ok bool) {
	m.mu.RLock()
	c, exists := m.defs[name]
	m.mu.RUnlock()
	if !exists {
		return nil, Internal, false
	}
	p = c.get()
	return p, c.visibility, p != nil
}
