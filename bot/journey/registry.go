package journey

import (
	"errors"
	"fmt"
	"strings"
)

// DashboardPrefix routes step ids to the dashboard registry.
const DashboardPrefix = "db."

// Registry is a static mapping from step id to step definition.
type Registry struct {
	name    string
	initial StepID
	steps   map[StepID]*Step
	order   []StepID
	dups    []StepID
}

// NewRegistry builds a registry. Duplicate ids are reported by Catalog.Validate.
func NewRegistry(name string, initial StepID, steps ...Step) *Registry {
	r := &Registry{
		name:    name,
		initial: initial,
		steps:   make(map[StepID]*Step, len(steps)),
	}
	for i := range steps {
		st := steps[i]
		if _, ok := r.steps[st.ID]; ok {
			r.dups = append(r.dups, st.ID)
			continue
		}
		r.steps[st.ID] = &st
		r.order = append(r.order, st.ID)
	}
	return r
}

func (r *Registry) Name() string    { return r.name }
func (r *Registry) Initial() StepID { return r.initial }
func (r *Registry) Len() int        { return len(r.order) }

// Lookup returns a step by its id.
func (r *Registry) Lookup(id StepID) (*Step, bool) {
	st, ok := r.steps[id]
	return st, ok
}

// Steps returns the steps in declaration order.
func (r *Registry) Steps() []*Step {
	out := make([]*Step, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.steps[id])
	}
	return out
}

// Catalog joins the primary journey registry with the dashboard registry
// for one product line.
type Catalog struct {
	product     string
	primary     *Registry
	dashboard   *Registry
	fallback    StepID
	initialData func() Patch
	modules     []Module
}

// NewCatalog assembles a catalog. dashboard may be nil.
func NewCatalog(product string, primary, dashboard *Registry, fallback StepID, initialData func() Patch) *Catalog {
	return &Catalog{
		product:     product,
		primary:     primary,
		dashboard:   dashboard,
		fallback:    fallback,
		initialData: initialData,
	}
}

func (c *Catalog) Product() string  { return c.product }
func (c *Catalog) Initial() StepID  { return c.primary.Initial() }
func (c *Catalog) Fallback() StepID { return c.fallback }

// InitialData returns a fresh copy of the product's initial state fields.
func (c *Catalog) InitialData() Patch {
	if c.initialData == nil {
		return Patch{}
	}
	return c.initialData()
}

// Lookup resolves a step id against the registry its prefix selects.
func (c *Catalog) Lookup(id StepID) (*Step, bool) {
	if strings.HasPrefix(string(id), DashboardPrefix) {
		if c.dashboard == nil {
			return nil, false
		}
		return c.dashboard.Lookup(id)
	}
	return c.primary.Lookup(id)
}

// Steps returns every step of both registries.
func (c *Catalog) Steps() []*Step {
	out := c.primary.Steps()
	if c.dashboard != nil {
		out = append(out, c.dashboard.Steps()...)
	}
	return out
}

// Validate checks the implicit graph: no duplicate ids, ids live in the registry
// their prefix routes to, every declared edge resolves, and every step is
// reachable from the initial or the fallback step.
func (c *Catalog) Validate() error {
	var errs []error

	registries := []*Registry{c.primary}
	if c.dashboard != nil {
		registries = append(registries, c.dashboard)
	}
	for i, reg := range registries {
		for _, id := range reg.dups {
			errs = append(errs, fmt.Errorf("%s: duplicate step %q", reg.name, id))
		}
		dashboard := i == 1
		for _, st := range reg.Steps() {
			if strings.HasPrefix(string(st.ID), DashboardPrefix) != dashboard {
				errs = append(errs, fmt.Errorf("%s: step %q is in the wrong registry for its prefix", reg.name, st.ID))
			}
			for _, to := range st.Edges() {
				if _, ok := c.Lookup(to); !ok {
					errs = append(errs, fmt.Errorf("%s: step %q points to unknown step %q", reg.name, st.ID, to))
				}
			}
		}
	}

	roots := []StepID{c.Initial()}
	if c.fallback != "" {
		roots = append(roots, c.fallback)
	}
	visited := make(map[StepID]bool)
	for _, root := range roots {
		if _, ok := c.Lookup(root); !ok {
			errs = append(errs, fmt.Errorf("root step %q is not registered", root))
			continue
		}
		c.markReachable(root, visited)
	}
	for _, st := range c.Steps() {
		if !visited[st.ID] {
			errs = append(errs, fmt.Errorf("step %q is unreachable", st.ID))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s: %w", ErrInvalidGraph, c.product, errors.Join(errs...))
	}
	return nil
}

func (c *Catalog) markReachable(id StepID, visited map[StepID]bool) {
	stack := []StepID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		st, ok := c.Lookup(cur)
		if !ok {
			continue
		}
		visited[cur] = true
		stack = append(stack, st.Edges()...)
	}
}

// GraphNode is a step as exported by Graph.
type GraphNode struct {
	ID       StepID     `json:"id"`
	Module   Module     `json:"module"`
	Widget   WidgetType `json:"widget"`
	Guarded  bool       `json:"guarded"`
	Registry string     `json:"registry"`
}

// GraphEdge is a declared transition.
type GraphEdge struct {
	From StepID `json:"from"`
	To   StepID `json:"to"`
}

// Graph is the explicit form of the step graph.
type Graph struct {
	Product  string      `json:"product"`
	Initial  StepID      `json:"initial"`
	Fallback StepID      `json:"fallback"`
	Nodes    []GraphNode `json:"nodes"`
	Edges    []GraphEdge `json:"edges"`
}

// Graph exports nodes and statically declared edges.
func (c *Catalog) Graph() Graph {
	g := Graph{Product: c.product, Initial: c.Initial(), Fallback: c.fallback}
	registries := []*Registry{c.primary}
	if c.dashboard != nil {
		registries = append(registries, c.dashboard)
	}
	for _, reg := range registries {
		for _, st := range reg.Steps() {
			g.Nodes = append(g.Nodes, GraphNode{
				ID:       st.ID,
				Module:   st.Module,
				Widget:   st.Widget,
				Guarded:  st.Condition != nil,
				Registry: reg.name,
			})
			for _, to := range st.Edges() {
				g.Edges = append(g.Edges, GraphEdge{From: st.ID, To: to})
			}
		}
	}
	return g
}
