package connectors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iddaa-lens/laundry/pkg/models"
)

// Catalog is the registry of connector types, linked by explicit parent ids
type Catalog struct {
	types map[string]Connector
	order []string
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{types: make(map[string]Connector)}
}

// Register adds a connector type. Parents must be registered before children.
func (c *Catalog) Register(conn Connector) error {
	if conn == nil {
		return fmt.Errorf("connector cannot be nil")
	}
	id := conn.TypeID()
	if id == "" {
		return fmt.Errorf("connector type id cannot be empty")
	}
	if _, exists := c.types[id]; exists {
		return fmt.Errorf("connector type %q already registered", id)
	}
	if parent := conn.ParentTypeID(); parent != "" {
		if _, ok := c.types[parent]; !ok {
			return fmt.Errorf("connector type %q has unknown parent %q", id, parent)
		}
	}

	c.types[id] = conn
	c.order = append(c.order, id)
	return nil
}

// MustRegister registers every connector and panics on error; used for static catalogs
func (c *Catalog) MustRegister(conns ...Connector) *Catalog {
	for _, conn := range conns {
		if err := c.Register(conn); err != nil {
			panic(err)
		}
	}
	return c
}

// Get returns the connector type registered under id
func (c *Catalog) Get(id string) (Connector, bool) {
	conn, ok := c.types[id]
	return conn, ok
}

// Ancestors lists the strictly more general types of id, nearest first
func (c *Catalog) Ancestors(id string) []string {
	var ancestors []string
	seen := map[string]bool{id: true}

	conn, ok := c.types[id]
	for ok {
		parent := conn.ParentTypeID()
		if parent == "" || seen[parent] {
			break
		}
		seen[parent] = true
		ancestors = append(ancestors, parent)
		conn, ok = c.types[parent]
	}
	return ancestors
}

// InFamily reports whether id is family or has family among its ancestors
func (c *Catalog) InFamily(id, family string) bool {
	if id == family {
		return true
	}
	for _, ancestor := range c.Ancestors(id) {
		if ancestor == family {
			return true
		}
	}
	return false
}

// Capability returns the own (non-inherited) capability of a type for a mode
func (c *Catalog) Capability(id string, mode models.Mode) (Capability, bool) {
	conn, ok := c.types[id]
	if !ok {
		return Capability{}, false
	}
	return capabilityOf(conn, mode)
}

func capabilityOf(conn Connector, mode models.Mode) (Capability, bool) {
	switch mode {
	case models.ModeInput:
		if in, ok := conn.(SupportsInput); ok {
			return in.Input(), true
		}
	case models.ModeOutput:
		if out, ok := conn.(SupportsOutput); ok {
			return out.Output(), true
		}
	}
	return Capability{}, false
}

// Settings returns the effective schema of a type for a mode: the settings of its
// ancestors, most general first, followed by its own. Later declarations of a name win.
func (c *Catalog) Settings(id string, mode models.Mode) []Setting {
	chain := append([]string{id}, c.Ancestors(id)...)

	var schema []Setting
	index := make(map[string]int)
	for i := len(chain) - 1; i >= 0; i-- {
		capability, ok := c.Capability(chain[i], mode)
		if !ok {
			continue
		}
		for _, setting := range capability.Settings {
			if pos, exists := index[setting.Name]; exists {
				schema[pos] = setting
				continue
			}
			index[setting.Name] = len(schema)
			schema = append(schema, setting)
		}
	}
	return schema
}

// Allowed returns the setting names an instance of id may carry for mode
func (c *Catalog) Allowed(id string, mode models.Mode) map[string]bool {
	allowed := map[string]bool{TokenSetting: true}
	for _, setting := range c.Settings(id, mode) {
		allowed[setting.Name] = true
	}
	return allowed
}

// ValidateInstance checks the instance's type can serve mode and that it only
// carries declared settings
func (c *Catalog) ValidateInstance(instance *models.ConnectorInstance, mode models.Mode) error {
	if instance == nil {
		return fmt.Errorf("no %s connector configured", mode)
	}
	conn, ok := c.types[instance.Type]
	if !ok {
		return fmt.Errorf("unknown connector type %q", instance.Type)
	}
	if !selectable(conn, mode) {
		return fmt.Errorf("connector %q does not support %s", instance.Type, mode)
	}

	allowed := c.Allowed(instance.Type, mode)
	var unknown []string
	for name := range instance.Settings {
		if !allowed[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("connector %q does not declare settings: %s", instance.Type, strings.Join(unknown, ", "))
	}
	return nil
}

// Selectable lists the types a job can bind for mode, sorted by display name
func (c *Catalog) Selectable(mode models.Mode) []Connector {
	var result []Connector
	for _, id := range c.order {
		if conn := c.types[id]; selectable(conn, mode) {
			result = append(result, conn)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// ByName finds a selectable type by display name or type id, ignoring case
func (c *Catalog) ByName(mode models.Mode, name string) (Connector, bool) {
	name = strings.TrimSpace(name)
	for _, conn := range c.Selectable(mode) {
		if strings.EqualFold(conn.Name(), name) || strings.EqualFold(conn.TypeID(), name) {
			return conn, true
		}
	}
	return nil, false
}

// Fetcher resolves the input implementation for a type id
func (c *Catalog) Fetcher(id string) (Fetcher, error) {
	conn, ok := c.types[id]
	if !ok {
		return nil, fmt.Errorf("unknown connector type %q", id)
	}
	fetcher, ok := conn.(Fetcher)
	if !ok {
		return nil, fmt.Errorf("connector %q cannot be used as input", id)
	}
	return fetcher, nil
}

// Pusher resolves the output implementation for a type id
func (c *Catalog) Pusher(id string) (Pusher, error) {
	conn, ok := c.types[id]
	if !ok {
		return nil, fmt.Errorf("unknown connector type %q", id)
	}
	pusher, ok := conn.(Pusher)
	if !ok {
		return nil, fmt.Errorf("connector %q cannot be used as output", id)
	}
	return pusher, nil
}

// Describe returns the description shown when choosing a connector
func (c *Catalog) Describe(id string, mode models.Mode) string {
	capability, ok := c.Capability(id, mode)
	if !ok {
		return ""
	}
	return capability.Description
}

func selectable(conn Connector, mode models.Mode) bool {
	switch mode {
	case models.ModeInput:
		_, ok := conn.(Fetcher)
		return ok
	case models.ModeOutput:
		_, ok := conn.(Pusher)
		return ok
	}
	return false
}
