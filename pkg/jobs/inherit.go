package jobs

import (
	"github.com/iddaa-lens/laundry/pkg/connectors"
	"github.com/iddaa-lens/laundry/pkg/models"
)

// InheritableSettings returns the names a new instance of typeID may copy
// from related jobs: the token plus every setting its ancestors declare for mode
func InheritableSettings(catalog *connectors.Catalog, typeID string, mode models.Mode) []string {
	names := []string{connectors.TokenSetting}
	seen := map[string]bool{connectors.TokenSetting: true}

	for _, ancestor := range catalog.Ancestors(typeID) {
		capability, ok := catalog.Capability(ancestor, mode)
		if !ok {
			continue
		}
		for _, setting := range capability.Settings {
			if !seen[setting.Name] {
				seen[setting.Name] = true
				names = append(names, setting.Name)
			}
		}
	}
	return names
}

// Inherit pre-fills instance with shared settings (credentials mostly) from
// other jobs whose connector for mode is in the same family. Jobs are visited
// in registry order so the last related job wins. The job named exclude is
// skipped, and only values that are actually set are copied. It returns the
// names that were filled.
func Inherit(catalog *connectors.Catalog, jobs []*models.Job, exclude string, mode models.Mode, instance *models.ConnectorInstance) []string {
	ancestors := catalog.Ancestors(instance.Type)
	if len(ancestors) == 0 {
		return nil
	}
	names := InheritableSettings(catalog, instance.Type, mode)
	if instance.Settings == nil {
		instance.Settings = models.Settings{}
	}

	var filled []string
	copied := make(map[string]bool)
	for _, job := range jobs {
		if exclude != "" && job.Is(exclude) {
			continue
		}
		related := job.Connector(mode)
		if related == nil || !inFamily(catalog, related.Type, ancestors) {
			continue
		}
		for _, name := range names {
			if !related.Settings.Has(name) {
				continue
			}
			instance.Settings[name] = related.Settings[name]
			if !copied[name] {
				copied[name] = true
				filled = append(filled, name)
			}
		}
	}
	return filled
}

func inFamily(catalog *connectors.Catalog, typeID string, families []string) bool {
	for _, family := range families {
		if catalog.InFamily(typeID, family) {
			return true
		}
	}
	return false
}
