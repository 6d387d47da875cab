package jobs

import (
	"reflect"
	"testing"

	"github.com/iddaa-lens/laundry/pkg/connectors"
	"github.com/iddaa-lens/laundry/pkg/connectors/connectortest"
	"github.com/iddaa-lens/laundry/pkg/models"
)

func inheritanceCatalog() *connectors.Catalog {
	return connectors.NewCatalog().MustRegister(
		&connectortest.Family{
			ID:             "Service",
			InputSettings:  []connectors.Setting{{Name: "account"}},
			OutputSettings: []connectors.Setting{{Name: "account"}},
		},
		&connectortest.Family{
			ID:            "Service.Sub",
			Parent:        "Service",
			InputSettings: []connectors.Setting{{Name: "region"}},
		},
		connectortest.New("Service.Sub.A", "Service.Sub"),
		connectortest.New("Service.Sub.B", "Service.Sub"),
		connectortest.New("Service.Other", "Service"),
		connectortest.New("Unrelated", ""),
		connectortest.New("ServiceX", ""),
	)
}

func boundJob(name, inputType string, settings models.Settings) *models.Job {
	return &models.Job{
		Name:  name,
		Input: &models.ConnectorInstance{Type: inputType, Settings: settings},
	}
}

func TestInheritableSettings(t *testing.T) {
	catalog := inheritanceCatalog()

	got := InheritableSettings(catalog, "Service.Sub.B", models.ModeInput)
	if want := []string{"token", "region", "account"}; !reflect.DeepEqual(got, want) {
		t.Errorf("InheritableSettings() = %v, want %v", got, want)
	}

	got = InheritableSettings(catalog, "Service.Sub.B", models.ModeOutput)
	if want := []string{"token", "account"}; !reflect.DeepEqual(got, want) {
		t.Errorf("InheritableSettings(output) = %v, want %v", got, want)
	}
}

func TestInherit_SiblingToken(t *testing.T) {
	catalog := inheritanceCatalog()
	registry := []*models.Job{
		boundJob("j1", "Service.Sub.A", models.Settings{"token": "T", "url": "https://a.example.com"}),
	}

	instance := models.NewConnectorInstance("Service.Sub.B")
	filled := Inherit(catalog, registry, "j2", models.ModeInput, instance)

	if instance.Settings["token"] != "T" {
		t.Errorf("Expected token T, got %v", instance.Settings["token"])
	}
	if instance.Settings.Has("url") {
		t.Error("Type-specific settings must not be inherited")
	}
	if !reflect.DeepEqual(filled, []string{"token"}) {
		t.Errorf("filled = %v", filled)
	}
}

func TestInherit_FamilyAndOrder(t *testing.T) {
	catalog := inheritanceCatalog()
	registry := []*models.Job{
		boundJob("first", "Service.Other", models.Settings{"account": "acc-1", "token": "T1"}),
		boundJob("unrelated", "Unrelated", models.Settings{"token": "nope"}),
		boundJob("lookalike", "ServiceX", models.Settings{"token": "nope"}),
		boundJob("second", "Service.Sub.A", models.Settings{"token": "T2", "region": "eu"}),
		boundJob("self", "Service.Sub.A", models.Settings{"token": "mine"}),
		boundJob("empty", "Service.Sub.A", models.Settings{"token": ""}),
		{Name: "no-input"},
	}

	instance := models.NewConnectorInstance("Service.Sub.B")
	Inherit(catalog, registry, "self", models.ModeInput, instance)

	want := models.Settings{"account": "acc-1", "token": "T2", "region": "eu"}
	if !reflect.DeepEqual(instance.Settings, want) {
		t.Errorf("Settings = %v, want %v", instance.Settings, want)
	}
}

func TestInherit_ModeMatters(t *testing.T) {
	catalog := inheritanceCatalog()
	registry := []*models.Job{
		{
			Name:   "out",
			Output: &models.ConnectorInstance{Type: "Service.Sub.A", Settings: models.Settings{"token": "T"}},
		},
	}

	instance := models.NewConnectorInstance("Service.Sub.B")
	Inherit(catalog, registry, "", models.ModeInput, instance)
	if instance.Settings.Has("token") {
		t.Error("Output instances must not feed input inheritance")
	}
}

func TestInherit_RootTypeInheritsNothing(t *testing.T) {
	catalog := inheritanceCatalog()
	registry := []*models.Job{boundJob("j1", "Unrelated", models.Settings{"token": "T"})}

	instance := models.NewConnectorInstance("Unrelated")
	if filled := Inherit(catalog, registry, "", models.ModeInput, instance); filled != nil {
		t.Errorf("Expected nothing inherited, got %v", filled)
	}
}
