package wizard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iddaa-lens/laundry/pkg/connectors"
	"github.com/iddaa-lens/laundry/pkg/models"
	"github.com/iddaa-lens/laundry/pkg/wizard"
)

func TestEnterFields(t *testing.T) {
	settings := []connectors.Setting{
		{Name: "tokenURL", Prompt: "Token URL?", After: connectors.OptionalURL},
		{Name: "clientId", Prompt: "Client id?", Before: connectors.WhenSet("tokenURL"), After: connectors.RequireNonBlank},
		{Name: "table", Prompt: "Table?", Before: connectors.SuggestDefault("table", "laundry_items"), After: connectors.RequireIdentifier},
		{Name: "note", Prompt: "Note?"},
	}

	tests := []struct {
		name     string
		current  models.Settings
		answers  []string
		want     models.Settings
		asked    []string
		defaults []string
	}{
		{
			name:     "skips fields whose pre-check says no",
			answers:  []string{"", "Items", "  hello\x1b[31m  "},
			want:     models.Settings{"table": "items", "note": "hello"},
			asked:    []string{"Token URL?", "Table?", "Note?"},
			defaults: []string{"", "laundry_items", ""},
		},
		{
			name:     "re-asks rejected answers",
			answers:  []string{"not a url", "https://auth.example.com/token", "", "app", "bad table!", "t1", ""},
			want:     models.Settings{"tokenURL": "https://auth.example.com/token", "clientId": "app", "table": "t1"},
			asked:    []string{"Token URL?", "Token URL?", "Client id?", "Client id?", "Table?", "Table?", "Note?"},
			defaults: []string{"", "", "", "", "laundry_items", "laundry_items", ""},
		},
		{
			name:     "current values are the defaults",
			current:  models.Settings{"table": "kept", "note": "old"},
			answers:  []string{"", "kept", "new"},
			want:     models.Settings{"table": "kept", "note": "new"},
			asked:    []string{"Token URL?", "Table?", "Note?"},
			defaults: []string{"", "kept", "old"},
		},
		{
			name:    "blank answer clears a value",
			current: models.Settings{"table": "kept", "note": "old"},
			answers: []string{"", "kept", ""},
			want:    models.Settings{"table": "kept"},
			asked:   []string{"Token URL?", "Table?", "Note?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedPrompter{answers: tt.answers}
			instance := &models.ConnectorInstance{Type: "X", Settings: tt.current}

			err := wizard.EnterFields(context.Background(), p, &models.Job{Name: "j"}, instance, settings)
			require.NoError(t, err)

			assert.Equal(t, tt.want, instance.Settings)
			assert.Empty(t, p.answers)
			assert.Equal(t, tt.asked, p.asked)
			if tt.defaults != nil {
				assert.Equal(t, tt.defaults, p.defaults)
			}
		})
	}
}

func TestEnterFields_PreCheckError(t *testing.T) {
	boom := errors.New("boom")
	settings := []connectors.Setting{{
		Name: "x",
		Before: func(context.Context, *models.Job, *models.ConnectorInstance, string) (connectors.Entry, error) {
			return connectors.Entry{}, boom
		},
	}}

	err := wizard.EnterFields(context.Background(), &scriptedPrompter{}, &models.Job{}, models.NewConnectorInstance("X"), settings)
	assert.ErrorIs(t, err, boom)
}

func TestEnterFields_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	settings := []connectors.Setting{{Name: "x", Prompt: "X?"}}
	err := wizard.EnterFields(ctx, &scriptedPrompter{answers: []string{"v"}}, &models.Job{}, models.NewConnectorInstance("X"), settings)
	assert.ErrorIs(t, err, context.Canceled)
}
