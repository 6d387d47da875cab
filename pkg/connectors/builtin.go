package connectors

import (
	"net/http"

	"github.com/spf13/afero"

	"github.com/iddaa-lens/laundry/pkg/database"
)

// Options configures the built-in catalog
type Options struct {
	Fs         afero.Fs
	HomeDir    string
	HTTPClient *http.Client
	Connect    database.Connector
}

// Builtin returns the catalog of connectors shipped with laundry
func Builtin(opts Options) *Catalog {
	return NewCatalog().MustRegister(
		NewHTTPFamily(),
		NewHTTPJSON(opts.HTTPClient),
		NewHTTPWebhook(opts.HTTPClient),
		NewFileFamily(opts.HomeDir),
		NewFileJSON(opts.Fs),
		NewPostgresFamily(),
		NewPostgresTable(opts.Connect),
	)
}
