package tablewatcher

import "github.com/bft-labs/viscactl/pkg/viscactl"

// WithTableWatcher returns a viscactl Option that reloads the command table
// whenever the YAML table file changes.
//
// Usage:
//
//	ctrl, err := viscactl.New(cfg,
//	    tablewatcher.WithTableWatcher(tablewatcher.Config{
//	        Path:          "table.yaml",
//	        DebounceDelay: 200 * time.Millisecond,
//	    }),
//	)
func WithTableWatcher(cfg Config) viscactl.Option {
	return viscactl.WithPlugin(New(cfg))
}
