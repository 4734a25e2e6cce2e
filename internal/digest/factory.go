package digest

import (
	"fmt"
	"net/http"

	"github.com/bianoble/gist-crawler/internal/config"
)

// DefaultCommand invokes gitingest on the working copy.
var DefaultCommand = []string{"gitingest", "{{.CodeDir}}", "--output", "{{.Output}}"}

// FromConfig builds the generator selected by cfg.Type.
func FromConfig(cfg config.GeneratorConfig) (Generator, error) {
	switch cfg.Type {
	case config.GeneratorCommand, "":
		args := cfg.Command
		if len(args) == 0 {
			args = DefaultCommand
		}
		return NewCommandGenerator(args, cfg.Timeout)
	case config.GeneratorHTTP:
		limit, err := cfg.MaxBytes()
		if err != nil {
			return nil, err
		}
		return &HTTPGenerator{
			Endpoint: cfg.Endpoint,
			Client:   &http.Client{},
			MaxSize:  limit,
			Timeout:  cfg.Timeout,
		}, nil
	case config.GeneratorNone:
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("%w '%s'", config.ErrUnknownGenerator, cfg.Type)
	}
}
