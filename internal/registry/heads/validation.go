package heads

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

var nameFolder = cases.Fold()

// foldName canonicalises a head name for case-insensitive comparison.
func foldName(name string) string {
	return nameFolder.String(strings.TrimSpace(name))
}

func (s *Service) validate(name string, kind Kind) error {
	if strings.TrimSpace(name) == "" {
		return shared.InvalidArgument("name", "head name is required")
	}
	if !kind.Valid() {
		return shared.InvalidArgument("kind", "unknown head kind")
	}
	return nil
}
