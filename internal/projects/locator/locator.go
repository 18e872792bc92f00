// Package locator resolves named results inside a registered project.
package locator

import (
	"strings"

	"github.com/sciome/bmdexpress-web/internal/apperr"
	"github.com/sciome/bmdexpress-web/internal/projects/domain"
	"github.com/sciome/bmdexpress-web/internal/projects/registry"
)

// FindNamed returns the first result of kind whose name equals name,
// ignoring case.
func FindNamed(s *registry.Session, kind domain.ResultKind, name string) (domain.Result, error) {
	if s != nil {
		for _, r := range s.Project.Results(kind) {
			if strings.EqualFold(r.ResultName(), name) {
				return r, nil
			}
		}
	}
	return nil, apperr.NotFound("%s result %q not found", kind, name)
}

// ListNames returns the names of the results of kind in project order.
func ListNames(s *registry.Session, kind domain.ResultKind) []string {
	names := []string{}
	if s == nil {
		return names
	}
	for _, r := range s.Project.Results(kind) {
		names = append(names, r.ResultName())
	}
	return names
}
