package generator

import (
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-sitebuilder/internal/domain"
)

// DefaultExportName anchors the filename fallback chain when every input is
// blank.
const DefaultExportName = "website"

// ExportFilename builds the download name for an exported artifact. The
// business name wins; a blank one falls through to the project name, then
// the template slug, then a generic default. The stem is slugified so the
// name survives every filesystem.
func ExportFilename(info domain.BusinessInfo, projectName, templateSlug string) string {
	candidates := []string{
		info.Name,
		projectName,
		templateSlug,
		DefaultExportName,
	}
	for _, candidate := range candidates {
		stem, err := slug.Normalize(strings.TrimSpace(candidate))
		if err == nil && stem != "" {
			return stem + ".html"
		}
	}
	return DefaultExportName + ".html"
}
