package loam

import "github.com/aretw0/espalier/internal/catalog"

// SpecMetadata is the frontmatter header of a catalog document. The parsing
// rules are shared with the manifest loader in internal/catalog.
type SpecMetadata = catalog.Metadata

// PortEntry is one declared port. Type accepts either a plain string (the id
// doubles as the display name) or an id/name mapping.
type PortEntry = catalog.PortEntry
