package kgraph

// Category classifies an entity node.
type Category string

const (
	Diseases      Category = "diseases"
	Symptoms      Category = "symptoms"
	Treatments    Category = "treatments"
	Anatomy       Category = "anatomy"
	MedicalEntity Category = "medical_entity"
	RelatedEntity Category = "related_entity"
)

// ExtractedCategories are the categories produced by text extraction, in
// extraction order.
var ExtractedCategories = []Category{Diseases, Symptoms, Treatments, Anatomy}

// Provenance records which source last tagged a node.
type Provenance string

const (
	ProvenancePDF      Provenance = "pdf"
	ProvenanceBioRED   Provenance = "biored"
	ProvenanceExternal Provenance = "external"
)

// Unknown labels nodes created implicitly by AddEdge in stats breakdowns.
const Unknown = "unknown"

// MinNameLength is the shortest accepted normalized node name.
const MinNameLength = 3

// Node is an entity in the graph. Out and In hold indexes into the edge arena.
type Node struct {
	Name       string
	Category   Category
	Provenance Provenance

	out []int
	in  []int
}

// Edge is a directed, labeled link between two node indexes.
type Edge struct {
	Source   int
	Relation string
	Target   int
}

// Neighbor is one end of an edge seen from a node.
type Neighbor struct {
	Relation string
	Name     string
}

// Stats summarizes the graph.
type Stats struct {
	NodeCount           int            `json:"node_count"`
	EdgeCount           int            `json:"edge_count"`
	DistinctCategories  int            `json:"distinct_categories"`
	CategoryBreakdown   map[string]int `json:"category_breakdown"`
	ProvenanceBreakdown map[string]int `json:"provenance_breakdown"`
}

// ExternalStats is the stats shape exposed to callers of the stats API.
type ExternalStats struct {
	Nodes           int            `json:"nodes"`
	Edges           int            `json:"edges"`
	NodeTypes       int            `json:"node_types"`
	TypeBreakdown   map[string]int `json:"type_breakdown"`
	SourceBreakdown map[string]int `json:"source_breakdown"`
}

// External converts s to the external stats shape.
func (s Stats) External() ExternalStats {
	return ExternalStats{
		Nodes:           s.NodeCount,
		Edges:           s.EdgeCount,
		NodeTypes:       s.DistinctCategories,
		TypeBreakdown:   s.CategoryBreakdown,
		SourceBreakdown: s.ProvenanceBreakdown,
	}
}
