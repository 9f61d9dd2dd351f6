package types

// ResourceInfo is a low-level DTO for an API Gateway path-tree node.
type ResourceInfo struct {
	ResourceID string `json:"resource_id"`
	ParentID   string `json:"parent_id,omitempty"`
	Path       string `json:"path"`
	PathPart   string `json:"path_part,omitempty"`
}
