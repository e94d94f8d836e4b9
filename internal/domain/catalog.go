package domain

// CatalogKind identifies which saved/favourite collection an item belongs
// to. Products, prompts and templates are owned by other subsystems; this
// service only resolves them by identifier and tests membership.
type CatalogKind string

const (
	KindProduct  CatalogKind = "product"
	KindPrompt   CatalogKind = "prompt"
	KindTemplate CatalogKind = "template"
)

// AddedStatus is the status word reported when an item enters the
// collection. Products historically report "added", prompts and templates
// report "saved"; removal always reports "removed".
func (k CatalogKind) AddedStatus() string {
	if k == KindProduct {
		return "added"
	}
	return "saved"
}

const StatusRemoved = "removed"

type CatalogItem struct {
	ID    int64       `json:"id"`
	Kind  CatalogKind `json:"kind"`
	Slug  string      `json:"slug,omitempty"`
	Title string      `json:"title"`
}

// ToggleResult describes the outcome of a favourite/saved toggle.
type ToggleResult struct {
	Status   string       `json:"status"`
	IsMember bool         `json:"is_member"`
	Item     *CatalogItem `json:"item"`
}
