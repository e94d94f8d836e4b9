package domain

// Dashboard aggregates the signed-in member's view: purchase count from the
// shop's order history, the three saved collections, and the active member
// resources. Pure read composition.
type Dashboard struct {
	PurchasedCount    int              `json:"purchased_count"`
	FavouriteProducts []CatalogItem    `json:"favourite_products"`
	SavedPrompts      []CatalogItem    `json:"saved_prompts"`
	SavedTemplates    []CatalogItem    `json:"saved_templates"`
	MemberResources   []MemberResource `json:"member_resources"`
}
