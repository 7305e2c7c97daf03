package nodes

// Graph node keys.
const (
	NodeInput        = "Input"
	NodeCredentials  = "Credentials"
	NodeQueryBuilder = "QueryBuilder"
	NodeCatalog      = "CatalogSearch"
	NodeIntent       = "IntentEngine"
	NodeParser       = "ResponseParser"
	NodeMaterializer = "ActionMaterializer"
	NodeValidator    = "ActionValidator"
)

// Operator-facing messages for degraded turns.
const (
	MessageCatalogNotConnected = "The product catalog is not connected for this store yet, so I cannot look anything up. Please check the catalog connection settings."
	MessageNoProductsFound     = "I could not find any products in the catalog matching: %s."
	MessageGenerationFailed    = "I could not process this request right now. Please try again in a moment."
	NoteProductNotFound        = "I could not find the product in the catalog, so no change was prepared."
	NoteNoMatchingVariations   = "No variations of %s match width %q, so no change was prepared."
	NoteVariationsUnavailable  = "The variations of %s could not be loaded, so no price change was prepared."
)
