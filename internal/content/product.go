package content

// Product is one catalog entry the user can attach to a generation request.
type Product struct {
	SKU         string   `json:"sku"`
	ProductName string   `json:"product_name"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	HexValue    string   `json:"hex_value,omitempty"`
}

// Key returns the identity used for selection-set uniqueness: the SKU when
// present, otherwise the product name.
func (p Product) Key() string {
	if p.SKU != "" {
		return p.SKU
	}
	return p.ProductName
}

// SelectionAction is the closed set of product-list mutations reported by
// the selection endpoint. The server sends a free-form string; unrecognized
// values map to ActionUnknown rather than failing the selection.
type SelectionAction int

// Selection actions.
const (
	ActionUnknown SelectionAction = iota
	ActionAdded
	ActionRemoved
	ActionReplaced
	ActionNoMatch
)

// ParseSelectionAction maps the server's action string to a SelectionAction.
func ParseSelectionAction(s string) SelectionAction {
	switch s {
	case "added", "add":
		return ActionAdded
	case "removed", "remove":
		return ActionRemoved
	case "replaced", "replace":
		return ActionReplaced
	case "no_match", "none":
		return ActionNoMatch
	default:
		return ActionUnknown
	}
}

// String returns the canonical name of the action.
func (a SelectionAction) String() string {
	switch a {
	case ActionAdded:
		return "added"
	case ActionRemoved:
		return "removed"
	case ActionReplaced:
		return "replaced"
	case ActionNoMatch:
		return "no_match"
	default:
		return "unknown"
	}
}
