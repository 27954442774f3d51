package transport

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/adcraftlabs/adcraft/internal/content"
)

type selectProductsRequest struct {
	Request         string            `json:"request"`
	CurrentProducts []content.Product `json:"current_products"`
	ConversationID  string            `json:"conversation_id,omitempty"`
	UserID          string            `json:"user_id"`
}

type selectProductsResponse struct {
	Products       []content.Product `json:"products"`
	Action         string            `json:"action"`
	Message        string            `json:"message"`
	ConversationID string            `json:"conversation_id"`
}

// Selection is the outcome of a natural-language product selection request:
// the resulting product list, what kind of mutation the server performed,
// and an explanatory message for the chat log.
type Selection struct {
	Products []content.Product
	Action   content.SelectionAction
	Message  string
}

// SelectProducts asks the product-matching agent to mutate the current
// selection from a natural-language request ("add the sage green one").
// The server's free-form action string is narrowed to a closed enum here;
// unrecognized values surface as ActionUnknown rather than an error.
func (c *Client) SelectProducts(ctx context.Context, request string, current []content.Product, conversationID string) (Selection, error) {
	if current == nil {
		current = []content.Product{}
	}

	var resp selectProductsResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/products/select", nil, selectProductsRequest{
		Request:         request,
		CurrentProducts: current,
		ConversationID:  conversationID,
		UserID:          c.userID,
	}, &resp)
	if err != nil {
		return Selection{}, err
	}

	action := content.ParseSelectionAction(resp.Action)
	if action == content.ActionUnknown && resp.Action != "" {
		c.logger.Warn("unrecognized selection action", "action", resp.Action)
	}

	return Selection{
		Products: resp.Products,
		Action:   action,
		Message:  resp.Message,
	}, nil
}

// ProductQuery filters a catalog listing. Zero values are omitted.
type ProductQuery struct {
	Category    string
	SubCategory string
	Search      string
	Limit       int
}

type listProductsResponse struct {
	Products []content.Product `json:"products"`
	Count    int               `json:"count"`
}

// ListProducts fetches catalog entries matching the query.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]content.Product, error) {
	query := url.Values{}
	if q.Category != "" {
		query.Set("category", q.Category)
	}
	if q.SubCategory != "" {
		query.Set("sub_category", q.SubCategory)
	}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var resp listProductsResponse
	if err := c.getJSON(ctx, "/api/products", query, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}
