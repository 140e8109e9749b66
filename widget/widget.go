// Package widget turns tool outputs into renderable UI widgets. The server
// returns widgets alongside the assistant's answer so clients can show
// product cards, cart summaries, and category sections without parsing text.
package widget

import (
	"sort"

	"github.com/semanticpay/shopagent/catalog"
	"github.com/semanticpay/shopagent/checkout"
	"github.com/semanticpay/shopagent/storefront"
)

// Type enumerates the widget kinds clients know how to render.
type Type string

const (
	TypeProduct        Type = "PRODUCT"
	TypeCart           Type = "CART"
	TypeProductSection Type = "PRODUCT_SECTION"
)

// Widget is a tagged union: exactly one of the data fields is set, matching
// Type.
type Widget struct {
	Type    Type         `json:"type"`
	Product *ProductView `json:"product,omitempty"`
	Cart    *CartSummary `json:"cart,omitempty"`
	Section *SectionView `json:"product_section,omitempty"`
}

// ProductView is the renderable shape of one product.
type ProductView struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	Price        string `json:"price"`
	CurrencyCode string `json:"currency_code"`
}

// NewProductView projects a catalog snapshot into its renderable shape.
func NewProductView(snapshot catalog.ProductSnapshot) ProductView {
	return ProductView{
		ID:           snapshot.ID,
		Title:        snapshot.Title,
		Description:  snapshot.Description,
		ImageURL:     snapshot.ImageURL,
		Price:        snapshot.Price.Amount.StringFixed(2),
		CurrencyCode: snapshot.Price.CurrencyCode,
	}
}

// CartLineView is one line of a cart summary.
type CartLineView struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	ImageURL  string `json:"image_url,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// CartSummary combines the session's cart lines with the provider's totals.
type CartSummary struct {
	CartID       string         `json:"cart_id"`
	CheckoutURL  string         `json:"checkout_url,omitempty"`
	Lines        []CartLineView `json:"lines"`
	Subtotal     string         `json:"subtotal"`
	Tax          string         `json:"tax,omitempty"`
	Total        string         `json:"total"`
	CurrencyCode string         `json:"currency_code"`
}

// CartLineViews projects local cart entries, ordered by product id for
// deterministic output.
func CartLineViews(entries map[string]checkout.LocalCartEntry) []CartLineView {
	out := make([]CartLineView, 0, len(entries))
	for id, entry := range entries {
		out = append(out, CartLineView{
			ProductID: id,
			Title:     entry.Product.Title,
			ImageURL:  entry.Product.ImageURL,
			Quantity:  entry.Quantity,
			UnitPrice: entry.Product.Price.Amount.StringFixed(2),
		})
	}
	sortLines(out)
	return out
}

// NewCartSummary builds a cart summary from local lines and the reconciled
// remote cart.
func NewCartSummary(remote storefront.RemoteCart, lines []CartLineView) CartSummary {
	summary := CartSummary{
		CartID:       remote.ID,
		CheckoutURL:  remote.CheckoutURL,
		Lines:        lines,
		Subtotal:     remote.Subtotal.Amount.StringFixed(2),
		Total:        remote.Total.Amount.StringFixed(2),
		CurrencyCode: remote.Total.CurrencyCode,
	}
	if remote.Tax != nil {
		summary.Tax = remote.Tax.Amount.StringFixed(2)
	}
	return summary
}

// SectionView is a curated category expanded into its products.
type SectionView struct {
	Title       string        `json:"title"`
	Subtitle    string        `json:"subtitle,omitempty"`
	Description string        `json:"description,omitempty"`
	Products    []ProductView `json:"products"`
}

// NewSectionView projects a catalog product section into its renderable shape.
func NewSectionView(section catalog.ProductSection) SectionView {
	products := make([]ProductView, 0, len(section.Products))
	for _, snapshot := range section.Products {
		products = append(products, NewProductView(snapshot))
	}
	return SectionView{
		Title:       section.Title,
		Subtitle:    section.Subtitle,
		Description: section.Description,
		Products:    products,
	}
}

func sortLines(lines []CartLineView) {
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID < lines[j].ProductID
	})
}
