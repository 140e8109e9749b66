package shopify

import (
	"fmt"

	"github.com/semanticpay/shopagent/catalog"
	"github.com/semanticpay/shopagent/storefront"
)

const searchProductsQuery = `
query searchProducts($query: String!, $first: Int!, $sortKey: ProductSortKeys!, $reverse: Boolean!) {
  products(query: $query, first: $first, sortKey: $sortKey, reverse: $reverse) {
    edges {
      node {
        id
        title
        description
        images(first: 1) {
          edges {
            node { url }
          }
        }
        variants(first: 1) {
          edges {
            node {
              id
              price { amount currencyCode }
            }
          }
        }
        priceRange {
          minVariantPrice { amount currencyCode }
        }
      }
    }
  }
}`

const getProductQuery = `
query getProduct($id: ID!) {
  product(id: $id) {
    id
    title
    description
    images(first: 1) {
      edges {
        node { url }
      }
    }
    variants(first: 1) {
      edges {
        node {
          id
          price { amount currencyCode }
        }
      }
    }
    priceRange {
      minVariantPrice { amount currencyCode }
    }
  }
}`

const cartCreateMutation = `
mutation cartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart {
      id
      checkoutUrl
      cost {
        subtotalAmount { amount currencyCode }
        totalTaxAmount { amount currencyCode }
        totalAmount { amount currencyCode }
      }
    }
    userErrors { field message }
    warnings { message }
  }
}`

const cartGetQuery = `
query cartGet($id: ID!) {
  cart(id: $id) {
    id
    checkoutUrl
    cost {
      subtotalAmount { amount currencyCode }
      totalTaxAmount { amount currencyCode }
      totalAmount { amount currencyCode }
    }
  }
}`

// priceNode is the Storefront API money shape: string amount + currency code.
type priceNode struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

func (n priceNode) price() (catalog.Price, error) {
	return catalog.NewPrice(n.Amount, n.CurrencyCode)
}

type productNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Images      struct {
		Edges []struct {
			Node struct {
				URL string `json:"url"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node struct {
				ID    string    `json:"id"`
				Price priceNode `json:"price"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	PriceRange struct {
		MinVariantPrice priceNode `json:"minVariantPrice"`
	} `json:"priceRange"`
}

// snapshot flattens the GraphQL connection shape into the engine's snapshot.
// The first variant carries the purchasable merchandise id; products without
// variants fall back to the minimum variant price.
func (n productNode) snapshot() (catalog.ProductSnapshot, error) {
	snapshot := catalog.ProductSnapshot{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
	}
	if len(n.Images.Edges) > 0 {
		snapshot.ImageURL = n.Images.Edges[0].Node.URL
	}
	if len(n.Variants.Edges) > 0 {
		variant := n.Variants.Edges[0].Node
		snapshot.VariantID = variant.ID
		price, err := variant.Price.price()
		if err != nil {
			return catalog.ProductSnapshot{}, fmt.Errorf("product %s: %w", n.ID, err)
		}
		snapshot.Price = price
		return snapshot, nil
	}
	price, err := n.PriceRange.MinVariantPrice.price()
	if err != nil {
		return catalog.ProductSnapshot{}, fmt.Errorf("product %s: %w", n.ID, err)
	}
	snapshot.Price = price
	return snapshot, nil
}

type cartNode struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkoutUrl"`
	Cost        struct {
		SubtotalAmount priceNode  `json:"subtotalAmount"`
		TotalTaxAmount *priceNode `json:"totalTaxAmount"`
		TotalAmount    priceNode  `json:"totalAmount"`
	} `json:"cost"`
}

func (n cartNode) remoteCart() (storefront.RemoteCart, error) {
	subtotal, err := n.Cost.SubtotalAmount.price()
	if err != nil {
		return storefront.RemoteCart{}, fmt.Errorf("cart %s subtotal: %w", n.ID, err)
	}
	total, err := n.Cost.TotalAmount.price()
	if err != nil {
		return storefront.RemoteCart{}, fmt.Errorf("cart %s total: %w", n.ID, err)
	}
	cart := storefront.RemoteCart{
		ID:          n.ID,
		CheckoutURL: n.CheckoutURL,
		Subtotal:    subtotal,
		Total:       total,
	}
	if n.Cost.TotalTaxAmount != nil {
		tax, err := n.Cost.TotalTaxAmount.price()
		if err != nil {
			return storefront.RemoteCart{}, fmt.Errorf("cart %s tax: %w", n.ID, err)
		}
		cart.Tax = &tax
	}
	return cart, nil
}
