package gifts

import (
	"iter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Gift is a purchasable item of the registry. Price is in centavos.
type Gift struct {
	ID          int
	Title       string
	PriceCents  int64
	Image       string
	PurchaseURL string
}

// Catalog is a fixed, ordered list of gifts.
type Catalog struct {
	gifts   []Gift
	printer *message.Printer
}

// NewCatalog creates a catalog over gifts, formatting prices for Brazil.
func NewCatalog(gifts []Gift) *Catalog {
	return &Catalog{
		gifts:   append([]Gift(nil), gifts...),
		printer: message.NewPrinter(language.BrazilianPortuguese),
	}
}

// All yields every gift in catalog order. Each call starts from the first gift.
func (c *Catalog) All() iter.Seq[Gift] {
	return func(yield func(Gift) bool) {
		for _, g := range c.gifts {
			if !yield(g) {
				return
			}
		}
	}
}

// Lookup returns the gift with the given id.
func (c *Catalog) Lookup(id int) (Gift, bool) {
	for _, g := range c.gifts {
		if g.ID == id {
			return g, true
		}
	}
	return Gift{}, false
}

// FormatPrice renders the gift price as Brazilian reais, e.g. "R$ 491,71".
func (c *Catalog) FormatPrice(g Gift) string {
	return c.printer.Sprintf("R$ %v", number.Decimal(float64(g.PriceCents)/100, number.Scale(2)))
}

const mercadoPago = "https://www.mercadopago.com.br"

// Default is the couple's gift list.
func Default() *Catalog {
	return NewCatalog([]Gift{
		{ID: 1, Title: "Brinde da noite de núpcias", PriceCents: 49171, Image: "https://images.unsplash.com/photo-1513151233558-d860c5398176?q=80&w=500", PurchaseURL: mercadoPago},
		{ID: 2, Title: "Brunch honeymoon no quarto", PriceCents: 26849, Image: "https://images.unsplash.com/photo-1533089860892-a7c6f0a88666?q=80&w=500", PurchaseURL: mercadoPago},
		{ID: 3, Title: "Café da manhã romântico", PriceCents: 36165, Image: "https://images.unsplash.com/photo-1495214781650-648ac8046fe1?q=80&w=500", PurchaseURL: mercadoPago},
		{ID: 4, Title: "Churrasqueira Elétrica", PriceCents: 25000, Image: "https://images.unsplash.com/photo-1555507036-ab1f4038808a?q=80&w=500", PurchaseURL: mercadoPago},
	})
}
