package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product is the catalog entry a line is snapshotted from.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Ingredients []string        `json:"ingredients,omitempty"`
}

// Line is one product entry with the price captured when it was added.
type Line struct {
	ProductID   int64
	DisplayName string
	UnitPrice   decimal.Decimal
	Quantity    int
	ImageRef    string
	Ingredients []string
}

// Subtotal returns UnitPrice × Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// storedLine is the persisted shape; field names match the storefront's existing carts.
type storedLine struct {
	ID          int64           `json:"id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Ingredients []string        `json:"ingredients,omitempty"`
	Quantity    int             `json:"quantity"`
}

// MarshalJSON encodes the line in its persisted shape.
func (l Line) MarshalJSON() ([]byte, error) {
	return json.Marshal(storedLine{
		ID:          l.ProductID,
		ProductName: l.DisplayName,
		Price:       l.UnitPrice,
		Image:       l.ImageRef,
		Ingredients: l.Ingredients,
		Quantity:    l.Quantity,
	})
}

// UnmarshalJSON decodes the persisted shape. Prices may be JSON numbers or strings.
func (l *Line) UnmarshalJSON(data []byte) error {
	var raw storedLine
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Line{
		ProductID:   raw.ID,
		DisplayName: raw.ProductName,
		UnitPrice:   raw.Price,
		ImageRef:    raw.Image,
		Ingredients: raw.Ingredients,
		Quantity:    raw.Quantity,
	}
	return nil
}

// Cart is an ordered list of lines. Totals are always derived, never stored.
type Cart struct {
	Lines []Line
}

// Total returns the sum of every line subtotal.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ItemCount returns the sum of line quantities.
func (c Cart) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// Line returns the line for productID, if present.
func (c Cart) Line(productID int64) (Line, bool) {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return Line{}, false
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) clone() Cart {
	if c.Lines == nil {
		return Cart{}
	}
	lines := make([]Line, len(c.Lines))
	for i, line := range c.Lines {
		line.Ingredients = append([]string(nil), line.Ingredients...)
		lines[i] = line
	}
	return Cart{Lines: lines}
}

func (c Cart) indexOf(productID int64) int {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// MaxLineQuantity caps the quantity of a single line.
const MaxLineQuantity = 999

// normalize enforces one line per product and 1 ≤ quantity ≤ MaxLineQuantity,
// keeping first-seen order. It reports whether anything had to change.
func normalize(lines []Line) ([]Line, bool) {
	changed := false
	out := make([]Line, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			changed = true
			continue
		}
		if line.Quantity > MaxLineQuantity {
			line.Quantity = MaxLineQuantity
			changed = true
		}
		if i, ok := index[line.ProductID]; ok {
			out[i].Quantity = min(out[i].Quantity+line.Quantity, MaxLineQuantity)
			changed = true
			continue
		}
		index[line.ProductID] = len(out)
		out = append(out, line)
	}
	return out, changed
}

func encode(c Cart) ([]byte, error) {
	lines := c.Lines
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(lines)
}

func decode(data []byte) ([]Line, error) {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}
