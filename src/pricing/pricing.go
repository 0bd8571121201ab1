package pricing

import (
	"artbook/src/types"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	ClassAdult   = "adult"
	ClassStudent = "student"
	ClassChild   = "child"
	ClassSenior  = "senior"
	ClassGeneral = "general"
)

var ErrUnknownClass = errors.New("unknown ticket class")

// Classes returns the ticket classes for a subject kind in display order.
func Classes(kind types.SubjectKind) []string {
	if kind == types.SUBJECT_EVENT {
		return []string{ClassGeneral}
	}
	return []string{ClassAdult, ClassStudent, ClassChild, ClassSenior}
}

// Composition is an ordered ticket-class to quantity mapping.
type Composition struct {
	classes []string
	qty     map[string]int
}

func NewComposition(classes []string) Composition {
	c := Composition{classes: append([]string(nil), classes...), qty: map[string]int{}}
	return c
}

func (c Composition) Quantity(class string) int {
	return c.qty[class]
}

func (c Composition) Count() int {
	n := 0
	for _, q := range c.qty {
		n += q
	}
	return n
}

// Set changes one class and returns the quantity actually applied. The
// value is clamped to >= 0 and, when limit >= 0, so that the aggregate
// count stays within limit.
func (c *Composition) Set(class string, qty int, limit int) (int, error) {
	if !c.has(class) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	if qty < 0 {
		qty = 0
	}
	if limit >= 0 {
		others := c.Count() - c.qty[class]
		if room := limit - others; qty > room {
			qty = room
		}
		if qty < 0 {
			qty = 0
		}
	}
	c.qty[class] = qty
	return qty, nil
}

// Clamp trims quantities from the last class backwards until the aggregate
// fits within limit.
func (c *Composition) Clamp(limit int) {
	if limit < 0 {
		limit = 0
	}
	over := c.Count() - limit
	for i := len(c.classes) - 1; i >= 0 && over > 0; i-- {
		cls := c.classes[i]
		cut := c.qty[cls]
		if cut > over {
			cut = over
		}
		c.qty[cls] -= cut
		over -= cut
	}
}

func (c Composition) Clone() Composition {
	out := NewComposition(c.classes)
	for k, v := range c.qty {
		out.qty[k] = v
	}
	return out
}

type entry struct {
	Class    string `json:"class"`
	Quantity int    `json:"quantity"`
}

func (c Composition) MarshalJSON() ([]byte, error) {
	out := make([]entry, 0, len(c.classes))
	for _, cls := range c.classes {
		out = append(out, entry{Class: cls, Quantity: c.qty[cls]})
	}
	return json.Marshal(out)
}

// Map returns the non-zero entries.
func (c Composition) Map() map[string]int {
	out := map[string]int{}
	for _, cls := range c.classes {
		if q := c.qty[cls]; q > 0 {
			out[cls] = q
		}
	}
	return out
}

func (c Composition) has(class string) bool {
	for _, cls := range c.classes {
		if cls == class {
			return true
		}
	}
	return false
}

type Line struct {
	Class      string `json:"class"`
	Quantity   int    `json:"quantity"`
	UnitMinor  int64  `json:"unit_minor"`
	TotalMinor int64  `json:"total_minor"`
}

type Quote struct {
	Lines      []Line `json:"lines"`
	Count      int    `json:"count"`
	TotalMinor int64  `json:"total_minor"`
	Currency   string `json:"currency"`
	Display    string `json:"display"`
}

// Price computes the quote for a composition. Every class with a non-zero
// quantity must have a price.
func Price(prices map[string]int64, c Composition, currency string) (Quote, error) {
	q := Quote{Currency: currency, Lines: []Line{}}
	for _, cls := range c.classes {
		n := c.qty[cls]
		if n == 0 {
			continue
		}
		unit, ok := prices[cls]
		if !ok {
			return Quote{}, fmt.Errorf("%w: no price for %s", ErrUnknownClass, cls)
		}
		line := Line{Class: cls, Quantity: n, UnitMinor: unit, TotalMinor: unit * int64(n)}
		q.Lines = append(q.Lines, line)
		q.Count += n
		q.TotalMinor += line.TotalMinor
	}
	q.Display = Format(q.TotalMinor, currency)
	return q, nil
}

var symbols = map[string]string{
	"USD": "$",
	"CAD": "CA$",
	"AUD": "A$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

var zeroDecimal = map[string]bool{
	"JPY": true,
	"KRW": true,
}

// Format renders minor units for display, e.g. 3800 USD as "$38.00".
func Format(minor int64, currency string) string {
	currency = strings.ToUpper(currency)
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	sym, ok := symbols[currency]
	if !ok {
		sym = currency + " "
	}
	if zeroDecimal[currency] {
		return fmt.Sprintf("%s%s%d", sign, sym, minor)
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, sym, minor/100, minor%100)
}
