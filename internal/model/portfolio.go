package model

// Portfolio is an ordered set of stock IDs to analyze. Duplicates are
// ignored on insert so fetch units are never issued twice for one stock.
type Portfolio struct {
	ids   []string
	index map[string]int
}

// NewPortfolio builds a portfolio from the given stock IDs.
func NewPortfolio(stockIDs ...string) *Portfolio {
	p := &Portfolio{index: make(map[string]int, len(stockIDs))}
	p.Add(stockIDs...)
	return p
}

// Add appends stock IDs, skipping ones already present.
func (p *Portfolio) Add(stockIDs ...string) {
	for _, id := range stockIDs {
		if id == "" {
			continue
		}
		if _, ok := p.index[id]; ok {
			continue
		}
		p.index[id] = len(p.ids)
		p.ids = append(p.ids, id)
	}
}

// Remove drops a stock ID if present.
func (p *Portfolio) Remove(stockID string) {
	i, ok := p.index[stockID]
	if !ok {
		return
	}
	p.ids = append(p.ids[:i], p.ids[i+1:]...)
	delete(p.index, stockID)
	for j := i; j < len(p.ids); j++ {
		p.index[p.ids[j]] = j
	}
}

// Contains reports whether the portfolio holds the stock ID.
func (p *Portfolio) Contains(stockID string) bool {
	_, ok := p.index[stockID]
	return ok
}

// IDs returns the stock IDs in insertion order.
func (p *Portfolio) IDs() []string {
	out := make([]string, len(p.ids))
	copy(out, p.ids)
	return out
}

// Len returns the number of stocks.
func (p *Portfolio) Len() int { return len(p.ids) }
