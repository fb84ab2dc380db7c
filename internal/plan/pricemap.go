package plan

import "fmt"

// PriceMap resolves provider price/variant ids to plan types. Built from
// configuration because sandbox and production price ids differ.
type PriceMap map[string]Type

func NewPriceMap(raw map[string]string) (PriceMap, error) {
	m := make(PriceMap, len(raw))
	for priceID, planName := range raw {
		t := Type(planName)
		if !Valid(t) {
			return nil, fmt.Errorf("price %q: %w: %q", priceID, ErrUnknownPlan, planName)
		}
		m[priceID] = t
	}
	return m, nil
}

func (m PriceMap) PlanForPrice(priceID string) (Type, bool) {
	t, ok := m[priceID]
	return t, ok
}

// PriceForPlan is the reverse lookup used when starting a checkout.
func (m PriceMap) PriceForPlan(t Type) (string, bool) {
	for priceID, planType := range m {
		if planType == t {
			return priceID, true
		}
	}
	return "", false
}
