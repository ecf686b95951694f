package game

import "math"

// Wallet tracks free capital and the capital committed to live bets.
// Engaging moves an amount out of Bankroll and into Exposure; settlement
// credits winnings to Bankroll and releases the stake from Exposure.
type Wallet struct {
	Bankroll float64 `json:"bankroll"`
	Exposure float64 `json:"exposure"`
}

// Available is max(bankroll - exposure, 0)
func (w Wallet) Available() float64 {
	return math.Max(roundCents(w.Bankroll-w.Exposure), 0)
}

// CanAfford reports whether amount can be engaged
func (w Wallet) CanAfford(amount float64) bool {
	return w.Available() >= amount
}

// Engage commits amount. It returns false and changes nothing when the
// wallet cannot cover it.
func (w *Wallet) Engage(amount float64) bool {
	if amount <= 0 || !w.CanAfford(amount) {
		return false
	}
	w.Bankroll = roundCents(w.Bankroll - amount)
	w.Exposure = roundCents(w.Exposure + amount)
	return true
}

// Credit adds a settlement amount to the bankroll
func (w *Wallet) Credit(amount float64) {
	w.Bankroll = roundCents(w.Bankroll + amount)
}

// Release removes a settled stake from the exposure
func (w *Wallet) Release(amount float64) {
	w.Exposure = math.Max(roundCents(w.Exposure-amount), 0)
}

// Refund returns every live stake to the bankroll. Used when a round is
// abandoned before settlement.
func (w *Wallet) Refund() {
	w.Bankroll = roundCents(w.Bankroll + w.Exposure)
	w.Exposure = 0
}

func roundCents(x float64) float64 {
	return math.Round(x*100) / 100
}
