package billing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/treeofhope/backend/internal/infrastructure/config"
)

// ValidateStripeConfig checks the settings required to talk to Stripe
func ValidateStripeConfig(cfg config.StripeConfig) error {
	if cfg.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if !strings.HasPrefix(cfg.SecretKey, "sk_test_") && !strings.HasPrefix(cfg.SecretKey, "sk_live_") &&
		!strings.HasPrefix(cfg.SecretKey, "rk_") {
		return fmt.Errorf("stripe: secret key has an unexpected format")
	}
	if cfg.WebhookSecret == "" {
		return fmt.Errorf("stripe: webhook secret is required")
	}
	if cfg.DefaultCurrency == "" {
		return fmt.Errorf("stripe: default currency is required")
	}
	return nil
}

// PriceCatalog maps monthly tiers and joining gifts to Stripe Price IDs
type PriceCatalog struct {
	tiers map[string]string
	gifts map[string]string
}

// NewPriceCatalog builds a catalog from the configured price maps.
// Tier labels are matched case-insensitively.
func NewPriceCatalog(tierPrices, giftPrices map[string]string) PriceCatalog {
	return PriceCatalog{
		tiers: normalizePrices(tierPrices),
		gifts: normalizePrices(giftPrices),
	}
}

func normalizePrices(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// HasTier reports whether a monthly tier is configured
func (p PriceCatalog) HasTier(tier string) bool {
	_, ok := p.tiers[strings.ToLower(strings.TrimSpace(tier))]
	return ok
}

// HasJoiningGift reports whether a joining gift tier is configured
func (p PriceCatalog) HasJoiningGift(gift string) bool {
	_, ok := p.gifts[strings.ToLower(strings.TrimSpace(gift))]
	return ok
}

// TierPriceID returns the recurring Price ID for a monthly tier
func (p PriceCatalog) TierPriceID(tier string) (string, error) {
	id, ok := p.tiers[strings.ToLower(strings.TrimSpace(tier))]
	if !ok {
		return "", fmt.Errorf("stripe: no price configured for tier: %s", tier)
	}
	return id, nil
}

// JoiningGiftPriceID returns the one-time Price ID for a joining gift
func (p PriceCatalog) JoiningGiftPriceID(gift string) (string, error) {
	id, ok := p.gifts[strings.ToLower(strings.TrimSpace(gift))]
	if !ok {
		return "", fmt.Errorf("stripe: no price configured for joining gift: %s", gift)
	}
	return id, nil
}

// Tiers lists the configured monthly tiers in sorted order
func (p PriceCatalog) Tiers() []string {
	tiers := make([]string, 0, len(p.tiers))
	for k := range p.tiers {
		tiers = append(tiers, k)
	}
	sort.Strings(tiers)
	return tiers
}
