package app

import (
	"context"
	"errors"

	"github.com/kingkey0101/mealmuse-api/app/config"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/customer"
)

// InitStripe wires the Stripe API key from config.
func InitStripe(cfg *config.Config) {
	stripe.Key = cfg.Stripe.SecretKey
}

// ensureStripeCustomer finds or creates a Stripe Customer for the given user.
// It uses users.stripe_customer_id when present, otherwise creates a new
// customer with metadata user_id = <userID>, then stores the id on the user.
func (a *API) ensureStripeCustomer(ctx context.Context, userID, email string) (string, error) {
	if userID == "" {
		return "", errors.New("missing user id")
	}

	profile, err := a.GetOrCreateProfile(ctx, userID, email)
	if err != nil {
		return "", err
	}
	if profile.Subscription.StripeCustomerID != "" {
		return profile.Subscription.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Metadata: map[string]string{
			"user_id": userID,
		},
	}
	if email != "" {
		params.Email = stripe.String(email)
	}
	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}

	if err := a.users.SetStripeCustomer(ctx, userID, cust.ID); err != nil {
		return "", err
	}
	return cust.ID, nil
}
