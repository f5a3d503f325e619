package models

import "testing"

func TestCanTransition_Allowed(t *testing.T) {
	allowed := [][2]string{
		{PaymentStatusPending, PaymentStatusCompleted},
		{PaymentStatusPending, PaymentStatusFailed},
		{PaymentStatusPending, PaymentStatusCancelled},
		{PaymentStatusCompleted, PaymentStatusRefunded},
	}
	for _, pair := range allowed {
		if !CanTransition(pair[0], pair[1]) {
			t.Errorf("expected %s -> %s to be allowed", pair[0], pair[1])
		}
	}
}

func TestCanTransition_Rejected(t *testing.T) {
	rejected := [][2]string{
		{PaymentStatusCompleted, PaymentStatusPending},
		{PaymentStatusCompleted, PaymentStatusCompleted},
		{PaymentStatusRefunded, PaymentStatusCompleted},
		{PaymentStatusFailed, PaymentStatusCompleted},
		{PaymentStatusCancelled, PaymentStatusPending},
		{"bogus", PaymentStatusCompleted},
	}
	for _, pair := range rejected {
		if CanTransition(pair[0], pair[1]) {
			t.Errorf("expected %s -> %s to be rejected", pair[0], pair[1])
		}
	}
}

func TestInEnum(t *testing.T) {
	if !InEnum("marriage", DatingGoals) {
		t.Error("marriage should be a valid dating goal")
	}
	if InEnum("whirlwind", DatingGoals) {
		t.Error("whirlwind should not be a valid dating goal")
	}
	if !InEnum("USD", Currencies) {
		t.Error("USD should be a valid currency")
	}
	if InEnum("usd", Currencies) {
		t.Error("currency membership is case sensitive")
	}
}
