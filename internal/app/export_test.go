package app

import "time"

// Hooks for external tests that need a fixed clock or code.

func SetAuthClock(a *AuthService, now func() time.Time) { a.now = now }

func SetAuthCodeGenerator(a *AuthService, gen func() (string, error)) { a.generate = gen }

func SetBookingClock(b *BookingService, now func() time.Time) { b.now = now }

func HashCode(phone, code string) string { return hashCode(phone, code) }
