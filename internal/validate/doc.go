// Package validate checks caller input before any request is sent.
// Every failure is a *tg.ValidationError, so errors.Is(err, tg.ErrInvalidInput)
// holds for all of them.
package validate
