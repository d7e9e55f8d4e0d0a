// Package checkout drives a donation checkout: pick an amount, open a
// payment session for it, bind a payment widget to the session and
// confirm the payment.
//
// Flow is safe for concurrent use. Network calls run on their own
// goroutines and every result is tagged with the generation it was
// started for, so a response that arrives after the amount changed or
// the checkout closed is dropped.
package checkout
