// Package webhook verifies and decodes webhooks sent by Magpie.
//
// Magpie signs every delivery with an HMAC of the raw request body keyed by
// the endpoint secret. The signature travels in a header of the form
//
//	t=1700000000,v1=5257a869e7ecebeda32affa62cdca3fa51cad7e77a0e56ff536d0ce8e108d8bd
//
// where several v1 elements may appear while a secret is being rotated. Any
// one of them matching is enough.
//
// # Verifying a Payload
//
// Always pass the exact bytes received; re-encoded JSON will not verify.
//
//	body, _ := io.ReadAll(r.Body)
//	event, err := webhook.ConstructEvent(body, r.Header.Get("x-magpie-signature"), secret)
//	if err != nil {
//	    // *apierror.Error with Kind == apierror.KindWebhook
//	    return err
//	}
//	switch event.Type {
//	case webhook.ChargeSucceeded:
//	    ...
//	}
//
// VerifySignatureWithTimestamp additionally enforces the timestamp window
// (300 seconds by default, in both directions):
//
//	ok, err := webhook.VerifySignatureWithTimestamp(body, r.Header, secret,
//	    webhook.WithTolerance(5*time.Minute))
//
// # HTTP Handler
//
// NewHandler wires verification, decoding and replay protection into an
// http.Handler:
//
//	guard := webhook.NewRedisReplayGuard(redisClient, "")
//	mux.Handle("POST /webhooks/magpie", webhook.NewHandler(secret,
//	    func(ctx context.Context, ev *webhook.Event) error {
//	        return process(ctx, ev)
//	    },
//	    webhook.WithReplayGuard(guard),
//	    webhook.WithLogger(logger),
//	))
//
// WithAllowedSources restricts deliveries to known networks (see package
// clientip). Behind a proxy add WithTrustedProxy so the sender is read from
// forwarding headers.
//
// # Test Signatures
//
// GenerateTestSignature produces a header for local testing. It signs
// "{timestamp}.{payload}", which is not the message VerifySignature checks;
// use ComputeSignature to build a header that VerifySignature accepts.
package webhook
