// Package magpie is a client for the Magpie payment API.
//
// Key Features:
//
//   - Typed services for charges, customers, sources, checkout sessions,
//     payment links, payment requests and the organization
//   - Retries with exponential backoff for safe requests
//   - A single error type carrying the API's type, code and request id
//   - Webhook signature verification, decoding and replay protection
//   - Local validation of request params before they are sent
//   - Configuration from MAGPIE_* environment variables, with Redis or
//     PostgreSQL as a shared webhook replay store
//
// Basic Usage:
//
//	client, err := magpie.New(os.Getenv("MAGPIE_SECRET_KEY"))
//	if err != nil {
//		return err
//	}
//
//	charge, err := client.Charges.Create(ctx, &magpie.ChargeParams{
//		Amount:   10000, // PHP 100.00
//		Currency: "php",
//		Source:   "src_123",
//	}, magpie.WithIdempotencyKey(orderID))
//
// Create calls are only retried when they carry an idempotency key, either
// per call as above or for every POST with transport.WithAutoIdempotency.
//
// Errors:
//
//	var apiErr *apierror.Error
//	if errors.As(err, &apiErr) {
//		log.Println(apiErr.Type, apiErr.Code, apiErr.RequestID)
//	}
//	if errors.Is(err, apierror.ErrRateLimit) {
//		// back off
//	}
//
// Configuration:
//
//	client, err := magpie.NewFromEnv(ctx)
//	defer client.Close()
//
// reads MAGPIE_SECRET_KEY, MAGPIE_BASE_URL, MAGPIE_TIMEOUT and the other
// variables named by the Config struct tags. When MAGPIE_REDIS_URL is set the
// webhook handler rejects deliveries it has already processed.
//
// Webhooks:
//
//	mux.Handle("POST /webhooks/magpie", client.Webhooks.Handler(
//		func(ctx context.Context, ev *webhook.Event) error {
//			switch ev.Type {
//			case webhook.ChargeSucceeded:
//				...
//			}
//			return nil
//		},
//	))
//
// Sources are created with the organization's public key. The client fetches
// it once from the organization endpoint using the secret key and reuses it
// until Rotate is called.
package magpie
