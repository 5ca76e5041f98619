// Package device tracks the devices and locations a user has logged in from
// and detects logins from previously-unseen ones.
//
// # Overview
//
// One Record is kept per (user, device signature, location) tuple. The store
// is the system of record: a matching record is the sole signal that a
// device is known. On a match the record's last-seen timestamp is refreshed;
// on a miss a notification is sent (subject to a global switch) and a new
// record is created.
//
// # Basic Usage
//
//	repo := device.NewInMemRepository()
//	verifier := device.NewVerifier(repo, locator, fingerprinter, notifier,
//		device.WithNotificationsEnabled(true),
//	)
//
//	outcome := verifier.Verify(ctx, device.VerifyParams{
//		UserID:    userID,
//		Email:     email,
//		UserAgent: r.UserAgent(),
//		ClientIP:  geo.ExtractClientIP(r),
//		Locale:    r.Header.Get("Accept-Language"),
//	})
//	if outcome.Failed() {
//		// log only; the login response has already been written
//	}
//
// # Concurrency
//
// Repositories arbitrate concurrent inserts for the same natural key: the
// in-memory store checks the key under its mutex, the PostgreSQL store uses
// a unique index. The losing Verify call treats the device as known and
// refreshes the existing record.
package device
