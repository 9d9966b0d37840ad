/*
Package tracking records library-card registrations.

Each registration is keyed by the SHA-512 hash of the registrant's e-mail
address, which makes an address registrable once. The patron ID assigned by
the library system is indexed on GSI1 and the creation time on GSI2:

	store := tracking.NewStore(ds, tracking.WithLookupCache(1024, time.Minute))

	if err := store.CheckEmail(ctx, form.Email); err != nil {
	    return err // errors.IsAlreadyExists(err)
	}
	reg, err := store.Add(ctx, patronID, form.Email, "internal", tracking.BoundaryInside)

	counts, err := store.ByMonth(ctx) // [{2025-05 12} {2025-06 31}]
*/
package tracking
