/*
Package cardreg registers library card applicants as patrons of a remote
integrated library system.

A registration form is checked against the registrations already on file,
converted into a typed patron record (see the sierra and record packages),
submitted to the library system, and then recorded in DynamoDB together
with a search document for the new patron.

Basic Usage:

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	stores, err := cardreg.OpenStores(ctx, cfg, cfg.Logger())
	if err != nil {
		return err
	}
	reg, err := cardreg.NewRegistrarFromStores(stores, cfg, api,
		cardreg.WithMetrics(cardreg.NewMetrics(nil)))
	if err != nil {
		return err
	}

	res, err := reg.Register(ctx, form, cardreg.AtLocation("internal"))

Registrar can also be assembled by hand with NewRegistrar from any
Tracker and Indexer.
*/
package cardreg
